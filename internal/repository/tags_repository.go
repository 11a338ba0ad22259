package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/pkg/cleanup"
	"github.com/limbo/worklog/pkg/entity"
)

type TagsRepository struct {
	conn PgConnection
}

func NewTagsRepo(cfg DBConfig) *TagsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for tagsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for tagsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &TagsRepository{
		conn: pool,
	}
}

func NewTagsRepoWithConn(conn PgConnection) *TagsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for tagsRepo: " + err.Error())
	}
	return &TagsRepository{
		conn: conn,
	}
}

func (tr *TagsRepository) Create(ctx context.Context, tag *entity.Tag) (uuid.UUID, error) {
	var id uuid.UUID
	row := tr.conn.QueryRow(ctx,
		`INSERT INTO tags (user_id, name) VALUES ($1, $2) RETURNING id;`,
		tag.UserID,
		tag.Name,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return uuid.UUID{}, errorvalues.ErrTagExists
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrUserNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating tag db error: " + err.Error())
	}
	return id, nil
}

func (tr *TagsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error) {
	var tag entity.Tag
	tag.ID = id
	row := tr.conn.QueryRow(ctx, `SELECT user_id, name, created_at FROM tags WHERE id = $1;`, id)
	if err := row.Scan(&tag.UserID, &tag.Name, &tag.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrTagNotFound
		}
		return nil, errors.New("getting tag by id error: " + err.Error())
	}
	return &tag, nil
}

func (tr *TagsRepository) GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Tag, error) {
	tags := make([]*entity.Tag, 0)
	rows, err := tr.conn.Query(ctx,
		`SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1 ORDER BY name ASC;`,
		uid,
	)
	if err != nil {
		return nil, errors.New("getting tags by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		t := entity.Tag{}
		err = rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt)
		if err != nil {
			return nil, errors.New("unmarshalling tag error: " + err.Error())
		}
		tags = append(tags, &t)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return tags, nil
}

func (tr *TagsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := tr.conn.Exec(ctx, `DELETE FROM tags WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting tag: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTagNotFound
	}
	return nil
}
