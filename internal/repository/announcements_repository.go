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

type AnnouncementsRepository struct {
	conn PgConnection
}

func NewAnnouncementsRepo(cfg DBConfig) *AnnouncementsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for announcementsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for announcementsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &AnnouncementsRepository{
		conn: pool,
	}
}

func NewAnnouncementsRepoWithConn(conn PgConnection) *AnnouncementsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for announcementsRepo: " + err.Error())
	}
	return &AnnouncementsRepository{
		conn: conn,
	}
}

func (ar *AnnouncementsRepository) ListPublished(ctx context.Context, uid uuid.UUID) ([]*entity.Announcement, error) {
	rows, err := ar.conn.Query(ctx,
		`SELECT a.id, a.title, a.content, a.type, a.published, a.published_at, ar.user_id IS NOT NULL
		FROM announcements a
		LEFT JOIN announcement_reads ar ON ar.announcement_id = a.id AND ar.user_id = $1
		WHERE a.published = TRUE AND a.published_at <= NOW()
		ORDER BY a.published_at DESC;`,
		uid,
	)
	if err != nil {
		return nil, errors.New("listing announcements error: " + err.Error())
	}
	defer rows.Close()
	announcements := make([]*entity.Announcement, 0)
	for rows.Next() {
		a := entity.Announcement{}
		err = rows.Scan(&a.ID, &a.Title, &a.Content, &a.Type, &a.Published, &a.PublishedAt, &a.IsRead)
		if err != nil {
			return nil, errors.New("unmarshalling announcement error: " + err.Error())
		}
		announcements = append(announcements, &a)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return announcements, nil
}

func (ar *AnnouncementsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Announcement, error) {
	var a entity.Announcement
	a.ID = id
	row := ar.conn.QueryRow(ctx,
		`SELECT title, content, type, published, published_at FROM announcements WHERE id = $1;`,
		id,
	)
	if err := row.Scan(&a.Title, &a.Content, &a.Type, &a.Published, &a.PublishedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrAnnouncementNotFound
		}
		return nil, errors.New("getting announcement by id error: " + err.Error())
	}
	return &a, nil
}

func (ar *AnnouncementsRepository) MarkRead(ctx context.Context, uid, announcementID uuid.UUID) error {
	// At most one read record per (user, announcement) pair
	_, err := ar.conn.Exec(ctx,
		`INSERT INTO announcement_reads (user_id, announcement_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`,
		uid, announcementID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return errorvalues.ErrAnnouncementNotFound
		}
		return errors.New("marking announcement read error: " + err.Error())
	}
	return nil
}
