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

type CategoriesRepository struct {
	conn PgConnection
}

func NewCategoriesRepo(cfg DBConfig) *CategoriesRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for categoriesRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for categoriesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &CategoriesRepository{
		conn: pool,
	}
}

func NewCategoriesRepoWithConn(conn PgConnection) *CategoriesRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for categoriesRepo: " + err.Error())
	}
	return &CategoriesRepository{
		conn: conn,
	}
}

func (cr *CategoriesRepository) Create(ctx context.Context, category *entity.Category) (uuid.UUID, error) {
	var id uuid.UUID
	// New categories land at the end of the user's ordering
	row := cr.conn.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, color, icon, sort_order)
		SELECT $1, $2, $3, $4, COALESCE(MAX(sort_order) + 1, 0) FROM categories WHERE user_id = $1
		RETURNING id;`,
		category.UserID,
		category.Name,
		category.Color,
		category.Icon,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return uuid.UUID{}, errorvalues.ErrUserNotFound
		}
		return uuid.UUID{}, errors.New("creating category db error: " + err.Error())
	}
	return id, nil
}

func (cr *CategoriesRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	category.ID = id
	row := cr.conn.QueryRow(ctx,
		`SELECT user_id, name, color, icon, sort_order, created_at, updated_at FROM categories WHERE id = $1;`,
		id,
	)
	if err := row.Scan(&category.UserID, &category.Name, &category.Color, &category.Icon, &category.SortOrder, &category.CreatedAt, &category.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrCategoryNotFound
		}
		return nil, errors.New("getting category by id error: " + err.Error())
	}
	return &category, nil
}

func (cr *CategoriesRepository) GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Category, error) {
	categories := make([]*entity.Category, 0)
	rows, err := cr.conn.Query(ctx,
		`SELECT id, user_id, name, color, icon, sort_order, created_at, updated_at
		FROM categories WHERE user_id = $1 ORDER BY sort_order ASC;`,
		uid,
	)
	if err != nil {
		return nil, errors.New("getting categories by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		c := entity.Category{}
		err = rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, errors.New("unmarshalling category error: " + err.Error())
		}
		categories = append(categories, &c)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return categories, nil
}

func (cr *CategoriesRepository) Update(ctx context.Context, category *entity.Category) error {
	ct, err := cr.conn.Exec(ctx,
		`UPDATE categories SET name = $1, color = $2, icon = $3, updated_at = NOW() WHERE id = $4;`,
		category.Name, category.Color, category.Icon, category.ID,
	)
	if err != nil {
		return errors.New("error updating category: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrCategoryNotFound
	}
	return nil
}

func (cr *CategoriesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := cr.conn.Exec(ctx, `DELETE FROM categories WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting category: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrCategoryNotFound
	}
	return nil
}

func (cr *CategoriesRepository) Reorder(ctx context.Context, uid uuid.UUID, ids []uuid.UUID) error {
	tx, err := cr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting reorder transaction error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	for position, id := range ids {
		ct, err := tx.Exec(ctx,
			`UPDATE categories SET sort_order = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3;`,
			position, id, uid,
		)
		if err != nil {
			return errors.New("reordering category error: " + err.Error())
		}
		// Missing row or foreign owner aborts the whole batch
		if ct.RowsAffected() == 0 {
			return errorvalues.ErrCategoryNotFound
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.New("committing reorder transaction error: " + err.Error())
	}
	return nil
}
