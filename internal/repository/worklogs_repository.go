package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/pkg/cleanup"
	"github.com/limbo/worklog/pkg/entity"
)

type WorkLogsRepository struct {
	conn PgConnection
}

func NewWorkLogsRepo(cfg DBConfig) *WorkLogsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for workLogsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for workLogsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &WorkLogsRepository{
		conn: pool,
	}
}

func NewWorkLogsRepoWithConn(conn PgConnection) *WorkLogsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for workLogsRepo: " + err.Error())
	}
	return &WorkLogsRepository{
		conn: conn,
	}
}

func (wr *WorkLogsRepository) Create(ctx context.Context, wl *entity.WorkLog, categoryIDs, tagIDs []uuid.UUID) (uuid.UUID, error) {
	tx, err := wr.conn.Begin(ctx)
	if err != nil {
		return uuid.UUID{}, errors.New("starting create transaction error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	var id uuid.UUID
	row := tx.QueryRow(ctx,
		`INSERT INTO work_logs (user_id, title, content, work_date, duration_minutes, status, local_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')) RETURNING id;`,
		wl.UserID, wl.Title, wl.Content, wl.WorkDate, wl.DurationMinutes, wl.Status, wl.LocalID,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation on (user_id, local_id)
			case "23505":
				return uuid.UUID{}, errorvalues.ErrLocalIDExists
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrUserNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating work log db error: " + err.Error())
	}
	if err := insertLinks(ctx, tx, id, categoryIDs, tagIDs); err != nil {
		return uuid.UUID{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.UUID{}, errors.New("committing create transaction error: " + err.Error())
	}
	return id, nil
}

func insertLinks(ctx context.Context, tx pgx.Tx, workLogID uuid.UUID, categoryIDs, tagIDs []uuid.UUID) error {
	for _, categoryID := range categoryIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO work_log_categories (work_log_id, category_id) VALUES ($1, $2);`,
			workLogID, categoryID,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return errorvalues.ErrCategoryNotFound
			}
			return errors.New("linking category error: " + err.Error())
		}
	}
	for _, tagID := range tagIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO work_log_tags (work_log_id, tag_id) VALUES ($1, $2);`,
			workLogID, tagID,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return errorvalues.ErrTagNotFound
			}
			return errors.New("linking tag error: " + err.Error())
		}
	}
	return nil
}

const workLogColumns = `id, user_id, title, COALESCE(content, ''), work_date, duration_minutes, status,
	COALESCE(local_id, ''), synced, last_synced_at, created_at, updated_at`

func scanWorkLog(row pgx.Row) (*entity.WorkLog, error) {
	var wl entity.WorkLog
	err := row.Scan(&wl.ID, &wl.UserID, &wl.Title, &wl.Content, &wl.WorkDate, &wl.DurationMinutes,
		&wl.Status, &wl.LocalID, &wl.Synced, &wl.LastSyncedAt, &wl.CreatedAt, &wl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &wl, nil
}

func (wr *WorkLogsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WorkLog, error) {
	row := wr.conn.QueryRow(ctx, `SELECT `+workLogColumns+` FROM work_logs WHERE id = $1;`, id)
	wl, err := scanWorkLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrWorkLogNotFound
		}
		return nil, errors.New("getting work log by id error: " + err.Error())
	}
	if err := wr.loadRefs(ctx, []*entity.WorkLog{wl}); err != nil {
		return nil, err
	}
	return wl, nil
}

func (wr *WorkLogsRepository) Find(ctx context.Context, uid uuid.UUID, filter WorkLogFilter) ([]*entity.WorkLog, int, error) {
	where := []string{"user_id = $1"}
	args := []any{uid}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("work_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("work_date <= $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("id IN (SELECT work_log_id FROM work_log_categories WHERE category_id = $%d)", len(args)))
	}
	if filter.TagID != nil {
		args = append(args, *filter.TagID)
		where = append(where, fmt.Sprintf("id IN (SELECT work_log_id FROM work_log_tags WHERE tag_id = $%d)", len(args)))
	}
	if filter.Search != "" {
		// Search terms are literal: a % or _ in the input must not act
		// as an ILIKE wildcard
		escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(filter.Search)
		args = append(args, "%"+escaped+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", len(args), len(args)))
	}
	condition := strings.Join(where, " AND ")

	var total int
	row := wr.conn.QueryRow(ctx, `SELECT COUNT(*) FROM work_logs WHERE `+condition+`;`, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, errors.New("counting work logs error: " + err.Error())
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM work_logs WHERE %s ORDER BY work_date DESC, created_at DESC LIMIT $%d OFFSET $%d;`,
		workLogColumns, condition, len(args)-1, len(args))
	rows, err := wr.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.New("listing work logs error: " + err.Error())
	}
	defer rows.Close()
	logs := make([]*entity.WorkLog, 0)
	for rows.Next() {
		wl, err := scanWorkLog(rows)
		if err != nil {
			return nil, 0, errors.New("unmarshalling work log error: " + err.Error())
		}
		logs = append(logs, wl)
	}
	if rows.Err() != nil {
		return nil, 0, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	if err := wr.loadRefs(ctx, logs); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (wr *WorkLogsRepository) Update(ctx context.Context, wl *entity.WorkLog) error {
	ct, err := wr.conn.Exec(ctx,
		`UPDATE work_logs SET title = $1, content = $2, work_date = $3, duration_minutes = $4, status = $5, updated_at = NOW()
		WHERE id = $6;`,
		wl.Title, wl.Content, wl.WorkDate, wl.DurationMinutes, wl.Status, wl.ID,
	)
	if err != nil {
		return errors.New("error updating work log: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrWorkLogNotFound
	}
	return nil
}

func (wr *WorkLogsRepository) SetCategories(ctx context.Context, id uuid.UUID, categoryIDs []uuid.UUID) error {
	return wr.replaceLinks(ctx, id, categoryIDs, nil, true)
}

func (wr *WorkLogsRepository) SetTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) error {
	return wr.replaceLinks(ctx, id, nil, tagIDs, false)
}

func (wr *WorkLogsRepository) replaceLinks(ctx context.Context, id uuid.UUID, categoryIDs, tagIDs []uuid.UUID, categories bool) error {
	tx, err := wr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting relink transaction error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	table := "work_log_tags"
	if categories {
		table = "work_log_categories"
	}
	if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE work_log_id = $1;`, id); err != nil {
		return errors.New("unlinking error: " + err.Error())
	}
	if err := insertLinks(ctx, tx, id, categoryIDs, tagIDs); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.New("committing relink transaction error: " + err.Error())
	}
	return nil
}

func (wr *WorkLogsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := wr.conn.Exec(ctx, `DELETE FROM work_logs WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting work log: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrWorkLogNotFound
	}
	return nil
}

func (wr *WorkLogsRepository) GetByDateRange(ctx context.Context, uid uuid.UUID, from, to entity.Date) ([]*entity.CalendarEntry, error) {
	rows, err := wr.conn.Query(ctx,
		`SELECT id, title, work_date, duration_minutes, status FROM work_logs
		WHERE user_id = $1 AND work_date >= $2 AND work_date <= $3 ORDER BY work_date ASC;`,
		uid, from, to,
	)
	if err != nil {
		return nil, errors.New("getting work logs for period error: " + err.Error())
	}
	defer rows.Close()
	entries := make([]*entity.CalendarEntry, 0)
	for rows.Next() {
		e := entity.CalendarEntry{}
		err = rows.Scan(&e.ID, &e.Title, &e.WorkDate, &e.DurationMinutes, &e.Status)
		if err != nil {
			return nil, errors.New("unmarshalling calendar entry error: " + err.Error())
		}
		entries = append(entries, &e)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return entries, nil
}

func (wr *WorkLogsRepository) GetUpdatedSince(ctx context.Context, uid uuid.UUID, since *time.Time) ([]*entity.WorkLog, error) {
	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE user_id = $1 ORDER BY updated_at DESC;`
	args := []any{uid}
	if since != nil {
		query = `SELECT ` + workLogColumns + ` FROM work_logs WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at DESC;`
		args = append(args, *since)
	}
	rows, err := wr.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.New("getting updated work logs error: " + err.Error())
	}
	defer rows.Close()
	logs := make([]*entity.WorkLog, 0)
	for rows.Next() {
		wl, err := scanWorkLog(rows)
		if err != nil {
			return nil, errors.New("unmarshalling work log error: " + err.Error())
		}
		logs = append(logs, wl)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	if err := wr.loadRefs(ctx, logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// loadRefs resolves category and tag objects for the given logs in two
// queries over the whole set.
func (wr *WorkLogsRepository) loadRefs(ctx context.Context, logs []*entity.WorkLog) error {
	if len(logs) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*entity.WorkLog, len(logs))
	ids := make([]uuid.UUID, 0, len(logs))
	for _, wl := range logs {
		byID[wl.ID] = wl
		ids = append(ids, wl.ID)
	}
	rows, err := wr.conn.Query(ctx,
		`SELECT wc.work_log_id, c.id, c.name, c.color, COALESCE(c.icon, '')
		FROM work_log_categories wc JOIN categories c ON c.id = wc.category_id
		WHERE wc.work_log_id = ANY($1);`,
		ids,
	)
	if err != nil {
		return errors.New("resolving categories error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		var workLogID uuid.UUID
		ref := entity.CategoryRef{}
		if err := rows.Scan(&workLogID, &ref.ID, &ref.Name, &ref.Color, &ref.Icon); err != nil {
			return errors.New("unmarshalling category ref error: " + err.Error())
		}
		if wl, ok := byID[workLogID]; ok {
			wl.Categories = append(wl.Categories, ref)
		}
	}
	if rows.Err() != nil {
		return errors.New("unexpected error after scanning: " + rows.Err().Error())
	}

	tagRows, err := wr.conn.Query(ctx,
		`SELECT wt.work_log_id, t.id, t.name
		FROM work_log_tags wt JOIN tags t ON t.id = wt.tag_id
		WHERE wt.work_log_id = ANY($1);`,
		ids,
	)
	if err != nil {
		return errors.New("resolving tags error: " + err.Error())
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var workLogID uuid.UUID
		ref := entity.TagRef{}
		if err := tagRows.Scan(&workLogID, &ref.ID, &ref.Name); err != nil {
			return errors.New("unmarshalling tag ref error: " + err.Error())
		}
		if wl, ok := byID[workLogID]; ok {
			wl.Tags = append(wl.Tags, ref)
		}
	}
	if tagRows.Err() != nil {
		return errors.New("unexpected error after scanning: " + tagRows.Err().Error())
	}
	return nil
}
