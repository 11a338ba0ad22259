package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/limbo/worklog/pkg/cleanup"
	"github.com/limbo/worklog/pkg/entity"
)

type SyncRepository struct {
	conn PgConnection
}

func NewSyncRepo(cfg DBConfig) *SyncRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for syncRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for syncRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &SyncRepository{
		conn: pool,
	}
}

func NewSyncRepoWithConn(conn PgConnection) *SyncRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for syncRepo: " + err.Error())
	}
	return &SyncRepository{
		conn: conn,
	}
}

// UploadBatch reconciles uploaded entries against server rows one by one, in
// submission order, inside a single transaction. Per-entry comparison rule:
// unknown (user, local id) pair creates a row; a server row strictly newer
// than the claimed updated_at is reported as a conflict and left untouched;
// anything else is overwritten and marked synced.
func (sr *SyncRepository) UploadBatch(ctx context.Context, uid uuid.UUID, entries []entity.SyncEntry) ([]entity.SyncOutcome, error) {
	tx, err := sr.conn.Begin(ctx)
	if err != nil {
		return nil, errors.New("starting upload transaction error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	outcomes := make([]entity.SyncOutcome, 0, len(entries))
	for _, entry := range entries {
		outcome, err := upsertEntry(ctx, tx, uid, entry)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errors.New("committing upload transaction error: " + err.Error())
	}
	return outcomes, nil
}

func upsertEntry(ctx context.Context, tx pgx.Tx, uid uuid.UUID, entry entity.SyncEntry) (entity.SyncOutcome, error) {
	var (
		serverID        uuid.UUID
		serverUpdatedAt time.Time
	)
	row := tx.QueryRow(ctx,
		`SELECT id, updated_at FROM work_logs WHERE user_id = $1 AND local_id = $2;`,
		uid, entry.LocalID,
	)
	err := row.Scan(&serverID, &serverUpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		row := tx.QueryRow(ctx,
			`INSERT INTO work_logs (user_id, title, content, work_date, duration_minutes, status, local_id, synced, last_synced_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW()) RETURNING id;`,
			uid, entry.Title, entry.Content, entry.WorkDate, entry.DurationMinutes, entry.Status, entry.LocalID,
		)
		if err := row.Scan(&serverID); err != nil {
			return entity.SyncOutcome{}, errors.New("creating synced work log error: " + err.Error())
		}
		if err := appendSyncLog(ctx, tx, uid, serverID, entity.SyncUpload); err != nil {
			return entity.SyncOutcome{}, err
		}
		return entity.SyncOutcome{
			LocalID:  entry.LocalID,
			Status:   entity.OutcomeCreated,
			ServerID: serverID,
		}, nil
	case err != nil:
		return entity.SyncOutcome{}, errors.New("searching work log by local id error: " + err.Error())
	}

	if serverUpdatedAt.After(entry.UpdatedAt) {
		// Server holds newer data, nothing is overwritten
		if err := appendSyncLog(ctx, tx, uid, serverID, entity.SyncConflict); err != nil {
			return entity.SyncOutcome{}, err
		}
		return entity.SyncOutcome{
			LocalID:         entry.LocalID,
			Status:          entity.OutcomeConflict,
			ServerID:        serverID,
			ServerUpdatedAt: &serverUpdatedAt,
		}, nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE work_logs SET title = $1, content = $2, work_date = $3, duration_minutes = $4, status = $5,
		synced = TRUE, last_synced_at = NOW(), updated_at = NOW() WHERE id = $6;`,
		entry.Title, entry.Content, entry.WorkDate, entry.DurationMinutes, entry.Status, serverID,
	)
	if err != nil {
		return entity.SyncOutcome{}, errors.New("overwriting synced work log error: " + err.Error())
	}
	if err := appendSyncLog(ctx, tx, uid, serverID, entity.SyncUpload); err != nil {
		return entity.SyncOutcome{}, err
	}
	return entity.SyncOutcome{
		LocalID:  entry.LocalID,
		Status:   entity.OutcomeUpdated,
		ServerID: serverID,
	}, nil
}

func appendSyncLog(ctx context.Context, tx pgx.Tx, uid, workLogID uuid.UUID, syncType entity.SyncType) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO sync_logs (user_id, work_log_id, sync_type, status) VALUES ($1, $2, $3, 'success');`,
		uid, workLogID, syncType,
	)
	if err != nil {
		return errors.New("appending sync log error: " + err.Error())
	}
	return nil
}

// LogDownload records a download event so the user's last-sync instant
// advances on reads as well as uploads. Downloads cover the whole account,
// so the row references no particular work log.
func (sr *SyncRepository) LogDownload(ctx context.Context, uid uuid.UUID) error {
	_, err := sr.conn.Exec(ctx,
		`INSERT INTO sync_logs (user_id, sync_type, status) VALUES ($1, $2, 'success');`,
		uid, entity.SyncDownload,
	)
	if err != nil {
		return errors.New("appending download log error: " + err.Error())
	}
	return nil
}

func (sr *SyncRepository) LastSuccessfulSync(ctx context.Context, uid uuid.UUID) (*time.Time, error) {
	row := sr.conn.QueryRow(ctx,
		`SELECT synced_at FROM sync_logs WHERE user_id = $1 AND status = 'success' ORDER BY synced_at DESC LIMIT 1;`,
		uid,
	)
	var syncedAt time.Time
	if err := row.Scan(&syncedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.New("getting last sync date error: " + err.Error())
	}
	return &syncedAt, nil
}

func (sr *SyncRepository) CountUnsynced(ctx context.Context, uid uuid.UUID) (int, error) {
	row := sr.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM work_logs WHERE user_id = $1 AND synced = FALSE;`,
		uid,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.New("error counting unsynced work logs: " + err.Error())
	}
	return count, nil
}

func (sr *SyncRepository) CreateDevice(ctx context.Context, device *entity.Device) (uuid.UUID, error) {
	var id uuid.UUID
	row := sr.conn.QueryRow(ctx,
		`INSERT INTO devices (user_id, name, type, last_sync_at) VALUES ($1, $2, $3, NOW()) RETURNING id;`,
		device.UserID, device.Name, device.Type,
	)
	if err := row.Scan(&id); err != nil {
		return uuid.UUID{}, errors.New("registering device error: " + err.Error())
	}
	return id, nil
}

func (sr *SyncRepository) GetDevicesByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Device, error) {
	rows, err := sr.conn.Query(ctx,
		`SELECT id, user_id, COALESCE(name, ''), COALESCE(type, ''), last_sync_at FROM devices
		WHERE user_id = $1 ORDER BY last_sync_at DESC;`,
		uid,
	)
	if err != nil {
		return nil, errors.New("getting devices by uid error: " + err.Error())
	}
	defer rows.Close()
	devices := make([]*entity.Device, 0)
	for rows.Next() {
		d := entity.Device{}
		err = rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Type, &d.LastSyncAt)
		if err != nil {
			return nil, errors.New("unmarshalling device error: " + err.Error())
		}
		devices = append(devices, &d)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return devices, nil
}
