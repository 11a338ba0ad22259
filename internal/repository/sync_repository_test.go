package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/limbo/worklog/internal/repository"
	"github.com/limbo/worklog/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
)

var (
	selectByLocalIDQuery = regexp.QuoteMeta(`SELECT id, updated_at FROM work_logs WHERE user_id = $1 AND local_id = $2;`)
	insertSyncedQuery    = regexp.QuoteMeta(`INSERT INTO work_logs (user_id, title, content, work_date, duration_minutes, status, local_id, synced, last_synced_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW()) RETURNING id;`)
	overwriteSyncedQuery = regexp.QuoteMeta(`UPDATE work_logs SET title = $1, content = $2, work_date = $3, duration_minutes = $4, status = $5,
		synced = TRUE, last_synced_at = NOW(), updated_at = NOW() WHERE id = $6;`)
	appendSyncLogQuery = regexp.QuoteMeta(`INSERT INTO sync_logs (user_id, work_log_id, sync_type, status) VALUES ($1, $2, $3, 'success');`)
)

func testSyncEntry(updatedAt time.Time) entity.SyncEntry {
	return entity.SyncEntry{
		LocalID:         "local-1",
		Title:           "offline entry",
		Content:         "written on the train",
		WorkDate:        entity.NewDate(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)),
		DurationMinutes: 45,
		Status:          entity.StatusCompleted,
		UpdatedAt:       updatedAt,
	}
}

func TestUploadBatchCreates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSyncRepoWithConn(mock)
	entry := testSyncEntry(time.Now())
	serverID := uuid.New()
	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectQuery(selectByLocalIDQuery).
		WithArgs(userID, entry.LocalID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(insertSyncedQuery).
		WithArgs(userID, entry.Title, entry.Content, entry.WorkDate, entry.DurationMinutes, entry.Status, entry.LocalID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(serverID))
	mock.ExpectExec(appendSyncLogQuery).
		WithArgs(userID, serverID, entity.SyncUpload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	outcomes, err := repo.UploadBatch(ctx, userID, []entity.SyncEntry{entry})
	assert.NoError(t, err)
	assert.Len(t, outcomes, 1)
	assert.Equal(t, entity.OutcomeCreated, outcomes[0].Status)
	assert.Equal(t, serverID, outcomes[0].ServerID)
	assert.Equal(t, entry.LocalID, outcomes[0].LocalID)
}

func TestUploadBatchOverwrites(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSyncRepoWithConn(mock)
	serverUpdatedAt := time.Now().Add(-time.Hour)
	entry := testSyncEntry(time.Now())
	serverID := uuid.New()
	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectQuery(selectByLocalIDQuery).
		WithArgs(userID, entry.LocalID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "updated_at"}).AddRow(serverID, serverUpdatedAt))
	mock.ExpectExec(overwriteSyncedQuery).
		WithArgs(entry.Title, entry.Content, entry.WorkDate, entry.DurationMinutes, entry.Status, serverID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(appendSyncLogQuery).
		WithArgs(userID, serverID, entity.SyncUpload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	outcomes, err := repo.UploadBatch(ctx, userID, []entity.SyncEntry{entry})
	assert.NoError(t, err)
	assert.Len(t, outcomes, 1)
	assert.Equal(t, entity.OutcomeUpdated, outcomes[0].Status)
	assert.Equal(t, serverID, outcomes[0].ServerID)
}

func TestUploadBatchConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSyncRepoWithConn(mock)
	serverUpdatedAt := time.Now()
	entry := testSyncEntry(serverUpdatedAt.Add(-time.Hour))
	serverID := uuid.New()
	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectQuery(selectByLocalIDQuery).
		WithArgs(userID, entry.LocalID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "updated_at"}).AddRow(serverID, serverUpdatedAt))
	mock.ExpectExec(appendSyncLogQuery).
		WithArgs(userID, serverID, entity.SyncConflict).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	outcomes, err := repo.UploadBatch(ctx, userID, []entity.SyncEntry{entry})
	assert.NoError(t, err)
	assert.Len(t, outcomes, 1)
	assert.Equal(t, entity.OutcomeConflict, outcomes[0].Status)
	assert.Equal(t, serverID, outcomes[0].ServerID)
	if assert.NotNil(t, outcomes[0].ServerUpdatedAt) {
		assert.True(t, outcomes[0].ServerUpdatedAt.Equal(serverUpdatedAt))
	}
}

func TestUploadBatchRollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSyncRepoWithConn(mock)
	entry := testSyncEntry(time.Now())
	ctx := context.Background()
	mock.ExpectBegin()
	mock.ExpectQuery(selectByLocalIDQuery).
		WithArgs(userID, entry.LocalID).
		WillReturnError(errors.New("db error"))
	mock.ExpectRollback()

	_, err = repo.UploadBatch(ctx, userID, []entity.SyncEntry{entry})
	assert.Error(t, err)
}

func TestLogDownload(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSyncRepoWithConn(mock)
	query := regexp.QuoteMeta(`INSERT INTO sync_logs (user_id, sync_type, status) VALUES ($1, $2, 'success');`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(userID, entity.SyncDownload).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		assert.NoError(t, repo.LogDownload(ctx, userID))
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(userID, entity.SyncDownload).
			WillReturnError(errors.New("db error"))
		assert.Error(t, repo.LogDownload(ctx, userID))
	})
}

func TestLastSuccessfulSync(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSyncRepoWithConn(mock)
	query := regexp.QuoteMeta(`SELECT synced_at FROM sync_logs WHERE user_id = $1 AND status = 'success' ORDER BY synced_at DESC LIMIT 1;`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		syncedAt := time.Now()
		mock.ExpectQuery(query).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"synced_at"}).AddRow(syncedAt))
		result, err := repo.LastSuccessfulSync(ctx, userID)
		assert.NoError(t, err)
		if assert.NotNil(t, result) {
			assert.True(t, result.Equal(syncedAt))
		}
	})
	t.Run("never synced", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID).
			WillReturnError(pgx.ErrNoRows)
		result, err := repo.LastSuccessfulSync(ctx, userID)
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestCountUnsynced(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSyncRepoWithConn(mock)
	query := regexp.QuoteMeta(`SELECT COUNT(*) FROM work_logs WHERE user_id = $1 AND synced = FALSE;`)
	ctx := context.Background()
	mock.ExpectQuery(query).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	count, err := repo.CountUnsynced(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCreateDevice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSyncRepoWithConn(mock)
	query := regexp.QuoteMeta(`INSERT INTO devices (user_id, name, type, last_sync_at) VALUES ($1, $2, $3, NOW()) RETURNING id;`)
	device := entity.Device{
		UserID: userID,
		Name:   "work laptop",
		Type:   "desktop",
	}
	did := uuid.New()
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(device.UserID, device.Name, device.Type).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(did))
		id, err := repo.CreateDevice(ctx, &device)
		assert.NoError(t, err)
		assert.Equal(t, did, id)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(device.UserID, device.Name, device.Type).
			WillReturnError(errors.New("db error"))
		_, err := repo.CreateDevice(ctx, &device)
		assert.Error(t, err)
	})
}
