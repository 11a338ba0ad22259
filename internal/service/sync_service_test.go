package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/internal/service"
	"github.com/limbo/worklog/pkg/entity"
	"github.com/stretchr/testify/assert"
)

var deviceID = uuid.New()

type syncRepoMock struct {
	state mockState
	// Recorded arguments for call assertions
	uploaded        []entity.SyncEntry
	lastSync        *time.Time
	pending         int
	downloadsLogged int
}

func (m *syncRepoMock) UploadBatch(ctx context.Context, uid uuid.UUID, entries []entity.SyncEntry) ([]entity.SyncOutcome, error) {
	m.uploaded = entries
	if m.state == stateDBError {
		return nil, errors.New("db error")
	}
	outcomes := make([]entity.SyncOutcome, 0, len(entries))
	for _, e := range entries {
		outcomes = append(outcomes, entity.SyncOutcome{
			LocalID:  e.LocalID,
			Status:   entity.OutcomeCreated,
			ServerID: uuid.New(),
		})
	}
	return outcomes, nil
}

func (m *syncRepoMock) LogDownload(ctx context.Context, uid uuid.UUID) error {
	if m.state == stateDBError {
		return errors.New("db error")
	}
	m.downloadsLogged++
	return nil
}

func (m *syncRepoMock) LastSuccessfulSync(ctx context.Context, uid uuid.UUID) (*time.Time, error) {
	if m.state == stateDBError {
		return nil, errors.New("db error")
	}
	return m.lastSync, nil
}

func (m *syncRepoMock) CountUnsynced(ctx context.Context, uid uuid.UUID) (int, error) {
	if m.state == stateDBError {
		return 0, errors.New("db error")
	}
	return m.pending, nil
}

func (m *syncRepoMock) CreateDevice(ctx context.Context, device *entity.Device) (uuid.UUID, error) {
	if m.state == stateDBError {
		return uuid.UUID{}, errors.New("db error")
	}
	return deviceID, nil
}

func (m *syncRepoMock) GetDevicesByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Device, error) {
	if m.state == stateDBError {
		return nil, errors.New("db error")
	}
	return []*entity.Device{{ID: deviceID, UserID: uid, Name: "work laptop", Type: "desktop"}}, nil
}

func validLocalWorkLog() service.LocalWorkLogRequest {
	return service.LocalWorkLogRequest{
		LocalID:         "local-1",
		Title:           "offline entry",
		Content:         "written on the train",
		WorkDate:        "2026-08-30",
		DurationMinutes: 45,
		Status:          "completed",
		UpdatedAt:       "2026-08-30T18:00:00Z",
	}
}

func TestSyncUpload(t *testing.T) {
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		mock := &syncRepoMock{state: stateSuccess}
		s := service.NewSyncService(mock, &workLogsRepoMock{state: stateSuccess})
		result, err := s.Upload(ctx, userID, []service.LocalWorkLogRequest{validLocalWorkLog()})
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Synced)
		assert.Equal(t, entity.OutcomeCreated, result.Results[0].Status)
		assert.Len(t, mock.uploaded, 1)
		assert.Equal(t, "local-1", mock.uploaded[0].LocalID)
		assert.Equal(t, "2026-08-30", mock.uploaded[0].WorkDate.String())
		assert.Equal(t, time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC), mock.uploaded[0].UpdatedAt.UTC())
	})
	t.Run("malformed entry rejects whole batch", func(t *testing.T) {
		mock := &syncRepoMock{state: stateSuccess}
		s := service.NewSyncService(mock, &workLogsRepoMock{state: stateSuccess})
		bad := validLocalWorkLog()
		bad.WorkDate = "tomorrow"
		_, err := s.Upload(ctx, userID, []service.LocalWorkLogRequest{validLocalWorkLog(), bad})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
		assert.Nil(t, mock.uploaded)
	})
	t.Run("missing local id", func(t *testing.T) {
		mock := &syncRepoMock{state: stateSuccess}
		s := service.NewSyncService(mock, &workLogsRepoMock{state: stateSuccess})
		bad := validLocalWorkLog()
		bad.LocalID = ""
		_, err := s.Upload(ctx, userID, []service.LocalWorkLogRequest{bad})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
		assert.Nil(t, mock.uploaded)
	})
	t.Run("bad updated_at", func(t *testing.T) {
		mock := &syncRepoMock{state: stateSuccess}
		s := service.NewSyncService(mock, &workLogsRepoMock{state: stateSuccess})
		bad := validLocalWorkLog()
		bad.UpdatedAt = "30.08.2026 18:00"
		_, err := s.Upload(ctx, userID, []service.LocalWorkLogRequest{bad})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
		assert.Nil(t, mock.uploaded)
	})
	t.Run("db error", func(t *testing.T) {
		mock := &syncRepoMock{state: stateDBError}
		s := service.NewSyncService(mock, &workLogsRepoMock{state: stateSuccess})
		_, err := s.Upload(ctx, userID, []service.LocalWorkLogRequest{validLocalWorkLog()})
		assert.Error(t, err)
	})
}

func TestSyncDownload(t *testing.T) {
	ctx := context.Background()
	t.Run("full dump without cursor", func(t *testing.T) {
		workLogs := &workLogsRepoMock{state: stateSuccess}
		syncRepo := &syncRepoMock{state: stateSuccess}
		s := service.NewSyncService(syncRepo, workLogs)
		result, err := s.Download(ctx, userID, nil)
		assert.NoError(t, err)
		assert.Len(t, result.WorkLogs, 1)
		assert.Nil(t, workLogs.lastSince)
		assert.WithinDuration(t, time.Now().UTC(), result.LastSyncAt, time.Minute)
		assert.Equal(t, 1, syncRepo.downloadsLogged)
	})
	t.Run("incremental with cursor", func(t *testing.T) {
		workLogs := &workLogsRepoMock{state: stateSuccess}
		s := service.NewSyncService(&syncRepoMock{state: stateSuccess}, workLogs)
		cursor := time.Now().Add(-2 * time.Hour)
		_, err := s.Download(ctx, userID, &cursor)
		assert.NoError(t, err)
		assert.Equal(t, &cursor, workLogs.lastSince)
	})
	t.Run("db error", func(t *testing.T) {
		s := service.NewSyncService(&syncRepoMock{state: stateSuccess}, &workLogsRepoMock{state: stateDBError})
		_, err := s.Download(ctx, userID, nil)
		assert.Error(t, err)
	})
}

func TestSyncStatus(t *testing.T) {
	ctx := context.Background()
	t.Run("synced before", func(t *testing.T) {
		lastSync := time.Now().Add(-time.Hour)
		mock := &syncRepoMock{state: stateSuccess, lastSync: &lastSync, pending: 3}
		s := service.NewSyncService(mock, &workLogsRepoMock{state: stateSuccess})
		status, err := s.Status(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, &lastSync, status.LastSyncAt)
		assert.Equal(t, 3, status.PendingUploads)
	})
	t.Run("never synced", func(t *testing.T) {
		mock := &syncRepoMock{state: stateSuccess}
		s := service.NewSyncService(mock, &workLogsRepoMock{state: stateSuccess})
		status, err := s.Status(ctx, userID)
		assert.NoError(t, err)
		assert.Nil(t, status.LastSyncAt)
		assert.Equal(t, 0, status.PendingUploads)
	})
}

func TestRegisterDevice(t *testing.T) {
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		s := service.NewSyncService(&syncRepoMock{state: stateSuccess}, &workLogsRepoMock{state: stateSuccess})
		device, err := s.RegisterDevice(ctx, userID, service.RegisterDeviceRequest{Name: "work laptop", Type: "desktop"})
		assert.NoError(t, err)
		assert.Equal(t, deviceID, device.ID)
		assert.Equal(t, userID, device.UserID)
	})
	t.Run("unknown type", func(t *testing.T) {
		s := service.NewSyncService(&syncRepoMock{state: stateSuccess}, &workLogsRepoMock{state: stateSuccess})
		_, err := s.RegisterDevice(ctx, userID, service.RegisterDeviceRequest{Type: "fridge"})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
}

func TestListDevices(t *testing.T) {
	ctx := context.Background()
	s := service.NewSyncService(&syncRepoMock{state: stateSuccess}, &workLogsRepoMock{state: stateSuccess})
	devices, err := s.ListDevices(ctx, userID)
	assert.NoError(t, err)
	assert.Len(t, devices, 1)
	assert.Equal(t, deviceID, devices[0].ID)
}
