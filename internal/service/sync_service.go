package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/internal/repository"
	"github.com/limbo/worklog/pkg/entity"
)

type SyncService struct {
	syncRepo     repository.SyncRepositoryI
	workLogsRepo repository.WorkLogsRepositoryI
	now          func() time.Time
}

func NewSyncService(syncRepo repository.SyncRepositoryI, workLogsRepo repository.WorkLogsRepositoryI) *SyncService {
	if syncRepo == nil || workLogsRepo == nil {
		log.Fatal("on sync service provided nil repos")
	}
	return &SyncService{
		syncRepo:     syncRepo,
		workLogsRepo: workLogsRepo,
		now:          time.Now,
	}
}

func (serv *SyncService) Upload(ctx context.Context, uid uuid.UUID, entries []LocalWorkLogRequest) (*UploadResult, error) {
	// The whole batch is validated before any row is touched, so a single
	// malformed entry never leaves a partially applied upload behind
	parsed := make([]entity.SyncEntry, 0, len(entries))
	for _, req := range entries {
		if err := validate.Struct(req); err != nil {
			return nil, errors.Join(errorvalues.ErrValidation, err)
		}
		workDate, err := entity.ParseDate(req.WorkDate)
		if err != nil {
			return nil, errors.Join(errorvalues.ErrValidation, err)
		}
		updatedAt, err := time.Parse(time.RFC3339, req.UpdatedAt)
		if err != nil {
			return nil, errors.Join(errorvalues.ErrValidation, errors.New("invalid updated_at timestamp "+req.UpdatedAt))
		}
		parsed = append(parsed, entity.SyncEntry{
			LocalID:         req.LocalID,
			Title:           req.Title,
			Content:         req.Content,
			WorkDate:        workDate,
			DurationMinutes: req.DurationMinutes,
			Status:          entity.WorkStatus(req.Status),
			UpdatedAt:       updatedAt,
		})
	}
	outcomes, err := serv.syncRepo.UploadBatch(ctx, uid, parsed)
	if err != nil {
		return nil, errors.New("sync repository error: " + err.Error())
	}
	return &UploadResult{
		Synced:  len(outcomes),
		Results: outcomes,
	}, nil
}

func (serv *SyncService) Download(ctx context.Context, uid uuid.UUID, lastSyncAt *time.Time) (*DownloadResult, error) {
	logs, err := serv.workLogsRepo.GetUpdatedSince(ctx, uid, lastSyncAt)
	if err != nil {
		return nil, errors.New("work logs repository error: " + err.Error())
	}
	if err := serv.syncRepo.LogDownload(ctx, uid); err != nil {
		return nil, errors.New("sync repository error: " + err.Error())
	}
	return &DownloadResult{
		WorkLogs: logs,
		// Cursor for the caller's next download
		LastSyncAt: serv.now().UTC(),
	}, nil
}

func (serv *SyncService) Status(ctx context.Context, uid uuid.UUID) (*entity.SyncStatus, error) {
	lastSync, err := serv.syncRepo.LastSuccessfulSync(ctx, uid)
	if err != nil {
		return nil, errors.New("sync repository error: " + err.Error())
	}
	pending, err := serv.syncRepo.CountUnsynced(ctx, uid)
	if err != nil {
		return nil, errors.New("sync repository error: " + err.Error())
	}
	return &entity.SyncStatus{
		LastSyncAt:     lastSync,
		PendingUploads: pending,
	}, nil
}

func (serv *SyncService) RegisterDevice(ctx context.Context, uid uuid.UUID, req RegisterDeviceRequest) (*entity.Device, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.Join(errorvalues.ErrValidation, err)
	}
	device := &entity.Device{
		UserID: uid,
		Name:   req.Name,
		Type:   req.Type,
	}
	id, err := serv.syncRepo.CreateDevice(ctx, device)
	if err != nil {
		return nil, errors.New("sync repository error: " + err.Error())
	}
	device.ID = id
	device.LastSyncAt = serv.now().UTC()
	return device, nil
}

func (serv *SyncService) ListDevices(ctx context.Context, uid uuid.UUID) ([]*entity.Device, error) {
	devices, err := serv.syncRepo.GetDevicesByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("sync repository error: " + err.Error())
	}
	return devices, nil
}
