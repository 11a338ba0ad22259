package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/internal/service"
	"github.com/limbo/worklog/pkg/httputil"
)

type LocalWorkLogRequest struct {
	LocalID         string `json:"local_id"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	WorkDate        string `json:"work_date"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	UpdatedAt       string `json:"updated_at"`
}

type SyncUploadRequest struct {
	WorkLogs []LocalWorkLogRequest `json:"work_logs"`
}

type RegisterDeviceRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Server) SyncUpload(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("sync upload error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req SyncUploadRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("sync upload error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	entries := make([]service.LocalWorkLogRequest, 0, len(req.WorkLogs))
	for _, e := range req.WorkLogs {
		entries = append(entries, service.LocalWorkLogRequest{
			LocalID:         e.LocalID,
			Title:           e.Title,
			Content:         e.Content,
			WorkDate:        e.WorkDate,
			DurationMinutes: e.DurationMinutes,
			Status:          e.Status,
			UpdatedAt:       e.UpdatedAt,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	result, err := s.syncService.Upload(ctx, uid, entries)
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("sync upload error: invalid batch")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid sync batch", err)
			return
		}
		logger.Error("sync upload error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during sync upload", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, result)
	logger.Info("sync batch applied", slog.Int("synced", result.Synced))
}

func (s *Server) SyncDownload(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("sync download error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var lastSyncAt *time.Time
	if raw := r.URL.Query().Get("lastSyncAt"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			logger.Error("sync download error: invalid lastSyncAt cursor")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid lastSyncAt cursor", nil)
			return
		}
		lastSyncAt = &ts
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	result, err := s.syncService.Download(ctx, uid, lastSyncAt)
	if err != nil {
		logger.Error("sync download error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during sync download", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, result)
	logger.Info("sync download provided", slog.Int("count", len(result.WorkLogs)))
}

func (s *Server) SyncStatus(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("sync status error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	status, err := s.syncService.Status(ctx, uid)
	if err != nil {
		logger.Error("sync status error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting sync status", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, status)
	logger.Info("sync status provided")
}

func (s *Server) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("register device error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req RegisterDeviceRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("register device error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	device, err := s.syncService.RegisterDevice(ctx, uid, service.RegisterDeviceRequest{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("register device error: invalid fields")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid device fields", err)
			return
		}
		logger.Error("register device error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while registering device", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, device)
	logger.Info("device registered")
}

func (s *Server) GetDevices(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get devices error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	devices, err := s.syncService.ListDevices(ctx, uid)
	if err != nil {
		logger.Error("get devices error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting devices list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, devices)
	logger.Info("devices provided")
}
