package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/internal/service"
	"github.com/limbo/worklog/pkg/entity"
	"github.com/limbo/worklog/pkg/httputil"
)

type CreateWorkLogRequest struct {
	Title           string      `json:"title"`
	Content         string      `json:"content"`
	WorkDate        string      `json:"work_date"`
	DurationMinutes int         `json:"duration_minutes"`
	Status          string      `json:"status"`
	LocalID         string      `json:"local_id"`
	CategoryIDs     []uuid.UUID `json:"category_ids"`
	TagIDs          []uuid.UUID `json:"tag_ids"`
}

type UpdateWorkLogRequest struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	WorkDate        *string `json:"work_date"`
	DurationMinutes *int    `json:"duration_minutes"`
	Status          *string `json:"status"`
	// Pointers to slices tell "leave links alone" apart from "unlink all"
	CategoryIDs *[]uuid.UUID `json:"category_ids"`
	TagIDs      *[]uuid.UUID `json:"tag_ids"`
}

type GetWorkLogsResponse struct {
	WorkLogs []*entity.WorkLog `json:"work_logs"`
	Meta     *entity.PageMeta  `json:"meta"`
}

func (s *Server) CreateWorkLog(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create work log error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateWorkLogRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create work log error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	workLog, err := s.workLogsService.Create(ctx, uid, service.CreateWorkLogRequest{
		Title:           req.Title,
		Content:         req.Content,
		WorkDate:        req.WorkDate,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
		LocalID:         req.LocalID,
		CategoryIDs:     req.CategoryIDs,
		TagIDs:          req.TagIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("create work log error: invalid fields")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid work log fields", err)
		case errors.Is(err, errorvalues.ErrLocalIDExists):
			logger.Error("create work log error: duplicate local id")
			httputil.WriteErrorResponse(w, http.StatusConflict, "work log with such local id already exists", nil)
		case errors.Is(err, errorvalues.ErrCategoryNotFound):
			logger.Error("create work log error: unknown category link")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "linked category doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrTagNotFound):
			logger.Error("create work log error: unknown tag link")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "linked tag doesn't exist", nil)
		default:
			logger.Error("create work log error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating work log", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, workLog)
	logger.Info("work log created")
}

func (s *Server) GetWorkLogs(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get work logs error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	q := r.URL.Query()
	query := service.WorkLogQuery{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			logger.Error("get work logs error: invalid category_id filter")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid category_id filter", nil)
			return
		}
		query.CategoryID = &id
	}
	if raw := q.Get("tag_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			logger.Error("get work logs error: invalid tag_id filter")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid tag_id filter", nil)
			return
		}
		query.TagID = &id
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	workLogs, meta, err := s.workLogsService.Find(ctx, uid, query)
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("get work logs error: invalid filters")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid work log filters", err)
			return
		}
		logger.Error("getting work logs list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting work logs list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetWorkLogsResponse{
		WorkLogs: workLogs,
		Meta:     meta,
	})
	logger.Info("work logs provided")
}

func (s *Server) GetWorkLog(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get work log error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("get work log error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid work log id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	workLog, err := s.workLogsService.Get(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrWorkLogNotFound):
			logger.Error("get work log error: unexist work log")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "work log doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("get work log error: work log has different owner")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "work log belongs to another user", nil)
		default:
			logger.Error("get work log error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting work log", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, workLog)
	logger.Info("work log provided")
}

func (s *Server) UpdateWorkLog(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update work log error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("update work log error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid work log id in path value", nil)
		return
	}
	var req UpdateWorkLogRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update work log error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	serviceReq := service.UpdateWorkLogRequest{
		Title:           req.Title,
		Content:         req.Content,
		WorkDate:        req.WorkDate,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
	}
	if req.CategoryIDs != nil {
		serviceReq.CategoryIDs = *req.CategoryIDs
		serviceReq.RelinkCategories = true
	}
	if req.TagIDs != nil {
		serviceReq.TagIDs = *req.TagIDs
		serviceReq.RelinkTags = true
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	workLog, err := s.workLogsService.Update(ctx, id, uid, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("update work log error: invalid fields")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid work log fields", err)
		case errors.Is(err, errorvalues.ErrWorkLogNotFound):
			logger.Error("update work log error: unexist work log")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "work log doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("update work log error: work log has different owner")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "work log belongs to another user", nil)
		case errors.Is(err, errorvalues.ErrCategoryNotFound):
			logger.Error("update work log error: unknown category link")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "linked category doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrTagNotFound):
			logger.Error("update work log error: unknown tag link")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "linked tag doesn't exist", nil)
		default:
			logger.Error("update work log error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating work log", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, workLog)
	logger.Info("work log updated")
}

func (s *Server) DeleteWorkLog(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("work log deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("work log deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid work log id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.workLogsService.Delete(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrWorkLogNotFound):
			logger.Error("work log deletion error: unexist work log")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "work log doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("work log deletion error: work log has different owner")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "work log belongs to another user", nil)
		default:
			logger.Error("work log deletion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting work log", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("work log deleted")
}

func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get calendar error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		logger.Error("get calendar error: invalid year in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid year in path value", nil)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		logger.Error("get calendar error: invalid month in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid month in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	entries, err := s.workLogsService.Calendar(ctx, uid, year, month)
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("get calendar error: invalid year or month")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid year or month", err)
			return
		}
		logger.Error("get calendar error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting calendar", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, entries)
	logger.Info("calendar provided")
}
