package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/internal/service"
	"github.com/limbo/worklog/pkg/httputil"
)

type CreateTagRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create tag error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateTagRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create tag error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	tag, err := s.tagsService.Create(ctx, uid, service.CreateTagRequest{Name: req.Name})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("create tag error: invalid fields")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid tag fields", err)
		case errors.Is(err, errorvalues.ErrTagExists):
			logger.Error("create tag error: attempt to create existed tag")
			httputil.WriteErrorResponse(w, http.StatusConflict, "tag already exists", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("create tag error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create tag: user doesn't exist", nil)
		default:
			logger.Error("create tag error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating tag", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, tag)
	logger.Info("tag created")
}

func (s *Server) GetTags(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get tags error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	tags, err := s.tagsService.List(ctx, uid)
	if err != nil {
		logger.Error("getting tags list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting tags list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, tags)
	logger.Info("tags provided")
}

func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("tag deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("tag deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid tag id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tagsService.Delete(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrTagNotFound):
			logger.Error("tag deletion error: unexist tag")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "tag doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("tag deletion error: tag has different owner")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "tag belongs to another user", nil)
		default:
			logger.Error("tag deletion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting tag", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("tag deleted")
}
