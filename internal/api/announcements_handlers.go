package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/pkg/httputil"
)

func (s *Server) GetAnnouncements(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get announcements error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	announcements, err := s.announcementsService.List(ctx, uid)
	if err != nil {
		logger.Error("getting announcements list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting announcements list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, announcements)
	logger.Info("announcements provided")
}

func (s *Server) MarkAnnouncementRead(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("mark announcement read error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("mark announcement read error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid announcement id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.announcementsService.MarkRead(ctx, uid, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAnnouncementNotFound) {
			logger.Error("mark announcement read error: unexist announcement")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "announcement doesn't exist", nil)
			return
		}
		logger.Error("mark announcement read error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while marking announcement read", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("announcement marked read")
}
