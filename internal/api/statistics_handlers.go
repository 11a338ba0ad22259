package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/pkg/httputil"
)

func (s *Server) GetStatisticsSummary(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get statistics summary error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	summary, err := s.statisticsService.GetSummary(ctx, uid)
	if err != nil {
		logger.Error("getting statistics summary error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting statistics summary", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, summary)
	logger.Info("statistics summary provided")
}

func (s *Server) GetStatisticsTrends(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get statistics trends error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	period := r.URL.Query().Get("period")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	trends, err := s.statisticsService.GetTrends(ctx, uid, period)
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("get statistics trends error: unknown period")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "unknown trends period", err)
			return
		}
		logger.Error("getting statistics trends error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting statistics trends", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, trends)
	logger.Info("statistics trends provided")
}

func (s *Server) GetStatisticsHeatmap(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get statistics heatmap error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	// Year comes from the path; the bare route falls back to the current year
	year := time.Now().UTC().Year()
	if raw := chi.URLParam(r, "year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			logger.Error("get statistics heatmap error: invalid year")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid heatmap year", nil)
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	cells, err := s.statisticsService.GetHeatmap(ctx, uid, year)
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("get statistics heatmap error: invalid year")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid heatmap year", err)
			return
		}
		logger.Error("getting statistics heatmap error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting statistics heatmap", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, cells)
	logger.Info("statistics heatmap provided")
}
