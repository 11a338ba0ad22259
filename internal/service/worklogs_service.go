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

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type WorkLogsService struct {
	repo repository.WorkLogsRepositoryI
}

func NewWorkLogsService(workLogsRepo repository.WorkLogsRepositoryI) *WorkLogsService {
	if workLogsRepo == nil {
		log.Fatal("provided nil workLogsRepo")
	}
	return &WorkLogsService{
		repo: workLogsRepo,
	}
}

func (ws *WorkLogsService) Create(ctx context.Context, uid uuid.UUID, req CreateWorkLogRequest) (*entity.WorkLog, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.Join(errorvalues.ErrValidation, err)
	}
	workDate, err := entity.ParseDate(req.WorkDate)
	if err != nil {
		return nil, errors.Join(errorvalues.ErrValidation, err)
	}
	id, err := ws.repo.Create(ctx, &entity.WorkLog{
		UserID:          uid,
		Title:           req.Title,
		Content:         req.Content,
		WorkDate:        workDate,
		DurationMinutes: req.DurationMinutes,
		Status:          entity.WorkStatus(req.Status),
		LocalID:         req.LocalID,
	}, req.CategoryIDs, req.TagIDs)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrCategoryNotFound),
			errors.Is(err, errorvalues.ErrTagNotFound),
			errors.Is(err, errorvalues.ErrLocalIDExists),
			errors.Is(err, errorvalues.ErrUserNotFound):
			return nil, err
		}
		return nil, errors.New("work logs repository error: " + err.Error())
	}
	wl, err := ws.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("work logs repository error: " + err.Error())
	}
	return wl, nil
}

func (ws *WorkLogsService) Find(ctx context.Context, uid uuid.UUID, query WorkLogQuery) ([]*entity.WorkLog, *entity.PageMeta, error) {
	if err := validate.Struct(query); err != nil {
		return nil, nil, errors.Join(errorvalues.ErrValidation, err)
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	filter := repository.WorkLogFilter{
		Status:     entity.WorkStatus(query.Status),
		CategoryID: query.CategoryID,
		TagID:      query.TagID,
		Search:     query.Search,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	if query.StartDate != "" {
		from, err := entity.ParseDate(query.StartDate)
		if err != nil {
			return nil, nil, errors.Join(errorvalues.ErrValidation, err)
		}
		filter.From = &from
	}
	if query.EndDate != "" {
		to, err := entity.ParseDate(query.EndDate)
		if err != nil {
			return nil, nil, errors.Join(errorvalues.ErrValidation, err)
		}
		filter.To = &to
	}
	logs, total, err := ws.repo.Find(ctx, uid, filter)
	if err != nil {
		return nil, nil, errors.New("work logs repository error: " + err.Error())
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	meta := &entity.PageMeta{
		Total:           total,
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		HasNextPage:     page*limit < total,
		HasPreviousPage: page > 1,
	}
	return logs, meta, nil
}

func (ws *WorkLogsService) Get(ctx context.Context, id, uid uuid.UUID) (*entity.WorkLog, error) {
	wl, err := ws.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrWorkLogNotFound) {
			return nil, err
		}
		return nil, errors.New("work logs repository error: " + err.Error())
	}
	if wl.UserID != uid {
		return nil, errorvalues.ErrWrongOwner
	}
	return wl, nil
}

func (ws *WorkLogsService) Update(ctx context.Context, id, uid uuid.UUID, req UpdateWorkLogRequest) (*entity.WorkLog, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.Join(errorvalues.ErrValidation, err)
	}
	wl, err := ws.Get(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		wl.Title = *req.Title
	}
	if req.Content != nil {
		wl.Content = *req.Content
	}
	if req.WorkDate != nil {
		workDate, err := entity.ParseDate(*req.WorkDate)
		if err != nil {
			return nil, errors.Join(errorvalues.ErrValidation, err)
		}
		wl.WorkDate = workDate
	}
	if req.DurationMinutes != nil {
		wl.DurationMinutes = *req.DurationMinutes
	}
	if req.Status != nil {
		wl.Status = entity.WorkStatus(*req.Status)
	}
	if err := ws.repo.Update(ctx, wl); err != nil {
		if errors.Is(err, errorvalues.ErrWorkLogNotFound) {
			return nil, err
		}
		return nil, errors.New("work logs repository error: " + err.Error())
	}
	if req.RelinkCategories {
		if err := ws.repo.SetCategories(ctx, id, req.CategoryIDs); err != nil {
			if errors.Is(err, errorvalues.ErrCategoryNotFound) {
				return nil, err
			}
			return nil, errors.New("work logs repository error: " + err.Error())
		}
	}
	if req.RelinkTags {
		if err := ws.repo.SetTags(ctx, id, req.TagIDs); err != nil {
			if errors.Is(err, errorvalues.ErrTagNotFound) {
				return nil, err
			}
			return nil, errors.New("work logs repository error: " + err.Error())
		}
	}
	updated, err := ws.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("work logs repository error: " + err.Error())
	}
	return updated, nil
}

func (ws *WorkLogsService) Delete(ctx context.Context, id, uid uuid.UUID) error {
	_, err := ws.Get(ctx, id, uid)
	if err != nil {
		return err
	}
	err = ws.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrWorkLogNotFound) {
			return err
		}
		return errors.New("work logs repository error: " + err.Error())
	}
	return nil
}

func (ws *WorkLogsService) Calendar(ctx context.Context, uid uuid.UUID, year, month int) ([]*entity.CalendarEntry, error) {
	if year < 1 || month < 1 || month > 12 {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("invalid year or month"))
	}
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	from := entity.NewDate(monthStart)
	to := entity.NewDate(monthStart.AddDate(0, 1, -1))
	entries, err := ws.repo.GetByDateRange(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("work logs repository error: " + err.Error())
	}
	return entries, nil
}
