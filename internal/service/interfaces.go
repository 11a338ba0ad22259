package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/worklog/pkg/entity"
)

type SignupRequest struct {
	Username    string `validate:"required,alphanum_underscore,min=3,max=100"`
	Email       string `validate:"required,email,max=255"`
	Password    string `validate:"required,min=8,max=72"`
	DisplayName string `validate:"max=100"`
}

type UpdateProfileRequest struct {
	Username    *string `validate:"omitempty,alphanum_underscore,min=3,max=100"`
	DisplayName *string `validate:"omitempty,max=100"`
}

type UserServiceI interface {
	// Validates credentials, creates new row in database. Returns user's data with ID
	Signup(ctx context.Context, req *SignupRequest) (*entity.User, error)
	// Compares given credentials. If ok, gives back user's data with ID
	Login(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type CreateCategoryRequest struct {
	Name  string `validate:"required,min=1,max=100"`
	Color string `validate:"required,hexcolor"`
	Icon  string `validate:"max=50"`
}

type UpdateCategoryRequest struct {
	Name  *string `validate:"omitempty,min=1,max=100"`
	Color *string `validate:"omitempty,hexcolor"`
	Icon  *string `validate:"omitempty,max=50"`
}

type CategoriesServiceI interface {
	Create(ctx context.Context, uid uuid.UUID, req CreateCategoryRequest) (*entity.Category, error)
	// User's categories in their chosen order
	List(ctx context.Context, uid uuid.UUID) ([]*entity.Category, error)
	Get(ctx context.Context, id, uid uuid.UUID) (*entity.Category, error)
	Update(ctx context.Context, id, uid uuid.UUID, req UpdateCategoryRequest) (*entity.Category, error)
	Delete(ctx context.Context, id, uid uuid.UUID) error
	// Applies the submitted ordering atomically and returns the new listing
	Reorder(ctx context.Context, uid uuid.UUID, ids []uuid.UUID) ([]*entity.Category, error)
}

type CreateTagRequest struct {
	Name string `validate:"required,min=1,max=50"`
}

type TagsServiceI interface {
	Create(ctx context.Context, uid uuid.UUID, req CreateTagRequest) (*entity.Tag, error)
	List(ctx context.Context, uid uuid.UUID) ([]*entity.Tag, error)
	Delete(ctx context.Context, id, uid uuid.UUID) error
}

type CreateWorkLogRequest struct {
	Title           string `validate:"required,min=1,max=200"`
	Content         string
	WorkDate        string `validate:"required,datetime=2006-01-02"`
	DurationMinutes int    `validate:"min=0"`
	Status          string `validate:"required,work_status"`
	LocalID         string `validate:"max=100"`
	CategoryIDs     []uuid.UUID
	TagIDs          []uuid.UUID
}

type UpdateWorkLogRequest struct {
	Title           *string `validate:"omitempty,min=1,max=200"`
	Content         *string
	WorkDate        *string `validate:"omitempty,datetime=2006-01-02"`
	DurationMinutes *int    `validate:"omitempty,min=0"`
	Status          *string `validate:"omitempty,work_status"`
	CategoryIDs     []uuid.UUID
	TagIDs          []uuid.UUID
	// Nil slices leave links untouched; relink flags tell them apart
	// from an explicit empty list
	RelinkCategories bool
	RelinkTags       bool
}

// WorkLogQuery narrows and paginates a work log listing.
type WorkLogQuery struct {
	Page       int
	Limit      int
	StartDate  string `validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `validate:"omitempty,datetime=2006-01-02"`
	Status     string `validate:"omitempty,work_status"`
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	Search     string
}

type WorkLogsServiceI interface {
	Create(ctx context.Context, uid uuid.UUID, req CreateWorkLogRequest) (*entity.WorkLog, error)
	// Returns matching page plus pagination metadata
	Find(ctx context.Context, uid uuid.UUID, query WorkLogQuery) ([]*entity.WorkLog, *entity.PageMeta, error)
	Get(ctx context.Context, id, uid uuid.UUID) (*entity.WorkLog, error)
	Update(ctx context.Context, id, uid uuid.UUID, req UpdateWorkLogRequest) (*entity.WorkLog, error)
	Delete(ctx context.Context, id, uid uuid.UUID) error
	Calendar(ctx context.Context, uid uuid.UUID, year, month int) ([]*entity.CalendarEntry, error)
}

type AnnouncementsServiceI interface {
	List(ctx context.Context, uid uuid.UUID) ([]*entity.Announcement, error)
	MarkRead(ctx context.Context, uid, announcementID uuid.UUID) error
}

type StatisticsServiceI interface {
	GetSummary(ctx context.Context, uid uuid.UUID) (*entity.StatisticsSummary, error)
	// period is one of week, month, year; empty defaults to month
	GetTrends(ctx context.Context, uid uuid.UUID, period string) ([]*entity.TrendPoint, error)
	GetHeatmap(ctx context.Context, uid uuid.UUID, year int) ([]*entity.HeatmapCell, error)
}

type LocalWorkLogRequest struct {
	LocalID         string `validate:"required,max=100"`
	Title           string `validate:"required,min=1,max=200"`
	Content         string
	WorkDate        string `validate:"required,datetime=2006-01-02"`
	DurationMinutes int    `validate:"min=0"`
	Status          string `validate:"required,work_status"`
	UpdatedAt       string `validate:"required"`
}

type UploadResult struct {
	Synced  int                  `json:"synced"`
	Results []entity.SyncOutcome `json:"results"`
}

type DownloadResult struct {
	WorkLogs   []*entity.WorkLog `json:"work_logs"`
	LastSyncAt time.Time         `json:"last_sync_at"`
}

type RegisterDeviceRequest struct {
	Name string `validate:"max=100"`
	Type string `validate:"omitempty,oneof=desktop mobile web"`
}

type SyncServiceI interface {
	// Validates the whole batch before touching any row, then applies it
	// in submission order as one atomic unit
	Upload(ctx context.Context, uid uuid.UUID, entries []LocalWorkLogRequest) (*UploadResult, error)
	// Logs updated strictly after lastSyncAt (all when nil) plus a fresh cursor
	Download(ctx context.Context, uid uuid.UUID, lastSyncAt *time.Time) (*DownloadResult, error)
	Status(ctx context.Context, uid uuid.UUID) (*entity.SyncStatus, error)
	RegisterDevice(ctx context.Context, uid uuid.UUID, req RegisterDeviceRequest) (*entity.Device, error)
	ListDevices(ctx context.Context, uid uuid.UUID) ([]*entity.Device, error)
}
