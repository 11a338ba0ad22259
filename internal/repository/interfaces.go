package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/worklog/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database, returns assigned id
	Create(ctx context.Context, user *entity.User) (uuid.UUID, error)
	// Looks up user by email. Can be used for login
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Updates user's profile info
	Update(ctx context.Context, user *entity.User) error
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
}

type CategoriesRepositoryI interface {
	// Creates new category appended at the end of the user's sort order
	Create(ctx context.Context, category *entity.Category) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	// Lists user's categories ordered by sort order
	GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Assigns each id a sort order equal to its position. All-or-nothing:
	// a single missing or foreign row aborts the whole batch
	Reorder(ctx context.Context, uid uuid.UUID, ids []uuid.UUID) error
}

type TagsRepositoryI interface {
	Create(ctx context.Context, tag *entity.Tag) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error)
	// Lists user's tags ordered by name
	GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// WorkLogFilter narrows a work log listing. Nil/zero fields are skipped.
type WorkLogFilter struct {
	From       *entity.Date
	To         *entity.Date
	Status     entity.WorkStatus
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

type WorkLogsRepositoryI interface {
	// Creates work log with category/tag links in one transaction
	Create(ctx context.Context, wl *entity.WorkLog, categoryIDs, tagIDs []uuid.UUID) (uuid.UUID, error)
	// Returns work log with resolved categories and tags
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WorkLog, error)
	// Returns a page of matching logs plus the total match count
	Find(ctx context.Context, uid uuid.UUID, filter WorkLogFilter) ([]*entity.WorkLog, int, error)
	Update(ctx context.Context, wl *entity.WorkLog) error
	// Replaces category links of a work log
	SetCategories(ctx context.Context, id uuid.UUID, categoryIDs []uuid.UUID) error
	// Replaces tag links of a work log
	SetTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Slim rows for calendar month views
	GetByDateRange(ctx context.Context, uid uuid.UUID, from, to entity.Date) ([]*entity.CalendarEntry, error)
	// Logs updated strictly after since, with resolved categories and tags.
	// Nil since returns everything
	GetUpdatedSince(ctx context.Context, uid uuid.UUID, since *time.Time) ([]*entity.WorkLog, error)
}

type StatisticsRepositoryI interface {
	// Sum of duration minutes and row count over all user's logs
	GetTotals(ctx context.Context, uid uuid.UUID) (int, int, error)
	// Per-category duration sums and counts, percentage left unset
	GetCategoryStats(ctx context.Context, uid uuid.UUID) ([]*entity.CategoryStat, error)
	// Distinct work dates sorted descending
	GetDistinctWorkDates(ctx context.Context, uid uuid.UUID) ([]entity.Date, error)
	// Daily sums/counts for work dates on or after since, ascending
	GetDailyTotalsSince(ctx context.Context, uid uuid.UUID, since entity.Date) ([]*entity.TrendPoint, error)
	// Daily log counts within the year, level left unset
	GetDailyCountsForYear(ctx context.Context, uid uuid.UUID, year int) ([]*entity.HeatmapCell, error)
}

type SyncRepositoryI interface {
	// Applies uploaded entries in submission order inside one transaction.
	// Conflicts are reported in outcomes, not returned as errors
	UploadBatch(ctx context.Context, uid uuid.UUID, entries []entity.SyncEntry) ([]entity.SyncOutcome, error)
	// Records a download event for the user
	LogDownload(ctx context.Context, uid uuid.UUID) error
	// Instant of the user's last successful sync event, nil if never synced
	LastSuccessfulSync(ctx context.Context, uid uuid.UUID) (*time.Time, error)
	// Count of user's logs not yet uploaded
	CountUnsynced(ctx context.Context, uid uuid.UUID) (int, error)
	CreateDevice(ctx context.Context, device *entity.Device) (uuid.UUID, error)
	GetDevicesByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Device, error)
}

type AnnouncementsRepositoryI interface {
	// Published announcements newest-first with the caller's read flag resolved
	ListPublished(ctx context.Context, uid uuid.UUID) ([]*entity.Announcement, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Announcement, error)
	// Idempotent per-(user, announcement) read record
	MarkRead(ctx context.Context, uid, announcementID uuid.UUID) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
