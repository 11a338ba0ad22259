package entity

import (
	"time"

	"github.com/google/uuid"
)

type WorkStatus string

const (
	StatusInProgress WorkStatus = "in_progress"
	StatusCompleted  WorkStatus = "completed"
	StatusOnHold     WorkStatus = "on_hold"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type WorkLog struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"uid"`
	Title           string        `json:"title"`
	Content         string        `json:"content,omitempty"`
	WorkDate        Date          `json:"work_date"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          WorkStatus    `json:"status"`
	LocalID         string        `json:"local_id,omitempty"`
	Synced          bool          `json:"synced"`
	LastSyncedAt    *time.Time    `json:"last_synced_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Categories      []CategoryRef `json:"categories,omitempty"`
	Tags            []TagRef      `json:"tags,omitempty"`
}

// CategoryRef is the trimmed category shape embedded into work log payloads.
type CategoryRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Icon  string    `json:"icon,omitempty"`
}

type TagRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"uid"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Tag struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"uid"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type AnnouncementType string

const (
	AnnouncementInfo        AnnouncementType = "info"
	AnnouncementWarning     AnnouncementType = "warning"
	AnnouncementMaintenance AnnouncementType = "maintenance"
	AnnouncementRelease     AnnouncementType = "release"
)

type Announcement struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Type        AnnouncementType `json:"type"`
	Published   bool             `json:"published"`
	PublishedAt *time.Time       `json:"published_at,omitempty"`
	IsRead      bool             `json:"is_read"`
}

type SyncType string

const (
	SyncUpload   SyncType = "upload"
	SyncDownload SyncType = "download"
	SyncConflict SyncType = "conflict"
)

type Device struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"uid"`
	Name       string    `json:"name,omitempty"`
	Type       string    `json:"type,omitempty"`
	LastSyncAt time.Time `json:"last_sync_at"`
}

// SyncEntry is one client-held work log submitted for upload.
type SyncEntry struct {
	LocalID         string
	Title           string
	Content         string
	WorkDate        Date
	DurationMinutes int
	Status          WorkStatus
	UpdatedAt       time.Time
}

type SyncOutcomeStatus string

const (
	OutcomeCreated  SyncOutcomeStatus = "created"
	OutcomeUpdated  SyncOutcomeStatus = "updated"
	OutcomeConflict SyncOutcomeStatus = "conflict"
)

type SyncOutcome struct {
	LocalID         string            `json:"local_id"`
	Status          SyncOutcomeStatus `json:"status"`
	ServerID        uuid.UUID         `json:"server_id,omitempty"`
	ServerUpdatedAt *time.Time        `json:"server_updated_at,omitempty"`
}

type SyncStatus struct {
	LastSyncAt     *time.Time `json:"last_sync_at"`
	PendingUploads int        `json:"pending_uploads"`
}

// StatisticsSummary is derived from work log rows on every read, never persisted.
type StatisticsSummary struct {
	TotalMinutes      int             `json:"total_minutes"`
	TotalWorkCount    int             `json:"total_work_count"`
	CurrentStreak     int             `json:"current_streak"`
	LongestStreak     int             `json:"longest_streak"`
	CategoryBreakdown []*CategoryStat `json:"category_breakdown"`
}

type CategoryStat struct {
	CategoryID   uuid.UUID `json:"category_id"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	TotalMinutes int       `json:"total_minutes"`
	WorkCount    int       `json:"work_count"`
	Percentage   int       `json:"percentage"`
}

type TrendPoint struct {
	Date         Date `json:"date"`
	TotalMinutes int  `json:"total_minutes"`
	WorkCount    int  `json:"work_count"`
}

type HeatmapCell struct {
	Date  Date `json:"date"`
	Count int  `json:"count"`
	Level int  `json:"level"`
}

// CalendarEntry is the slim work log shape for month views.
type CalendarEntry struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	WorkDate        Date       `json:"work_date"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          WorkStatus `json:"status"`
}

// PageMeta describes a page of a filtered work log listing.
type PageMeta struct {
	Total           int  `json:"total"`
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}
