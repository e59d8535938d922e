package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// User represents an employee account. IPAddress and UserAgent form the device
// fingerprint that clock-in/clock-out requests must match exactly.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionStatus is the lifecycle state of a TimeSession.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// TimeSession represents one work interval of a user.
// EndTime and Duration stay nil while the session is active.
type TimeSession struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time"`
	Duration  *string       `json:"duration"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsActive reports whether the session has no recorded end time.
func (s *TimeSession) IsActive() bool {
	return s.EndTime == nil
}

// Stats summarises the sessions of one user.
type Stats struct {
	TotalSessions        int   `json:"total_sessions"`
	CompletedSessions    int   `json:"completed_sessions"`
	ActiveSessions       int   `json:"active_sessions"`
	TotalHours           int64 `json:"total_hours"`
	TotalMinutes         int64 `json:"total_minutes"`
	TotalDurationSeconds int64 `json:"total_duration_seconds"`
}

type UserStats struct {
	User  User  `json:"user"`
	Stats Stats `json:"stats"`
}

// CreateUserFields is the full set of columns accepted when inserting a user.
// PasswordHash must already be hashed.
type CreateUserFields struct {
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	IPAddress    string
	UserAgent    string
}

// UpdateUserFields carries a partial user update. Nil fields are left unchanged.
type UpdateUserFields struct {
	Name         *string
	Email        *string
	PasswordHash *string
	IsAdmin      *bool
	IPAddress    *string
	UserAgent    *string
}

type CreateSessionFields struct {
	UserID    uuid.UUID
	StartTime time.Time
}

// UpdateSessionFields carries a partial session update. Nil fields are left unchanged.
type UpdateSessionFields struct {
	StartTime *time.Time
	EndTime   *time.Time
	Duration  *string
	Status    *SessionStatus
}

// SortDirection orders listings. Anything other than SortAsc sorts descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	// MaxPerPage caps the page size of every listing.
	MaxPerPage = 100
	// MaxPage keeps (page-1)*perPage within an int32 offset.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// Page is one page of an ordered listing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	LastPage int `json:"last_page"`
}

// NewPage builds a Page and derives LastPage from total and perPage.
func NewPage[T any](items []T, total, page, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = (total + perPage - 1) / perPage
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: lastPage,
	}
}
