package timetracker

import (
	"context"
	"log/slog"
	"time"
	"timetracker/domain/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	All(ctx context.Context) ([]entity.User, error)
}

type SessionRepository interface {
	ListByUserOrderedByCreated(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error)
	ListByUserOrderedByStart(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error)

	// FindActiveByUser returns the session without an end time or customerrors.ErrNotFound.
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*entity.TimeSession, error)
	FindActiveByStatus(ctx context.Context, userID uuid.UUID) (*entity.TimeSession, error)
	HasActive(ctx context.Context, userID uuid.UUID) (bool, error)

	Create(ctx context.Context, fields entity.CreateSessionFields) (*entity.TimeSession, error)
	// Close completes the session if it is still open and reports whether it did.
	Close(ctx context.Context, id uuid.UUID, end time.Time, duration string) (bool, error)
}

type TimeTrackerUsecase struct {
	users    UserRepository
	sessions SessionRepository
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*TimeTrackerUsecase)

// WithClock replaces time.Now as the source of clock-in and clock-out instants.
func WithClock(now func() time.Time) Option {
	return func(u *TimeTrackerUsecase) {
		u.now = now
	}
}

func NewTimeTrackerUsecase(users UserRepository, sessions SessionRepository, logger *slog.Logger, opts ...Option) *TimeTrackerUsecase {
	u := &TimeTrackerUsecase{
		users:    users,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}
