package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"timetracker/domain/entity"
	"timetracker/internal/usecase/timetracker"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
)

type UserTimeTracker struct {
	User     entity.User          `json:"user"`
	Sessions []entity.TimeSession `json:"sessions"`
	Stats    entity.Stats         `json:"stats"`
}

// UserSessions lists the user's sessions, latest start first.
func (u *AdminUsecase) UserSessions(ctx context.Context, userID uuid.UUID) ([]entity.TimeSession, error) {
	return u.sessions.ListByUserOrderedByStart(ctx, userID, entity.SortDesc)
}

func (u *AdminUsecase) AllSessions(ctx context.Context, page, perPage int) (entity.Page[entity.TimeSession], error) {
	return u.sessions.ListAllPage(ctx, page, perPage)
}

func (u *AdminUsecase) UserSessionsPage(ctx context.Context, userID uuid.UUID, page, perPage int) (entity.Page[entity.TimeSession], error) {
	return u.sessions.ListByUserPage(ctx, userID, page, perPage)
}

// SessionsInRange lists sessions started within [from, to], bounds included.
func (u *AdminUsecase) SessionsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.TimeSession, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end before start: %w", customerrors.ErrInvalidInput)
	}
	return u.sessions.ListByUserInRange(ctx, userID, from, to)
}

func (u *AdminUsecase) UserTimeTracker(ctx context.Context, userID uuid.UUID) (UserTimeTracker, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return UserTimeTracker{}, err
	}
	sessions, err := u.UserSessions(ctx, userID)
	if err != nil {
		return UserTimeTracker{}, err
	}
	return UserTimeTracker{
		User:     *user,
		Sessions: sessions,
		Stats:    timetracker.Summarize(sessions),
	}, nil
}

// UpdateSession applies an admin correction. Whenever the session ends up with
// an end time its duration is recomputed and it is marked completed, so the
// status, end time and duration never disagree. Returns false when the session
// does not exist.
func (u *AdminUsecase) UpdateSession(ctx context.Context, id uuid.UUID, fields entity.UpdateSessionFields) (bool, error) {
	current, err := u.sessions.FindByID(ctx, id)
	if errors.Is(err, customerrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	start := current.StartTime
	if fields.StartTime != nil {
		start = *fields.StartTime
	}
	end := current.EndTime
	if fields.EndTime != nil {
		end = fields.EndTime
	}

	update := entity.UpdateSessionFields{StartTime: fields.StartTime, EndTime: fields.EndTime}
	if end == nil {
		if fields.Status != nil && *fields.Status == entity.StatusCompleted {
			return false, fmt.Errorf("completed session needs an end time: %w", customerrors.ErrInvalidInput)
		}
	} else {
		if end.Before(start) {
			return false, fmt.Errorf("end time before start time: %w", customerrors.ErrInvalidInput)
		}
		duration := timetracker.FormatDuration(timetracker.ElapsedSeconds(start, *end))
		status := entity.StatusCompleted
		update.Duration = &duration
		update.Status = &status
	}

	ok, err := u.sessions.Update(ctx, id, update)
	if err != nil {
		return false, err
	}
	if ok {
		u.logger.Info("session updated by admin", slog.String("session_id", id.String()))
	}
	return ok, nil
}

func (u *AdminUsecase) DeleteSession(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := u.sessions.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		u.logger.Info("session deleted by admin", slog.String("session_id", id.String()))
	}
	return ok, nil
}
