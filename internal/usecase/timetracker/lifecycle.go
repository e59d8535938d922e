package timetracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"timetracker/domain/entity"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
)

// ClockIn opens a session starting now. Callers validate first; a concurrent
// clock-in still fails with customerrors.ErrActiveSessionExists from storage.
func (u *TimeTrackerUsecase) ClockIn(ctx context.Context, userID uuid.UUID) (*entity.TimeSession, error) {
	session, err := u.sessions.Create(ctx, entity.CreateSessionFields{
		UserID:    userID,
		StartTime: u.now(),
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info("clocked in", slog.String("user_id", userID.String()), slog.String("session_id", session.ID.String()))
	return session, nil
}

// ClockOut closes the open session of the user. It returns false when there is
// no open session or another clock-out closed it first.
func (u *TimeTrackerUsecase) ClockOut(ctx context.Context, userID uuid.UUID) (bool, error) {
	session, err := u.sessions.FindActiveByUser(ctx, userID)
	if errors.Is(err, customerrors.ErrNotFound) {
		u.logger.Error("clock-out without an open session", slog.String("user_id", userID.String()))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find open session: %w", err)
	}

	end := u.now()
	duration := FormatDuration(ElapsedSeconds(session.StartTime, end))

	ok, err := u.sessions.Close(ctx, session.ID, end, duration)
	if err != nil {
		return false, err
	}
	if !ok {
		u.logger.Error("session was closed concurrently",
			slog.String("user_id", userID.String()),
			slog.String("session_id", session.ID.String()),
		)
		return false, nil
	}
	u.logger.Info("clocked out",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.String("duration", duration),
	)
	return true, nil
}

// ElapsedSeconds is the whole seconds between start and end, never negative.
// A sub-second difference falls back to the wall-clock second delta.
func ElapsedSeconds(start, end time.Time) int64 {
	secs := int64(end.Sub(start) / time.Second)
	if secs > 0 {
		return secs
	}
	return max(0, end.Unix()-start.Unix())
}
