package timetracker

import (
	"context"
	"errors"
	"timetracker/domain/entity"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
)

type Dashboard struct {
	Sessions      []entity.TimeSession `json:"sessions"`
	ActiveSession *entity.TimeSession  `json:"active_session"`
}

// Dashboard returns the user's sessions, newest first, and the active one if any.
func (u *TimeTrackerUsecase) Dashboard(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	sessions, err := u.sessions.ListByUserOrderedByCreated(ctx, userID, entity.SortDesc)
	if err != nil {
		return Dashboard{}, err
	}

	active, err := u.sessions.FindActiveByStatus(ctx, userID)
	if err != nil && !errors.Is(err, customerrors.ErrNotFound) {
		return Dashboard{}, err
	}
	return Dashboard{Sessions: sessions, ActiveSession: active}, nil
}

func (u *TimeTrackerUsecase) SessionsByStartTime(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error) {
	return u.sessions.ListByUserOrderedByStart(ctx, userID, dir)
}
