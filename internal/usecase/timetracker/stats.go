package timetracker

import (
	"context"
	"fmt"
	"timetracker/domain/entity"

	"github.com/google/uuid"
)

// Summarize aggregates sessions into Stats. Only completed sessions with a
// parseable duration count towards the totals.
func Summarize(sessions []entity.TimeSession) entity.Stats {
	var st entity.Stats
	st.TotalSessions = len(sessions)

	for _, s := range sessions {
		switch s.Status {
		case entity.StatusActive:
			st.ActiveSessions++
		case entity.StatusCompleted:
			st.CompletedSessions++
			if s.Duration == nil {
				continue
			}
			if secs, ok := ParseDuration(*s.Duration); ok {
				st.TotalDurationSeconds += secs
			}
		}
	}

	st.TotalHours = st.TotalDurationSeconds / 3600
	st.TotalMinutes = (st.TotalDurationSeconds % 3600) / 60
	return st
}

func (u *TimeTrackerUsecase) UserStats(ctx context.Context, userID uuid.UUID) (entity.Stats, error) {
	sessions, err := u.sessions.ListByUserOrderedByCreated(ctx, userID, entity.SortDesc)
	if err != nil {
		return entity.Stats{}, fmt.Errorf("failed to load sessions of %s: %w", userID, err)
	}
	return Summarize(sessions), nil
}

// AllUsersStats returns stats for every user, administrators included.
func (u *TimeTrackerUsecase) AllUsersStats(ctx context.Context) (map[uuid.UUID]entity.UserStats, error) {
	users, err := u.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	out := make(map[uuid.UUID]entity.UserStats, len(users))
	for _, user := range users {
		st, err := u.UserStats(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		out[user.ID] = entity.UserStats{User: user, Stats: st}
	}
	return out, nil
}
