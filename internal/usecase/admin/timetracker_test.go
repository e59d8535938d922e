package admin

import (
	"context"
	"errors"
	"testing"
	"time"
	"timetracker/domain/entity"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func openSession(id uuid.UUID) *entity.TimeSession {
	return &entity.TimeSession{ID: id, UserID: uuid.New(), StartTime: start, Status: entity.StatusActive}
}

func closedSession(id uuid.UUID, end time.Time, d string) *entity.TimeSession {
	return &entity.TimeSession{ID: id, UserID: uuid.New(), StartTime: start, EndTime: &end, Duration: &d, Status: entity.StatusCompleted}
}

func TestUpdateSession_NewEndRecomputesDuration(t *testing.T) {
	uc, _, sessions := setupAdminUsecase()
	id := uuid.New()
	sessions.findByIDFunc = func(context.Context, uuid.UUID) (*entity.TimeSession, error) {
		return closedSession(id, start.Add(time.Hour), "01:00:00"), nil
	}

	var got entity.UpdateSessionFields
	sessions.updateFunc = func(_ context.Context, _ uuid.UUID, fields entity.UpdateSessionFields) (bool, error) {
		got = fields
		return true, nil
	}

	end := start.Add(2*time.Hour + 30*time.Minute + 15*time.Second)
	ok, err := uc.UpdateSession(context.Background(), id, entity.UpdateSessionFields{EndTime: &end})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, got.Duration)
	assert.Equal(t, "02:30:15", *got.Duration)
	require.NotNil(t, got.Status)
	assert.Equal(t, entity.StatusCompleted, *got.Status)
}

func TestUpdateSession_NewStartOnClosedSession(t *testing.T) {
	uc, _, sessions := setupAdminUsecase()
	id := uuid.New()
	sessions.findByIDFunc = func(context.Context, uuid.UUID) (*entity.TimeSession, error) {
		return closedSession(id, start.Add(time.Hour), "01:00:00"), nil
	}

	var got entity.UpdateSessionFields
	sessions.updateFunc = func(_ context.Context, _ uuid.UUID, fields entity.UpdateSessionFields) (bool, error) {
		got = fields
		return true, nil
	}

	newStart := start.Add(30 * time.Minute)
	_, err := uc.UpdateSession(context.Background(), id, entity.UpdateSessionFields{StartTime: &newStart})
	require.NoError(t, err)
	require.NotNil(t, got.Duration)
	assert.Equal(t, "00:30:00", *got.Duration)
	assert.Nil(t, got.EndTime)
}

func TestUpdateSession_ClosingActiveSession(t *testing.T) {
	uc, _, sessions := setupAdminUsecase()
	id := uuid.New()
	sessions.findByIDFunc = func(context.Context, uuid.UUID) (*entity.TimeSession, error) {
		return openSession(id), nil
	}

	var got entity.UpdateSessionFields
	sessions.updateFunc = func(_ context.Context, _ uuid.UUID, fields entity.UpdateSessionFields) (bool, error) {
		got = fields
		return true, nil
	}

	end := start.Add(45 * time.Minute)
	activeStatus := entity.StatusActive
	_, err := uc.UpdateSession(context.Background(), id, entity.UpdateSessionFields{EndTime: &end, Status: &activeStatus})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, *got.Status)
	assert.Equal(t, "00:45:00", *got.Duration)
}

func TestUpdateSession_Rejected(t *testing.T) {
	id := uuid.New()

	t.Run("end before start", func(t *testing.T) {
		uc, _, sessions := setupAdminUsecase()
		sessions.findByIDFunc = func(context.Context, uuid.UUID) (*entity.TimeSession, error) {
			return openSession(id), nil
		}
		end := start.Add(-time.Minute)
		_, err := uc.UpdateSession(context.Background(), id, entity.UpdateSessionFields{EndTime: &end})
		require.ErrorIs(t, err, customerrors.ErrInvalidInput)
	})

	t.Run("completed without end time", func(t *testing.T) {
		uc, _, sessions := setupAdminUsecase()
		sessions.findByIDFunc = func(context.Context, uuid.UUID) (*entity.TimeSession, error) {
			return openSession(id), nil
		}
		st := entity.StatusCompleted
		_, err := uc.UpdateSession(context.Background(), id, entity.UpdateSessionFields{Status: &st})
		require.ErrorIs(t, err, customerrors.ErrInvalidInput)
	})
}

func TestUpdateSession_Missing(t *testing.T) {
	uc, _, sessions := setupAdminUsecase()
	sessions.findByIDFunc = func(context.Context, uuid.UUID) (*entity.TimeSession, error) {
		return nil, customerrors.ErrNotFound
	}

	ok, err := uc.UpdateSession(context.Background(), uuid.New(), entity.UpdateSessionFields{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteSession(t *testing.T) {
	uc, _, sessions := setupAdminUsecase()
	sessions.deleteFunc = func(context.Context, uuid.UUID) (bool, error) { return true, nil }

	ok, err := uc.DeleteSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionsInRange(t *testing.T) {
	uc, _, sessions := setupAdminUsecase()
	userID := uuid.New()
	to := start.Add(7 * 24 * time.Hour)
	sessions.listInRangeFunc = func(_ context.Context, gotUser uuid.UUID, from, gotTo time.Time) ([]entity.TimeSession, error) {
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, start, from)
		assert.Equal(t, to, gotTo)
		return []entity.TimeSession{*openSession(uuid.New())}, nil
	}

	got, err := uc.SessionsInRange(context.Background(), userID, start, to)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = uc.SessionsInRange(context.Background(), userID, to, start)
	require.ErrorIs(t, err, customerrors.ErrInvalidInput)
}

func TestUserTimeTracker(t *testing.T) {
	uc, users, sessions := setupAdminUsecase()
	userID := uuid.New()
	users.findByIDFunc = func(context.Context, uuid.UUID) (*entity.User, error) {
		return &entity.User{ID: userID, Name: "Jane"}, nil
	}
	sessions.listByStartFunc = func(_ context.Context, _ uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error) {
		assert.Equal(t, entity.SortDesc, dir)
		return []entity.TimeSession{
			*closedSession(uuid.New(), start.Add(time.Hour), "01:00:00"),
			*closedSession(uuid.New(), start.Add(time.Hour), "00:30:00"),
			*openSession(uuid.New()),
		}, nil
	}

	tt, err := uc.UserTimeTracker(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", tt.User.Name)
	assert.Len(t, tt.Sessions, 3)
	assert.Equal(t, int64(5400), tt.Stats.TotalDurationSeconds)
	assert.Equal(t, 1, tt.Stats.ActiveSessions)
}

func TestUserTimeTracker_UnknownUser(t *testing.T) {
	uc, users, _ := setupAdminUsecase()
	users.findByIDFunc = func(context.Context, uuid.UUID) (*entity.User, error) {
		return nil, customerrors.ErrNotFound
	}

	_, err := uc.UserTimeTracker(context.Background(), uuid.New())
	require.ErrorIs(t, err, customerrors.ErrNotFound)
}

func TestAllSessions_PassesPaging(t *testing.T) {
	uc, _, sessions := setupAdminUsecase()
	sessions.listAllPageFunc = func(_ context.Context, page, perPage int) (entity.Page[entity.TimeSession], error) {
		return entity.NewPage[entity.TimeSession](nil, 0, page, perPage), nil
	}
	sessions.listUserPageFunc = func(context.Context, uuid.UUID, int, int) (entity.Page[entity.TimeSession], error) {
		return entity.Page[entity.TimeSession]{}, errors.New("db down")
	}

	p, err := uc.AllSessions(context.Background(), 3, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.NotNil(t, p.Items)

	_, err = uc.UserSessionsPage(context.Background(), uuid.New(), 1, 10)
	require.Error(t, err)
}
