package timetracker

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"
	"timetracker/domain/entity"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
)

type fakeUsers struct {
	users   map[uuid.UUID]entity.User
	findErr error
	allErr  error
}

func newFakeUsers(users ...entity.User) *fakeUsers {
	f := &fakeUsers{users: map[uuid.UUID]entity.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, customerrors.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) All(_ context.Context) ([]entity.User, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	out := make([]entity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

// fakeSessions keeps sessions in insertion order and enforces one open
// session per user the way the partial unique index does.
type fakeSessions struct {
	sessions  []entity.TimeSession
	listErr  error
	closeErr error
	// beforeClose runs between the open-session lookup and Close, like a
	// competing request would.
	beforeClose func()
	closes      []closeCall
}

type closeCall struct {
	end      time.Time
	duration string
}

func (f *fakeSessions) byUser(userID uuid.UUID) []entity.TimeSession {
	out := make([]entity.TimeSession, 0)
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeSessions) ListByUserOrderedByCreated(_ context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := f.byUser(userID)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == entity.SortAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeSessions) ListByUserOrderedByStart(_ context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := f.byUser(userID)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == entity.SortAsc {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

func (f *fakeSessions) FindActiveByUser(_ context.Context, userID uuid.UUID) (*entity.TimeSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.EndTime == nil {
			return &s, nil
		}
	}
	return nil, customerrors.ErrNotFound
}

func (f *fakeSessions) FindActiveByStatus(_ context.Context, userID uuid.UUID) (*entity.TimeSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.Status == entity.StatusActive {
			return &s, nil
		}
	}
	return nil, customerrors.ErrNotFound
}

func (f *fakeSessions) HasActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	if f.listErr != nil {
		return false, f.listErr
	}
	_, err := f.FindActiveByUser(ctx, userID)
	return err == nil, nil
}

func (f *fakeSessions) Create(ctx context.Context, fields entity.CreateSessionFields) (*entity.TimeSession, error) {
	if open, _ := f.HasActive(ctx, fields.UserID); open {
		return nil, customerrors.ErrActiveSessionExists
	}
	s := entity.TimeSession{
		ID:        uuid.New(),
		UserID:    fields.UserID,
		StartTime: fields.StartTime,
		Status:    entity.StatusActive,
		CreatedAt: fields.StartTime,
		UpdatedAt: fields.StartTime,
	}
	f.sessions = append(f.sessions, s)
	return &s, nil
}

func (f *fakeSessions) Close(_ context.Context, id uuid.UUID, end time.Time, duration string) (bool, error) {
	if f.beforeClose != nil {
		f.beforeClose()
	}
	f.closes = append(f.closes, closeCall{end: end, duration: duration})
	if f.closeErr != nil {
		return false, f.closeErr
	}
	for i := range f.sessions {
		s := &f.sessions[i]
		if s.ID != id || s.EndTime != nil {
			continue
		}
		s.EndTime = &end
		s.Duration = &duration
		s.Status = entity.StatusCompleted
		return true, nil
	}
	return false, nil
}

func completed(userID uuid.UUID, duration string) entity.TimeSession {
	start := time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	return entity.TimeSession{
		ID:        uuid.New(),
		UserID:    userID,
		StartTime: start,
		EndTime:   &end,
		Duration:  &duration,
		Status:    entity.StatusCompleted,
		CreatedAt: start,
	}
}

func active(userID uuid.UUID, start time.Time) entity.TimeSession {
	return entity.TimeSession{
		ID:        uuid.New(),
		UserID:    userID,
		StartTime: start,
		Status:    entity.StatusActive,
		CreatedAt: start,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stepClock returns the given instants in order, repeating the last one.
func stepClock(instants ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := instants[min(i, len(instants)-1)]
		i++
		return t
	}
}
