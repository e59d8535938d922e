package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
	"timetracker/domain/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errNotImplemented = errors.New("not implemented")

type mockUserRepository struct {
	findByIDFunc       func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	findByEmailFunc    func(ctx context.Context, email string) (*entity.User, error)
	allFunc            func(ctx context.Context) ([]entity.User, error)
	recentNonAdminFunc func(ctx context.Context, limit int) ([]entity.User, error)
	countNonAdminFunc  func(ctx context.Context) (int, error)
	createFunc         func(ctx context.Context, fields entity.CreateUserFields) (*entity.User, error)
	updateFunc         func(ctx context.Context, id uuid.UUID, fields entity.UpdateUserFields) (bool, error)
	deleteFunc         func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) All(ctx context.Context) ([]entity.User, error) {
	if m.allFunc != nil {
		return m.allFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) RecentNonAdmin(ctx context.Context, limit int) ([]entity.User, error) {
	if m.recentNonAdminFunc != nil {
		return m.recentNonAdminFunc(ctx, limit)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) CountNonAdmin(ctx context.Context) (int, error) {
	if m.countNonAdminFunc != nil {
		return m.countNonAdminFunc(ctx)
	}
	return 0, errNotImplemented
}

func (m *mockUserRepository) Create(ctx context.Context, fields entity.CreateUserFields) (*entity.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, fields)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) Update(ctx context.Context, id uuid.UUID, fields entity.UpdateUserFields) (bool, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, fields)
	}
	return false, errNotImplemented
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return false, errNotImplemented
}

type mockSessionRepository struct {
	findByIDFunc     func(ctx context.Context, id uuid.UUID) (*entity.TimeSession, error)
	listByStartFunc  func(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error)
	listInRangeFunc  func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.TimeSession, error)
	listAllPageFunc  func(ctx context.Context, page, perPage int) (entity.Page[entity.TimeSession], error)
	listUserPageFunc func(ctx context.Context, userID uuid.UUID, page, perPage int) (entity.Page[entity.TimeSession], error)
	updateFunc       func(ctx context.Context, id uuid.UUID, fields entity.UpdateSessionFields) (bool, error)
	deleteFunc       func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TimeSession, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockSessionRepository) ListByUserOrderedByStart(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error) {
	if m.listByStartFunc != nil {
		return m.listByStartFunc(ctx, userID, dir)
	}
	return nil, errNotImplemented
}

func (m *mockSessionRepository) ListByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.TimeSession, error) {
	if m.listInRangeFunc != nil {
		return m.listInRangeFunc(ctx, userID, from, to)
	}
	return nil, errNotImplemented
}

func (m *mockSessionRepository) ListAllPage(ctx context.Context, page, perPage int) (entity.Page[entity.TimeSession], error) {
	if m.listAllPageFunc != nil {
		return m.listAllPageFunc(ctx, page, perPage)
	}
	return entity.Page[entity.TimeSession]{}, errNotImplemented
}

func (m *mockSessionRepository) ListByUserPage(ctx context.Context, userID uuid.UUID, page, perPage int) (entity.Page[entity.TimeSession], error) {
	if m.listUserPageFunc != nil {
		return m.listUserPageFunc(ctx, userID, page, perPage)
	}
	return entity.Page[entity.TimeSession]{}, errNotImplemented
}

func (m *mockSessionRepository) Update(ctx context.Context, id uuid.UUID, fields entity.UpdateSessionFields) (bool, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, fields)
	}
	return false, errNotImplemented
}

func (m *mockSessionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return false, errNotImplemented
}

func setupAdminUsecase() (*AdminUsecase, *mockUserRepository, *mockSessionRepository) {
	users := &mockUserRepository{}
	sessions := &mockSessionRepository{}
	uc := NewAdminUsecase(users, sessions, slog.New(slog.NewTextHandler(io.Discard, nil)))
	uc.hashCost = bcrypt.MinCost
	return uc, users, sessions
}
