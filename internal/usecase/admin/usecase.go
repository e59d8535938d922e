package admin

import (
	"context"
	"log/slog"
	"time"
	"timetracker/domain/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	All(ctx context.Context) ([]entity.User, error)
	RecentNonAdmin(ctx context.Context, limit int) ([]entity.User, error)
	CountNonAdmin(ctx context.Context) (int, error)
	Create(ctx context.Context, fields entity.CreateUserFields) (*entity.User, error)
	Update(ctx context.Context, id uuid.UUID, fields entity.UpdateUserFields) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TimeSession, error)
	ListByUserOrderedByStart(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error)
	ListByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.TimeSession, error)
	ListAllPage(ctx context.Context, page, perPage int) (entity.Page[entity.TimeSession], error)
	ListByUserPage(ctx context.Context, userID uuid.UUID, page, perPage int) (entity.Page[entity.TimeSession], error)
	Update(ctx context.Context, id uuid.UUID, fields entity.UpdateSessionFields) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// AdminUsecase backs the administrator pages: account management and
// corrections to recorded sessions.
type AdminUsecase struct {
	users    UserRepository
	sessions SessionRepository
	logger   *slog.Logger
	hashCost int
}

func NewAdminUsecase(users UserRepository, sessions SessionRepository, logger *slog.Logger) *AdminUsecase {
	return &AdminUsecase{
		users:    users,
		sessions: sessions,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}
