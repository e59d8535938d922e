package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"timetracker/domain/entity"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DashboardUsers is how many of the newest employees the admin dashboard lists.
const DashboardUsers = 10

type CreateUserInput struct {
	Name      string
	Email     string
	Password  string
	IsAdmin   bool
	IPAddress string
	UserAgent string
}

// UpdateUserInput is a partial update. A nil or blank Password keeps the current hash.
type UpdateUserInput struct {
	Name      *string
	Email     *string
	Password  *string
	IsAdmin   *bool
	IPAddress *string
	UserAgent *string
}

type Dashboard struct {
	RecentUsers []entity.User `json:"recent_users"`
	UserCount   int           `json:"user_count"`
}

func (u *AdminUsecase) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// emailOwner returns the user holding email, or nil when it is free.
func (u *AdminUsecase) emailOwner(ctx context.Context, email string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, customerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *AdminUsecase) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	owner, err := u.emailOwner(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		return nil, customerrors.ErrEmailTaken
	}

	hash, err := u.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, entity.CreateUserFields{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		IPAddress:    in.IPAddress,
		UserAgent:    in.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info("user created", slog.String("user_id", user.ID.String()), slog.Bool("is_admin", user.IsAdmin))
	return user, nil
}

// UpdateUser reports false when the user does not exist.
func (u *AdminUsecase) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (bool, error) {
	if in.Email != nil {
		owner, err := u.emailOwner(ctx, *in.Email)
		if err != nil {
			return false, err
		}
		if owner != nil && owner.ID != id {
			return false, customerrors.ErrEmailTaken
		}
	}

	fields := entity.UpdateUserFields{
		Name:      in.Name,
		Email:     in.Email,
		IsAdmin:   in.IsAdmin,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		hash, err := u.hash(*in.Password)
		if err != nil {
			return false, err
		}
		fields.PasswordHash = &hash
	}

	return u.users.Update(ctx, id, fields)
}

// DeleteUser removes the user together with its sessions.
func (u *AdminUsecase) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := u.users.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		u.logger.Info("user deleted", slog.String("user_id", id.String()))
	}
	return ok, nil
}

func (u *AdminUsecase) Users(ctx context.Context) ([]entity.User, error) {
	return u.users.All(ctx)
}

func (u *AdminUsecase) User(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

func (u *AdminUsecase) Dashboard(ctx context.Context) (Dashboard, error) {
	recent, err := u.users.RecentNonAdmin(ctx, DashboardUsers)
	if err != nil {
		return Dashboard{}, err
	}
	count, err := u.users.CountNonAdmin(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{RecentUsers: recent, UserCount: count}, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is already
// registered. An existing non-admin account with that email is promoted.
func (u *AdminUsecase) EnsureAdmin(ctx context.Context, name, email, password string) (*entity.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("admin email and password are required: %w", customerrors.ErrInvalidInput)
	}

	existing, err := u.emailOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return u.CreateUser(ctx, CreateUserInput{
			Name:     name,
			Email:    email,
			Password: password,
			IsAdmin:  true,
		})
	}
	if existing.IsAdmin {
		return existing, nil
	}

	isAdmin := true
	if _, err := u.users.Update(ctx, existing.ID, entity.UpdateUserFields{IsAdmin: &isAdmin}); err != nil {
		return nil, err
	}
	existing.IsAdmin = true
	u.logger.Info("user promoted to admin", slog.String("user_id", existing.ID.String()))
	return existing, nil
}
