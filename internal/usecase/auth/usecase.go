package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"timetracker/domain/entity"
	"timetracker/internal/metrics"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, fields entity.CreateUserFields) (*entity.User, error)
}

type TokenManager interface {
	NewAccessToken(userID uuid.UUID) (string, error)
	VerifyAccessToken(token string) (uuid.UUID, error)
}

type AuthUsecase struct {
	users    UserRepository
	tokens   TokenManager
	metrics  *metrics.Metrics
	logger   *slog.Logger
	hashCost int
}

func NewAuthUsecase(users UserRepository, tokens TokenManager, m *metrics.Metrics, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		tokens:   tokens,
		metrics:  m,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// RegisterUser creates an employee account bound to the device it registers from.
func (a *AuthUsecase) RegisterUser(ctx context.Context, name, email, password, ip, userAgent string) (uuid.UUID, error) {
	_, err := a.users.FindByEmail(ctx, email)
	if err == nil {
		return uuid.Nil, customerrors.ErrEmailTaken
	}
	if !errors.Is(err, customerrors.ErrNotFound) {
		return uuid.Nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.hashCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.users.Create(ctx, entity.CreateUserFields{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IPAddress:    ip,
		UserAgent:    userAgent,
	})
	if err != nil {
		return uuid.Nil, err
	}
	a.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	return user.ID, nil
}

// LoginUser checks the credentials and returns an access token.
func (a *AuthUsecase) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, customerrors.ErrNotFound) {
		a.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return "", customerrors.ErrInvalidCredentials
	}
	if err != nil {
		a.metrics.LoginAttempts.WithLabelValues("error").Inc()
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return "", customerrors.ErrInvalidCredentials
	}

	token, err := a.tokens.NewAccessToken(user.ID)
	if err != nil {
		a.metrics.LoginAttempts.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	a.metrics.LoginAttempts.WithLabelValues("success").Inc()
	return token, nil
}

func (a *AuthUsecase) VerifyUser(token string) (uuid.UUID, error) {
	return a.tokens.VerifyAccessToken(token)
}

func (a *AuthUsecase) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := a.users.FindByID(ctx, userID)
	if errors.Is(err, customerrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
