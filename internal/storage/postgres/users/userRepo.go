package users

import (
	"context"
	"errors"
	"fmt"
	"time"
	"timetracker/domain/entity"
	metrics "timetracker/internal/metrics"
	"timetracker/internal/storage/postgres"
	"timetracker/pkg/customerrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, password_hash, is_admin, ip_address, user_agent, created_at, updated_at`

type UserRepo struct {
	pool    postgres.DBTX
	Metrics *metrics.Metrics
}

func NewUserRepo(pool postgres.DBTX, metrics *metrics.Metrics) *UserRepo {
	return &UserRepo{
		pool:    pool,
		Metrics: metrics,
	}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.IPAddress,
		&u.UserAgent,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]entity.User, error) {
	defer rows.Close()
	users := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// FindByID returns customerrors.ErrNotFound when no user has the given id.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (user *entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("select_user_by_id", start, err)
	}(time.Now())

	user, err = scanUser(r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id %s: %w", id, err)
	}
	return user, nil
}

// FindByEmail returns customerrors.ErrNotFound when no user has the given email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (user *entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("select_user_by_email", start, err)
	}(time.Now())

	user, err = scanUser(r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email %s: %w", email, err)
	}
	return user, nil
}

func (r *UserRepo) All(ctx context.Context) (users []entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("select_users", start, err)
	}(time.Now())

	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users, err = collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// RecentNonAdmin returns up to limit non-admin users, newest first.
func (r *UserRepo) RecentNonAdmin(ctx context.Context, limit int) (users []entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("select_recent_non_admin_users", start, err)
	}(time.Now())

	rows, err := r.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_admin = FALSE ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	users, err = collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) CountNonAdmin(ctx context.Context) (count int, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("count_non_admin_users", start, err)
	}(time.Now())

	err = r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE is_admin = FALSE").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Create inserts a user. A duplicate email yields customerrors.ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, fields entity.CreateUserFields) (user *entity.User, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("insert_user", start, err)
	}(time.Now())

	sql := `INSERT INTO users (name, email, password_hash, is_admin, ip_address, user_agent)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + userColumns
	user, err = scanUser(r.pool.QueryRow(ctx, sql,
		fields.Name, fields.Email, fields.PasswordHash, fields.IsAdmin, fields.IPAddress, fields.UserAgent))
	if postgres.IsUniqueViolation(err, "") {
		return nil, customerrors.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Update applies the non-nil fields and reports whether a row was changed.
func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, fields entity.UpdateUserFields) (ok bool, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("update_user", start, err)
	}(time.Now())

	sql := `UPDATE users SET
				name          = COALESCE($2, name),
				email         = COALESCE($3, email),
				password_hash = COALESCE($4, password_hash),
				is_admin      = COALESCE($5, is_admin),
				ip_address    = COALESCE($6, ip_address),
				user_agent    = COALESCE($7, user_agent),
				updated_at    = now()
			WHERE id = $1`
	tag, err := r.pool.Exec(ctx, sql, id,
		fields.Name, fields.Email, fields.PasswordHash, fields.IsAdmin, fields.IPAddress, fields.UserAgent)
	if postgres.IsUniqueViolation(err, "") {
		return false, customerrors.ErrEmailTaken
	}
	if err != nil {
		return false, fmt.Errorf("failed to update user id %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a user; owned time sessions go with it (ON DELETE CASCADE).
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) (ok bool, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("delete_user", start, err)
	}(time.Now())

	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user id %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}
