package timesessions

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

const (
	sessionColumns = `id, user_id, start_time, end_time, duration, status, created_at, updated_at`

	// openSessionIndex enforces one session with a NULL end_time per user.
	openSessionIndex = "uq_time_sessions_user_open"
)

func orderSQL(d entity.SortDirection) string {
	if d == entity.SortAsc {
		return "ASC"
	}
	return "DESC"
}

type SessionRepo struct {
	pool    postgres.DBTX
	Metrics *metrics.Metrics
}

func NewSessionRepo(pool postgres.DBTX, metrics *metrics.Metrics) *SessionRepo {
	return &SessionRepo{
		pool:    pool,
		Metrics: metrics,
	}
}

func scanSession(row pgx.Row) (*entity.TimeSession, error) {
	var (
		s      entity.TimeSession
		status string
	)
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.StartTime,
		&s.EndTime,
		&s.Duration,
		&status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = entity.SessionStatus(status)
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]entity.TimeSession, error) {
	defer rows.Close()
	sessions := make([]entity.TimeSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) list(ctx context.Context, queryName, sql string, args ...any) (sessions []entity.TimeSession, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB(queryName, start, err)
	}(time.Now())

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", queryName, err)
	}
	sessions, err = collectSessions(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", queryName, err)
	}
	return sessions, nil
}

func (r *SessionRepo) one(ctx context.Context, queryName, sql string, args ...any) (session *entity.TimeSession, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB(queryName, start, err)
	}(time.Now())

	session, err = scanSession(r.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", queryName, err)
	}
	return session, nil
}

func (r *SessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.TimeSession, error) {
	return r.one(ctx, "select_session_by_id",
		"SELECT "+sessionColumns+" FROM time_sessions WHERE id = $1", id)
}

func (r *SessionRepo) ListByUserOrderedByCreated(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error) {
	return r.list(ctx, "select_sessions_by_user_created",
		"SELECT "+sessionColumns+" FROM time_sessions WHERE user_id = $1 ORDER BY created_at "+orderSQL(dir), userID)
}

func (r *SessionRepo) ListByUserOrderedByStart(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error) {
	return r.list(ctx, "select_sessions_by_user_start",
		"SELECT "+sessionColumns+" FROM time_sessions WHERE user_id = $1 ORDER BY start_time "+orderSQL(dir), userID)
}

// ListByUserInRange returns sessions whose start_time lies in [from, to], newest first.
func (r *SessionRepo) ListByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.TimeSession, error) {
	return r.list(ctx, "select_sessions_by_user_range",
		`SELECT `+sessionColumns+` FROM time_sessions
		 WHERE user_id = $1 AND start_time BETWEEN $2 AND $3
		 ORDER BY start_time DESC`, userID, from, to)
}

// FindActiveByUser returns the session with no end time, or customerrors.ErrNotFound.
func (r *SessionRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*entity.TimeSession, error) {
	return r.one(ctx, "select_open_session",
		"SELECT "+sessionColumns+" FROM time_sessions WHERE user_id = $1 AND end_time IS NULL LIMIT 1", userID)
}

// FindActiveByStatus looks the session up by status instead of end_time.
// Dashboards use it; the clock lifecycle relies on FindActiveByUser.
func (r *SessionRepo) FindActiveByStatus(ctx context.Context, userID uuid.UUID) (*entity.TimeSession, error) {
	return r.one(ctx, "select_active_session",
		"SELECT "+sessionColumns+" FROM time_sessions WHERE user_id = $1 AND status = 'active' LIMIT 1", userID)
}

func (r *SessionRepo) HasActive(ctx context.Context, userID uuid.UUID) (exists bool, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("exists_open_session", start, err)
	}(time.Now())

	err = r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM time_sessions WHERE user_id = $1 AND end_time IS NULL)", userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open session: %w", err)
	}
	return exists, nil
}

// Create opens a session. A second open session for the same user violates
// the partial unique index and yields customerrors.ErrActiveSessionExists.
func (r *SessionRepo) Create(ctx context.Context, fields entity.CreateSessionFields) (session *entity.TimeSession, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("insert_session", start, err)
	}(time.Now())

	sql := `INSERT INTO time_sessions (user_id, start_time, status)
			VALUES ($1, $2, 'active')
			RETURNING ` + sessionColumns
	session, err = scanSession(r.pool.QueryRow(ctx, sql, fields.UserID, fields.StartTime))
	if postgres.IsUniqueViolation(err, openSessionIndex) {
		return nil, customerrors.ErrActiveSessionExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Update applies the non-nil fields in one statement and reports whether a row was changed.
func (r *SessionRepo) Update(ctx context.Context, id uuid.UUID, fields entity.UpdateSessionFields) (ok bool, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("update_session", start, err)
	}(time.Now())

	var status *string
	if fields.Status != nil {
		s := string(*fields.Status)
		status = &s
	}

	sql := `UPDATE time_sessions SET
				start_time = COALESCE($2, start_time),
				end_time   = COALESCE($3, end_time),
				duration   = COALESCE($4, duration),
				status     = COALESCE($5, status),
				updated_at = now()
			WHERE id = $1`
	tag, err := r.pool.Exec(ctx, sql, id, fields.StartTime, fields.EndTime, fields.Duration, status)
	if err != nil {
		return false, fmt.Errorf("failed to update session %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Close completes the session only while it is still open, so a session is
// closed at most once. It reports whether this call closed it.
func (r *SessionRepo) Close(ctx context.Context, id uuid.UUID, end time.Time, duration string) (ok bool, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("close_session", start, err)
	}(time.Now())

	sql := `UPDATE time_sessions SET
				end_time   = $2,
				duration   = $3,
				status     = $4,
				updated_at = now()
			WHERE id = $1 AND end_time IS NULL`
	tag, err := r.pool.Exec(ctx, sql, id, end, duration, string(entity.StatusCompleted))
	if err != nil {
		return false, fmt.Errorf("failed to close session %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) (ok bool, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB("delete_session", start, err)
	}(time.Now())

	tag, err := r.pool.Exec(ctx, "DELETE FROM time_sessions WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SessionRepo) count(ctx context.Context, queryName, sql string, args ...any) (total int, err error) {
	defer func(start time.Time) {
		r.Metrics.ObserveDB(queryName, start, err)
	}(time.Now())

	if err = r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to %s: %w", queryName, err)
	}
	return total, nil
}

// ListAllPage returns one page of every session, in storage order.
func (r *SessionRepo) ListAllPage(ctx context.Context, page, perPage int) (entity.Page[entity.TimeSession], error) {
	page, perPage = normalizePage(page, perPage)

	total, err := r.count(ctx, "count_sessions", "SELECT COUNT(*) FROM time_sessions")
	if err != nil {
		return entity.Page[entity.TimeSession]{}, err
	}
	items, err := r.list(ctx, "select_sessions_page",
		"SELECT "+sessionColumns+" FROM time_sessions ORDER BY created_at LIMIT $1 OFFSET $2",
		perPage, (page-1)*perPage)
	if err != nil {
		return entity.Page[entity.TimeSession]{}, err
	}
	return entity.NewPage(items, total, page, perPage), nil
}

// ListByUserPage returns one page of the user's sessions, newest start first.
func (r *SessionRepo) ListByUserPage(ctx context.Context, userID uuid.UUID, page, perPage int) (entity.Page[entity.TimeSession], error) {
	page, perPage = normalizePage(page, perPage)

	total, err := r.count(ctx, "count_sessions_by_user",
		"SELECT COUNT(*) FROM time_sessions WHERE user_id = $1", userID)
	if err != nil {
		return entity.Page[entity.TimeSession]{}, err
	}
	items, err := r.list(ctx, "select_sessions_by_user_page",
		`SELECT `+sessionColumns+` FROM time_sessions WHERE user_id = $1
		 ORDER BY start_time DESC LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return entity.Page[entity.TimeSession]{}, err
	}
	return entity.NewPage(items, total, page, perPage), nil
}

// DefaultPerPage is used when a caller passes a non-positive page size.
const DefaultPerPage = 15

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return min(page, entity.MaxPage), min(perPage, entity.MaxPerPage)
}
