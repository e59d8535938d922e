package adminHandler

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"
	"timetracker/domain/entity"
	"timetracker/internal/usecase/admin"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AdminUsecase interface {
	Dashboard(ctx context.Context) (admin.Dashboard, error)
	Users(ctx context.Context) ([]entity.User, error)
	User(ctx context.Context, id uuid.UUID) (*entity.User, error)
	CreateUser(ctx context.Context, in admin.CreateUserInput) (*entity.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in admin.UpdateUserInput) (bool, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)

	UserTimeTracker(ctx context.Context, userID uuid.UUID) (admin.UserTimeTracker, error)
	SessionsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.TimeSession, error)
	UserSessionsPage(ctx context.Context, userID uuid.UUID, page, perPage int) (entity.Page[entity.TimeSession], error)
	AllSessions(ctx context.Context, page, perPage int) (entity.Page[entity.TimeSession], error)
	UpdateSession(ctx context.Context, id uuid.UUID, fields entity.UpdateSessionFields) (bool, error)
	DeleteSession(ctx context.Context, id uuid.UUID) (bool, error)
}

type StatsUsecase interface {
	AllUsersStats(ctx context.Context) (map[uuid.UUID]entity.UserStats, error)
}

type AdminHandler struct {
	admin AdminUsecase
	stats StatsUsecase
}

func NewAdminHandler(adminUsecase AdminUsecase, stats StatsUsecase) *AdminHandler {
	return &AdminHandler{admin: adminUsecase, stats: stats}
}

// DTOs
type CreateUserRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8"`
	IsAdmin   bool   `json:"is_admin"`
	IPAddress string `json:"ip_address" validate:"omitempty,ip"`
	UserAgent string `json:"user_agent" validate:"max=1024"`
}

type UpdateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Password  *string `json:"password"`
	IsAdmin   *bool   `json:"is_admin"`
	IPAddress *string `json:"ip_address" validate:"omitempty,ip"`
	UserAgent *string `json:"user_agent" validate:"omitempty,max=1024"`
}

type UpdateSessionRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    *string    `json:"status" validate:"omitempty,oneof=active completed"`
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// paging reads page and per_page. Missing or non-numeric values fall back to
// the storage defaults; per_page is capped at entity.MaxPerPage.
func paging(c echo.Context) (page, perPage int, err error) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if page > entity.MaxPage {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid page")
	}
	return page, min(perPage, entity.MaxPerPage), nil
}

// parseDay accepts RFC 3339 or a bare date. A bare upper bound covers the whole day.
func parseDay(v string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

func notFoundUnless(ok bool) error {
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Not Found")
	}
	return nil
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	d, err := h.admin.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.admin.Users(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) User(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.admin.User(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	user, err := h.admin.CreateUser(c.Request().Context(), admin.CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		IsAdmin:   req.IsAdmin,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ok, err := h.admin.UpdateUser(c.Request().Context(), id, admin.UpdateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		IsAdmin:   req.IsAdmin,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		return err
	}
	if err := notFoundUnless(ok); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ok, err := h.admin.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := notFoundUnless(ok); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) UserTimeTracker(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	tt, err := h.admin.UserTimeTracker(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tt)
}

// UserTimeTrackerRange expects ?from= and ?to=, both inclusive.
func (h *AdminHandler) UserTimeTrackerRange(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	from, err := parseDay(c.QueryParam("from"), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid from date")
	}
	to, err := parseDay(c.QueryParam("to"), true)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid to date")
	}

	sessions, err := h.admin.SessionsInRange(c.Request().Context(), id, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessions)
}

func (h *AdminHandler) UserSessions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	page, perPage, err := paging(c)
	if err != nil {
		return err
	}
	p, err := h.admin.UserSessionsPage(c.Request().Context(), id, page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) Sessions(c echo.Context) error {
	page, perPage, err := paging(c)
	if err != nil {
		return err
	}
	p, err := h.admin.AllSessions(c.Request().Context(), page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) UpdateSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateSessionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fields := entity.UpdateSessionFields{StartTime: req.StartTime, EndTime: req.EndTime}
	if req.Status != nil {
		st := entity.SessionStatus(*req.Status)
		fields.Status = &st
	}

	ok, err := h.admin.UpdateSession(c.Request().Context(), id, fields)
	if err != nil {
		return err
	}
	if err := notFoundUnless(ok); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) DeleteSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ok, err := h.admin.DeleteSession(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := notFoundUnless(ok); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats returns per-user totals for every account, administrators included.
func (h *AdminHandler) Stats(c echo.Context) error {
	all, err := h.stats.AllUsersStats(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]entity.UserStats, 0, len(all))
	for _, us := range all {
		out = append(out, us)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.Email < out[j].User.Email })
	return c.JSON(http.StatusOK, out)
}
