package timetrackerHandler

import (
	"context"
	"log/slog"
	"net/http"
	"timetracker/domain/entity"
	metrics "timetracker/internal/metrics"
	"timetracker/internal/usecase/timetracker"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TimeTrackerUsecase interface {
	ValidateClockIn(ctx context.Context, userID uuid.UUID, ip, userAgent string) (timetracker.Result, error)
	ValidateClockOut(ctx context.Context, userID uuid.UUID, ip, userAgent string) (timetracker.Result, error)
	ClockIn(ctx context.Context, userID uuid.UUID) (*entity.TimeSession, error)
	ClockOut(ctx context.Context, userID uuid.UUID) (bool, error)

	Dashboard(ctx context.Context, userID uuid.UUID) (timetracker.Dashboard, error)
	SessionsByStartTime(ctx context.Context, userID uuid.UUID, dir entity.SortDirection) ([]entity.TimeSession, error)
	UserStats(ctx context.Context, userID uuid.UUID) (entity.Stats, error)
}

type TimeTrackerHandler struct {
	usecase TimeTrackerUsecase
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewTimeTrackerHandler(usecase TimeTrackerUsecase, m *metrics.Metrics, logger *slog.Logger) *TimeTrackerHandler {
	return &TimeTrackerHandler{usecase: usecase, metrics: m, logger: logger}
}

type ValidationResponse struct {
	Error  string             `json:"error"`
	Reason timetracker.Reason `json:"reason"`
}

type SessionsResponse struct {
	Sessions []entity.TimeSession `json:"sessions"`
	Stats    entity.Stats         `json:"stats"`
}

func userID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get("userID").(uuid.UUID)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return id, nil
}

func (h *TimeTrackerHandler) rejected(c echo.Context, event string, res timetracker.Result) error {
	h.metrics.ObserveClock(event, string(res.Reason))
	return c.JSON(http.StatusUnprocessableEntity, ValidationResponse{Error: res.Message, Reason: res.Reason})
}

func (h *TimeTrackerHandler) ClockIn(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	res, err := h.usecase.ValidateClockIn(ctx, id, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		h.metrics.ObserveClock("clock_in", "error")
		return err
	}
	if !res.Valid {
		return h.rejected(c, "clock_in", res)
	}

	session, err := h.usecase.ClockIn(ctx, id)
	if err != nil {
		h.metrics.ObserveClock("clock_in", "error")
		return err
	}
	h.metrics.ObserveClock("clock_in", "ok")
	return c.JSON(http.StatusCreated, session)
}

func (h *TimeTrackerHandler) ClockOut(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	res, err := h.usecase.ValidateClockOut(ctx, id, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		h.metrics.ObserveClock("clock_out", "error")
		return err
	}
	if !res.Valid {
		return h.rejected(c, "clock_out", res)
	}

	ok, err := h.usecase.ClockOut(ctx, id)
	if err != nil {
		h.metrics.ObserveClock("clock_out", "error")
		return err
	}
	if !ok {
		// validation saw an open session, so this is a lost race or a storage fault
		h.metrics.ObserveClock("clock_out", "error")
		h.logger.Error("clock-out failed after validation", slog.String("user_id", id.String()))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clock out")
	}
	h.metrics.ObserveClock("clock_out", "ok")
	return c.JSON(http.StatusOK, map[string]string{"message": "Clocked out"})
}

func (h *TimeTrackerHandler) Dashboard(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	d, err := h.usecase.Dashboard(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Sessions lists the caller's sessions by start time; ?order=asc flips the default newest-first order.
func (h *TimeTrackerHandler) Sessions(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	dir := entity.SortDesc
	if c.QueryParam("order") == string(entity.SortAsc) {
		dir = entity.SortAsc
	}

	sessions, err := h.usecase.SessionsByStartTime(ctx, id, dir)
	if err != nil {
		return err
	}
	stats, err := h.usecase.UserStats(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SessionsResponse{Sessions: sessions, Stats: stats})
}
