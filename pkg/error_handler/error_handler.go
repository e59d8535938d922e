package errorhandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"timetracker/pkg/customerrors"

	"github.com/labstack/echo/v4"
)

// domainErrors maps sentinel errors to the status and message sent to clients.
var domainErrors = []struct {
	err     error
	code    int
	message string
}{
	{customerrors.ErrNotFound, http.StatusNotFound, "Not Found"},
	{customerrors.ErrEmailTaken, http.StatusUnprocessableEntity, "A user with this email already exists."},
	{customerrors.ErrActiveSessionExists, http.StatusUnprocessableEntity, "You already have an active time tracking session"},
	{customerrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{customerrors.ErrInvalidInput, http.StatusUnprocessableEntity, ""},
}

func HandleError(err error, c echo.Context) {

	code := http.StatusInternalServerError
	message := "Internal Server Error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	} else {
		for _, d := range domainErrors {
			if errors.Is(err, d.err) {
				code = d.code
				message = d.message
				if message == "" {
					message = err.Error()
				}
				break
			}
		}
	}

	if code == http.StatusInternalServerError {
		slog.Error("Internal Server Error",
			"err", err,
			"path", c.Path(),
			"method", c.Request().Method,
		)
	} else {
		slog.Warn("Handled error",
			"err", err,
			"path", c.Path(),
			"method", c.Request().Method,
		)
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"error": message})
		}
		if err != nil {
			slog.Error("failed to write error response", "err", err)
		}
	}
}
