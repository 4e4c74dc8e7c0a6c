package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, Envelope{Data: data})
}

// ErrorHandler renders every error as {"data": null, "error": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch {
		case he == echo.ErrNotFound:
			msg = "route not found"
		case he.Message != nil:
			msg = fmt.Sprint(he.Message)
		default:
			msg = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, Envelope{Error: &msg})
}

var serviceErrors = []struct {
	target error
	code   int
	expose bool
}{
	{service.ErrValidation, http.StatusBadRequest, true},
	{service.ErrUnauthorized, http.StatusUnauthorized, true},
	{service.ErrForbidden, http.StatusForbidden, true},
	{service.ErrNotFound, http.StatusNotFound, true},
	{service.ErrConflict, http.StatusConflict, true},
	{service.ErrConfiguration, http.StatusInternalServerError, true},
	{service.ErrDependency, http.StatusInternalServerError, false},
}

// fail logs err under op and converts it to an HTTP error. Dependency
// failures are reported with a fixed message.
func fail(l *slog.Logger, op string, err error) error {
	for _, se := range serviceErrors {
		if !errors.Is(err, se.target) {
			continue
		}
		msg := "internal error"
		if se.expose {
			msg = strings.TrimPrefix(err.Error(), se.target.Error()+": ")
		}
		if se.code >= http.StatusInternalServerError {
			l.Error(op+"_error", "status", se.code, "reason", msg, "error", err)
		} else {
			l.Warn(op+"_error", "status", se.code, "reason", msg, "error", err)
		}
		return echo.NewHTTPError(se.code, msg)
	}

	l.Error(op+"_error", "status", http.StatusInternalServerError, "reason", "unexpected error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func pathID(c echo.Context) (uint, bool) {
	return util.ParseID(c.Param("id"))
}

func callerFrom(c echo.Context) service.Caller {
	return service.Caller{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}
