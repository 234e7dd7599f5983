package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequest(c echo.Context, err error) error {
	return BadRequestMessage(c, err.Error())
}

func BadRequestMessage(c echo.Context, msg string) error {
	logFailure(c, "bad request", msg)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func Unauthorized(c echo.Context, msg string) error {
	logFailure(c, "unauthorized", msg)
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: msg})
}

func NotFound(c echo.Context, msg string) error {
	logFailure(c, "not found", msg)
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

// BadGateway reports that a backend service gave no usable answer. The user
// has already been notified through the realtime channel.
func BadGateway(c echo.Context, err error) error {
	logFailure(c, "bad gateway", err.Error())
	return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
}

func InternalError(c echo.Context, err error) error {
	slog.ErrorContext(
		c.Request().Context(), "internal error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
		slog.String("module", "rest"),
	)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func logFailure(c echo.Context, kind, msg string) {
	slog.DebugContext(
		c.Request().Context(), kind,
		slog.String("path", c.Path()),
		slog.String("error", msg),
		slog.String("module", "rest"),
	)
}
