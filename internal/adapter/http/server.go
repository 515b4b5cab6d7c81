package http

import (
	"echo-scaffold/internal/adapter/http/response"
	"echo-scaffold/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewServer builds the echo instance: envelope error handler, request IDs,
// access log, panic recovery, then any extra middleware and the routes.
func NewServer(h *Handler, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = response.ErrorHandler

	e.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: id.New}),
		middleware.Logger(),
		middleware.Recover(),
	)
	e.Use(extra...)

	RegisterRoutes(e, h)
	return e
}
