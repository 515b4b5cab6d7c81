package http

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the diagnostic routes; /test groups the forced
// outcome endpoints.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/", h.Index)
	e.GET("/ping", h.Ping)
	e.GET("/health", h.Health)

	g := e.Group("/test")
	g.GET("/internal", h.TestInternal)
	g.GET("/invalid", h.TestInvalid)
	g.GET("/db", h.TestDB)
}
