package http

import (
	"net/http"
	"time"

	"echo-scaffold/internal/adapter/http/response"
	"echo-scaffold/internal/domain/datasource"

	"github.com/labstack/echo/v4"
)

const greeting = "Hello, this is echo template API"

type Handler struct{ ds datasource.DataSource }

func NewHandler(ds datasource.DataSource) *Handler { return &Handler{ds: ds} }

type PingResponse struct {
	Msg string `json:"msg"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func (h *Handler) Index(c echo.Context) error {
	return c.String(http.StatusOK, greeting)
}

func (h *Handler) Ping(c echo.Context) error {
	return response.Send(c, response.Success(PingResponse{Msg: "pong"}))
}

// Health reports liveness only; it does not touch the data source.
func (h *Handler) Health(c echo.Context) error {
	return response.Send(c, response.Success(HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339Nano),
	}))
}

func (h *Handler) TestInternal(c echo.Context) error {
	return response.Send(c, response.InternalFailure[struct{}]("some severe error"))
}

func (h *Handler) TestInvalid(c echo.Context) error {
	return response.Send(c, response.Invalid[struct{}]("test invalid"))
}

// TestDB runs the data source probe. Probe errors are coerced to a 500.
func (h *Handler) TestDB(c echo.Context) error {
	if err := h.ds.Probe(c.Request().Context()); err != nil {
		return response.FromError(err)
	}
	return response.Send(c, response.Success("Test for db is success"))
}
