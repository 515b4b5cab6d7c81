package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// captureLog routes warnings into a buffer for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	l := log.New("test")
	l.SetOutput(&buf)
	SetLogger(l)
	t.Cleanup(func() { SetLogger(log.New("response")) })
	return &buf
}

type pong struct {
	Msg string `json:"msg"`
}

func TestSuccess_AnyPayload(t *testing.T) {
	for _, v := range []any{
		"success",
		42,
		pong{Msg: "pong"},
		[]int{1, 2, 3},
		map[string]any{"nested": map[string]any{"ok": true}},
		nil,
	} {
		body, err := Success(v).Response()
		if err != nil {
			t.Fatalf("Success(%v) returned error %v", v, err)
		}
		if !body.Success {
			t.Fatalf("Success(%v): success flag false", v)
		}
		if !reflect.DeepEqual(body.Data, v) {
			t.Fatalf("data = %#v, want %#v", body.Data, v)
		}
	}
}

func TestSuccess_JSONShape(t *testing.T) {
	body, err := Success(pong{Msg: "pong"}).Response()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := json.Marshal(body)
	if string(b) != `{"success":true,"data":{"msg":"pong"}}` {
		t.Fatalf("json = %s", b)
	}
}

func TestInvalid_MessageVerbatim(t *testing.T) {
	buf := captureLog(t)
	for _, m := range []string{"bad", "test invalid", "", "quotes \" and ünïcode"} {
		_, err := Invalid[struct{}](m).Response()
		var ae *AppError
		if !errors.As(err, &ae) {
			t.Fatalf("Invalid(%q): error %v is not *AppError", m, err)
		}
		if ae.StatusCode() != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", ae.StatusCode())
		}
		if got := ae.Body(); got.Success || got.Err != m {
			t.Fatalf("body = %+v, want err %q", got, m)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("invalid outcomes should not log warnings, got %q", buf.String())
	}
}

func TestInternalFailure_HidesMessage(t *testing.T) {
	buf := captureLog(t)
	const secret = "some severe error"

	_, err := InternalFailure[int](secret).Response()
	var ae *AppError
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not *AppError", err)
	}
	if ae.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", ae.StatusCode())
	}
	body := ae.Body()
	if body.Success || body.Err != InternalErrorMessage {
		t.Fatalf("body = %+v, want fixed message", body)
	}
	if strings.Contains(body.Err, secret) || strings.Contains(ae.Error(), secret) {
		t.Fatalf("internal detail leaked: %+v / %q", body, ae.Error())
	}
	if !strings.Contains(buf.String(), secret) {
		t.Fatalf("detail not logged, log = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "WARN") {
		t.Fatalf("detail not logged at warn level, log = %q", buf.String())
	}
}

func TestInternalErrorMessage_IsNotTheSecret(t *testing.T) {
	if strings.Contains(InternalErrorMessage, "some severe error") {
		t.Fatalf("fixed message must not carry handler detail: %q", InternalErrorMessage)
	}
}

func TestFromError(t *testing.T) {
	buf := captureLog(t)

	if FromError(nil) != nil {
		t.Fatal("FromError(nil) should be nil")
	}

	inv := &AppError{Kind: KindInvalid, Err: "nope"}
	if got := FromError(fmt.Errorf("wrapped: %w", inv)); got != inv {
		t.Fatalf("wrapped *AppError should pass through, got %+v", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("pass-through should not log, got %q", buf.String())
	}

	got := FromError(errors.New("pq: password authentication failed"))
	if got.Kind != KindInternal || got.Body().Err != InternalErrorMessage {
		t.Fatalf("driver error not coerced: %+v", got)
	}
	if !strings.Contains(buf.String(), "password authentication failed") {
		t.Fatalf("driver error not logged, log = %q", buf.String())
	}
}

func serve(t *testing.T, method string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Add(method, "/x", h)
	req := httptest.NewRequest(method, "/x", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) ErrModel {
	t.Helper()
	var m ErrModel
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return m
}

func TestSend_Success(t *testing.T) {
	rec := serve(t, http.MethodGet, func(c echo.Context) error {
		return Send(c, Success("Test for db is success"))
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"success":true,"data":"Test for db is success"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestErrorHandler_Invalid(t *testing.T) {
	rec := serve(t, http.MethodGet, func(c echo.Context) error {
		return Send(c, Invalid[struct{}]("test invalid"))
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if m := decodeErr(t, rec); m.Success || m.Err != "test invalid" {
		t.Fatalf("body = %+v", m)
	}
}

func TestErrorHandler_PlainErrorIsInternal(t *testing.T) {
	buf := captureLog(t)
	rec := serve(t, http.MethodGet, func(c echo.Context) error {
		return errors.New("dial tcp 10.0.0.5:5432: connection refused")
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	m := decodeErr(t, rec)
	if m.Err != InternalErrorMessage || strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("body leaks detail: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "connection refused") {
		t.Fatalf("error not logged: %q", buf.String())
	}
}

func TestErrorHandler_HTTPError(t *testing.T) {
	rec := serve(t, http.MethodGet, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType)
	})
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rec.Code)
	}
	if m := decodeErr(t, rec); m.Err != http.StatusText(http.StatusUnsupportedMediaType) {
		t.Fatalf("body = %+v", m)
	}
}

func TestErrorHandler_HTTPError5xxHidesMessage(t *testing.T) {
	captureLog(t)
	rec := serve(t, http.MethodGet, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "replica lag 30s")
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if m := decodeErr(t, rec); m.Err != InternalErrorMessage {
		t.Fatalf("body = %+v", m)
	}
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	rec := serve(t, http.MethodHead, func(c echo.Context) error {
		return Send(c, Invalid[struct{}]("test invalid"))
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("HEAD body = %q, want empty", rec.Body.String())
	}
}
