// Package response converts handler outcomes into the JSON envelope every
// endpoint answers with:
//
//	{"success": true,  "data": ...}
//	{"success": false, "err":  "..."}
//
// Internal failures are logged at warn level and answered with the fixed
// InternalErrorMessage; their detail never reaches the response body.
package response

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// InternalErrorMessage is the only body text a client sees for a 500.
const InternalErrorMessage = "internal server error"

type OkModel[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type ErrModel struct {
	Success bool   `json:"success"`
	Err     string `json:"err"`
}

var (
	mu     sync.RWMutex
	logger echo.Logger = log.New("response")
)

// SetLogger replaces the logger internal failures are reported to.
func SetLogger(l echo.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

func warnf(format string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Warnf(format, args...)
}

type kind uint8

const (
	kindSuccess kind = iota
	kindInvalid
	kindInternal
)

// Outcome is what a handler produces before it is rendered. Exactly one of
// success, invalid or internal failure is set; build it with Success, Invalid
// or InternalFailure.
type Outcome[T any] struct {
	kind kind
	data T
	msg  string
}

func Success[T any](data T) Outcome[T] { return Outcome[T]{kind: kindSuccess, data: data} }

// Invalid is a client-caused failure; msg is returned verbatim with a 400.
func Invalid[T any](msg string) Outcome[T] { return Outcome[T]{kind: kindInvalid, msg: msg} }

// InternalFailure is logged and answered with a generic 500.
func InternalFailure[T any](msg string) Outcome[T] { return Outcome[T]{kind: kindInternal, msg: msg} }

// Response is total: success yields the body, anything else an *AppError.
func (o Outcome[T]) Response() (OkModel[T], error) {
	switch o.kind {
	case kindSuccess:
		return OkModel[T]{Success: true, Data: o.data}, nil
	case kindInvalid:
		return OkModel[T]{}, &AppError{Kind: KindInvalid, Err: o.msg}
	default:
		warnf("%s", o.msg)
		return OkModel[T]{}, &AppError{Kind: KindInternal}
	}
}

// Send renders o on c. Failures are returned for ErrorHandler to write.
func Send[T any](c echo.Context, o Outcome[T]) error {
	body, err := o.Response()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, body)
}

type ErrorKind uint8

const (
	KindInvalid ErrorKind = iota + 1
	KindInternal
)

// AppError is a rendered-ready failure. For KindInternal, Err is always empty.
type AppError struct {
	Kind ErrorKind
	Err  string
}

func (e *AppError) Error() string {
	if e.Kind == KindInvalid {
		return "invalid: " + e.Err
	}
	return "internal error"
}

func (e *AppError) StatusCode() int {
	if e.Kind == KindInvalid {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (e *AppError) Body() ErrModel {
	if e.Kind == KindInvalid {
		return ErrModel{Success: false, Err: e.Err}
	}
	return ErrModel{Success: false, Err: InternalErrorMessage}
}

// FromError coerces err into an *AppError. Anything that is not already one
// (driver and data-source errors included) is logged and becomes internal.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	warnf("%v", err)
	return &AppError{Kind: KindInternal}
}

// ErrorHandler is installed as echo's HTTPErrorHandler so every failure,
// routing ones included, leaves in the envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   ErrModel
		ae     *AppError
		he     *echo.HTTPError
	)
	switch {
	case errors.As(err, &ae):
		status, body = ae.StatusCode(), ae.Body()
	case errors.As(err, &he):
		status = he.Code
		if status >= http.StatusInternalServerError {
			warnf("%v", err)
			body = ErrModel{Err: InternalErrorMessage}
			break
		}
		body = ErrModel{Err: http.StatusText(status)}
		if msg, ok := he.Message.(string); ok {
			body.Err = msg
		}
	default:
		ae = FromError(err)
		status, body = ae.StatusCode(), ae.Body()
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		c.Logger().Error(werr)
	}
}
