package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
	"github.com/Mohanmohan007/BSC-CARE/internal/service"
)

// Envelope codes. Clients branch on Code, never on the HTTP status alone.
const (
	ResultSuccess = 2000
	ResultError   = -1
)

// Result is the JSON body of every API response except the xlsx export.
// Result holds the payload on success and is null on failure.
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

func (r Result[T]) Failed() bool { return r.Code != ResultSuccess }

func Ok[T any](payload T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: payload}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message}
}

// statusFor the HTTP status a service error is reported with and whether
// its text is safe to show the caller
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, models.ErrInvalidRecording):
		return http.StatusBadRequest, true
	case errors.Is(err, service.ErrDuplicateRecording):
		return http.StatusConflict, true
	default:
		return http.StatusInternalServerError, false
	}
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondOk[T any](w http.ResponseWriter, status int, payload T) {
	respond(w, status, Ok(payload))
}

func respondErr(w http.ResponseWriter, err error) {
	status, public := statusFor(err)
	msg := "internal error"
	if public {
		msg = err.Error()
	}
	respond(w, status, Fail(msg))
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	respond(w, http.StatusBadRequest, Fail(fmt.Sprintf(format, args...)))
}
