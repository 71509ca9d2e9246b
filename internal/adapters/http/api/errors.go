package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/repository"
	service "github.com/vishalyl/GlassBoxAI-sub000/internal/app"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/audit"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/bonus"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/promotion"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrBodyTooLong = errors.New("request body too large")
)

// Error carries the handler operation that failed, the error kind used for
// status mapping and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap annotates err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind returns an error that only carries a kind.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

var badRequestKinds = []error{
	ErrBadRequest,
	bonus.ErrInvalidPool,
	promotion.ErrInvalidSlots,
	audit.ErrNoPromotions,
	audit.ErrInvalidAmount,
	audit.ErrInvalidDecision,
	repository.ErrInvalidLimit,
}

// statusFor maps an error to the HTTP status and response code it is reported with.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBodyTooLong):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, audit.ErrFlagIrreversible):
		return http.StatusConflict, "flag_irreversible"
	case errors.Is(err, service.ErrSubmissionInFlight):
		return http.StatusConflict, "submission_in_flight"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	}
	for _, kind := range badRequestKinds {
		if errors.Is(err, kind) {
			return http.StatusBadRequest, "bad_request"
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
