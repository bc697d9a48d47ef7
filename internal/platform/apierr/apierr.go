package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/collabmarket-backend/internal/pkg/errors"
	"github.com/yungbote/collabmarket-backend/internal/platform/stripe"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps service-layer sentinels onto an HTTP status and code.
// Unknown errors become 500 internal_error.
func FromError(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, pkgerrors.ErrInvalidState):
		return New(http.StatusBadRequest, "invalid_state", err)
	case errors.Is(err, pkgerrors.ErrPayeeNotConfigured):
		return New(http.StatusBadRequest, "payee_not_configured", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, stripe.ErrBadSignature):
		return New(http.StatusBadRequest, "invalid_signature", err)
	default:
		var ge *stripe.GatewayError
		if errors.As(err, &ge) {
			return New(http.StatusBadRequest, "gateway_error", err)
		}
		return New(http.StatusInternalServerError, "internal_error", err)
	}
}
