package backend

import (
	"fmt"
	"net/http"

	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// statusError is a non-2xx reply from the backend.
type statusError struct {
	op     string
	status int
	reason string
}

func (e *statusError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("%s: backend returned %d: %s", e.op, e.status, e.reason)
	}
	return fmt.Sprintf("%s: backend returned %d", e.op, e.status)
}

// resource names the entity an operation addresses, for not-found reporting.
type resource struct {
	entity   string
	id       string
	redirect string
}

// translate maps a backend failure onto the application's error types.
// Token and transport errors pass through unchanged.
func translate(err error, res *resource) error {
	se, ok := err.(*statusError)
	if !ok {
		return err
	}

	switch {
	case se.status == http.StatusNotFound && res != nil:
		return apperror.NewNotFoundError(res.entity, res.id).WithRedirect(res.redirect)
	case se.status == http.StatusUnauthorized || se.status == http.StatusForbidden:
		return apperror.NewUnauthorizedError("Your session has expired, please sign in again")
	case se.status == http.StatusConflict:
		msg := se.reason
		if msg == "" {
			msg = "The selected dates are no longer available"
		}
		return apperror.NewConflictError(msg)
	case se.status >= 400 && se.status < 500 && se.reason != "":
		return apperror.NewRejectedError(se.status, se.reason)
	default:
		return apperror.NewUpstreamError(se.op, se.status, se)
	}
}
