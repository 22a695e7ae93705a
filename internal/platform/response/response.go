// Package response writes the storefront's JSON envelope.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failure in a form the UI can show as a notification.
type ErrorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// Meta holds list metadata.
type Meta struct {
	Total int `json:"total"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// List writes a 200 response with a total count.
func List(c *gin.Context, items interface{}, total int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Meta: &Meta{Total: total}})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, ErrorBody{Code: "bad_request", Message: message})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, ErrorBody{Code: "unauthorized", Message: message})
}

// Error maps a typed application error onto an HTTP status and writes it.
func Error(c *gin.Context, err error) {
	status, body := Describe(err)
	abort(c, status, body)
}

// Describe returns the HTTP status and body for err.
func Describe(err error) (int, ErrorBody) {
	var (
		validationErr *apperror.ValidationError
		notFoundErr   *apperror.NotFoundError
		conflictErr   *apperror.ConflictError
		stateErr      *apperror.InvalidStateError
		rejectedErr   *apperror.RejectedError
		unauthErr     *apperror.UnauthorizedError
		forbiddenErr  *apperror.ForbiddenError
		tokenErr      *apperror.TokenError
		upstreamErr   *apperror.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorBody{Code: "validation_failed", Message: validationErr.Message, Fields: validationErr.Fields}
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, ErrorBody{Code: "not_found", Message: notFoundErr.Entity + " not found", Redirect: notFoundErr.Redirect}
	case errors.As(err, &conflictErr):
		return http.StatusConflict, ErrorBody{Code: "conflict", Message: conflictErr.Message}
	case errors.As(err, &stateErr):
		return http.StatusConflict, ErrorBody{Code: "invalid_state", Message: stateErr.Error()}
	case errors.As(err, &rejectedErr):
		return http.StatusUnprocessableEntity, ErrorBody{Code: "rejected", Message: rejectedErr.Reason}
	case errors.As(err, &unauthErr):
		return http.StatusUnauthorized, ErrorBody{Code: "unauthorized", Message: unauthErr.Message}
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden, ErrorBody{Code: "forbidden", Message: forbiddenErr.Message}
	case errors.As(err, &tokenErr):
		return http.StatusBadGateway, ErrorBody{Code: "token_unavailable", Message: apperror.GenericRetryMessage}
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway, ErrorBody{Code: "upstream_failed", Message: apperror.GenericRetryMessage}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: "internal_error", Message: apperror.GenericRetryMessage}
	}
}

func abort(c *gin.Context, status int, body ErrorBody) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: &body})
}
