// Package apperr holds the HTTP error taxonomy and the single place where
// failures are turned into responses.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaibs3/newsboard/internal/listing"
	"github.com/shaibs3/newsboard/internal/store/shared"
	"go.uber.org/zap"
)

const (
	MsgInvalidFields    = "Invalid field body"
	MsgNullFields       = "Fields cannot be null values"
	MsgMissingFields    = "Missing fields"
	MsgInvalidInput     = "Invalid input"
	MsgInvalidSort      = "Invalid sort field"
	MsgInvalidOrder     = "Invalid order field"
	MsgNotFound         = "Resource not found"
	MsgPathNotFound     = "Path not found"
	MsgForeignKey       = "Value/s violate foreign key restraint"
	MsgUserExists       = "User already exists"
	MsgTopicExists      = "Topic already exists"
	MsgResourceExists   = "Resource already exists"
	MsgMethodNotAllowed = "Method not allowed"
	MsgTooManyRequests  = "Too many requests"
	MsgInternal         = "Internal server error"
	MsgUnauthorized     = "Unauthorized"
	MsgForbidden        = "Forbidden"
)

// Error is a failure with a known HTTP shape. Plain errors are written as
// bare text instead of a JSON message.
type Error struct {
	Status  int
	Message string
	Plain   bool
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: MsgUnauthorized, Plain: true}
}

func Forbidden() *Error {
	return &Error{Status: http.StatusForbidden, Message: MsgForbidden, Plain: true}
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: MsgInternal, Err: err}
}

// From classifies any error returned below the HTTP layer.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, shared.ErrNotFound):
		return &Error{Status: http.StatusNotFound, Message: MsgNotFound, Err: err}
	case errors.Is(err, shared.ErrForeignKey):
		return &Error{Status: http.StatusBadRequest, Message: MsgForeignKey, Err: err}
	case errors.Is(err, shared.ErrNotNull):
		return &Error{Status: http.StatusBadRequest, Message: MsgNullFields, Err: err}
	case errors.Is(err, shared.ErrInvalidInput):
		return &Error{Status: http.StatusBadRequest, Message: MsgInvalidInput, Err: err}
	case errors.Is(err, shared.ErrUniqueViolation):
		return &Error{Status: http.StatusConflict, Message: MsgResourceExists, Err: err}
	case errors.Is(err, listing.ErrInvalidSort):
		return &Error{Status: http.StatusBadRequest, Message: MsgInvalidSort, Err: err}
	case errors.Is(err, listing.ErrInvalidOrder):
		return &Error{Status: http.StatusBadRequest, Message: MsgInvalidOrder, Err: err}
	}
	return Internal(err)
}

// Write translates err into a response. Server-side failures are logged
// and never leak their cause.
func Write(w http.ResponseWriter, err error, logger *zap.Logger) {
	appErr := From(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.Int("status", appErr.Status), zap.Error(err))
	}

	if appErr.Plain {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(appErr.Status)
		_, _ = w.Write([]byte(appErr.Message))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": appErr.Message})
}
