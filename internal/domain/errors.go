package domain

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidAccess      = errors.New("invalid access")
	ErrInvalidItem        = errors.New("invalid item")
	ErrNotFound           = errors.New("cart not found")
	ErrVersionConflict    = errors.New("cart version conflict")
	ErrStoreFailure       = errors.New("store failure")
	ErrPublishFailure     = errors.New("publish failure")
	ErrUnsupportedRoute   = errors.New("unsupported route")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrCheckoutIncomplete = errors.New("checkout incomplete")
)

// StatusOf maps an error to the status code of its envelope.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidAccess), errors.Is(err, ErrInvalidItem):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnsupportedRoute):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MessageOf is the human readable text returned to the caller for err.
func MessageOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAccess):
		return "Invalid Access"
	case errors.Is(err, ErrInvalidItem):
		return "Invalid Item"
	case errors.Is(err, ErrNotFound):
		return "Cart Not Found"
	case errors.Is(err, ErrUnsupportedRoute), errors.Is(err, ErrMethodNotAllowed):
		return "Unsupported Route"
	case errors.Is(err, ErrVersionConflict):
		return "Cart Modified Concurrently"
	case errors.Is(err, ErrCheckoutIncomplete):
		return "Checkout Incomplete"
	default:
		return "Server Error"
	}
}
