package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// ErrBusy is returned when a generation is already running.
var ErrBusy = errors.New("a generation is already running")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrSourceExhausted), errors.Is(err, types.ErrExhaustedRetries):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
