package types

import "errors"

// Error kinds shared across packages. Package-specific error types wrap one of
// these so callers can classify failures with errors.Is.
var (
	// ErrNotFound is returned when a position or number is absent from a corpus.
	ErrNotFound = errors.New("not found")
	// ErrTransient is returned for network, timeout or page-shape failures of a remote source.
	ErrTransient = errors.New("transient source failure")
	// ErrSourceExhausted is returned when every configured hadith source failed.
	ErrSourceExhausted = errors.New("all hadith sources exhausted")
	// ErrExhaustedRetries is returned when the weak-hadith skip loop ran out of attempts.
	ErrExhaustedRetries = errors.New("exhausted retries")
	// ErrValidation is returned for invalid input or state.
	ErrValidation = errors.New("validation error")
)
