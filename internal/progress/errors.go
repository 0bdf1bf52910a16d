package progress

import (
	"fmt"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// CorruptStateError reports a progress file that exists but cannot be trusted.
// The operator has to run reset; the cursor is never silently rewound.
type CorruptStateError struct {
	Path  string
	Cause error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("progress state %s is corrupt (run reset to start over): %v", e.Path, e.Cause)
}

// Unwrap exposes both the validation kind and the underlying cause.
func (e *CorruptStateError) Unwrap() []error {
	return []error{types.ErrValidation, e.Cause}
}

// Error represents a failed tracker operation.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
