// Package ayah merges consecutive short ayahs into one display unit.
package ayah

import "fmt"

// Error represents an error that occurs while building a verse unit
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
