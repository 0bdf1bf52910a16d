// Package hadith resolves hadiths across the remote sources and the local
// corpus, skipping weak or fabricated gradings.
package hadith

import "fmt"

// Error represents a hadith resolution failure
type Error struct {
	Number  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hadith %d: %s: %v", e.Number, e.Message, e.Cause)
	}
	return fmt.Sprintf("hadith %d: %s", e.Number, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
