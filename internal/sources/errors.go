// Package sources scrapes hadiths from sunnah.com and al-hadees.com.
package sources

import (
	"fmt"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// Error represents a failure to fetch or parse a hadith page.
type Error struct {
	Source  string
	Number  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s hadith %d: %s: %v", e.Source, e.Number, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s hadith %d: %s", e.Source, e.Number, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// pageShapeError reports a page that loaded but lacks the expected markup.
// The site changed or served a challenge page, so the source is treated as unavailable.
func pageShapeError(source string, n int, what string) *Error {
	return &Error{
		Source:  source,
		Number:  n,
		Message: "could not extract " + what,
		Cause:   types.ErrTransient,
	}
}
