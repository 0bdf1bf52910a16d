package hadith

import "strings"

// weakMarkers are lower-case substrings of gradings that must never be published:
// weak in Urdu and Arabic spelling and transliteration, and fabricated.
var weakMarkers = []string{
	"ضعیف",
	"ضعيف",
	"zaeef",
	"da'if",
	"daif",
	"weak",
	"موضوع",
	"mawdu",
}

// IsWeak reports whether grade marks a weak or fabricated hadith.
// An empty grade is never weak.
func IsWeak(grade string) bool {
	if grade == "" {
		return false
	}
	lower := strings.ToLower(grade)
	for _, marker := range weakMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
