package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "plain text", "plain text"},
		{"literal newline escape", `first\nsecond`, "first second"},
		{"literal crlf escape", `first\r\nsecond`, "first second"},
		{"literal tab escape", `a\tb`, "a b"},
		{"real control characters", "a\nb\r\nc\td", "a b c d"},
		{"stray backslash", `a\ b`, "a b"},
		{"mixed and padded", "  \\n head\n\n\\t tail \\  ", "head tail"},
		{"arabic", "بِسۡمِ\\nاللّٰهِ", "بِسۡمِ اللّٰهِ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}
