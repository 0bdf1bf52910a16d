package db

import "strings"

// escapeReplacer turns literal escape pairs, real control characters and stray
// backslashes into spaces. Escape pairs come first so `\n` is not split into
// a backslash and an "n".
var escapeReplacer = strings.NewReplacer(
	`\n`, " ",
	`\r`, " ",
	`\t`, " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
	`\`, " ",
)

// CleanText normalizes corpus text: escape sequences (literal or real) and
// stray backslashes become spaces, runs of whitespace collapse to one space,
// and the result is trimmed.
func CleanText(text string) string {
	if text == "" {
		return text
	}
	text = escapeReplacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
