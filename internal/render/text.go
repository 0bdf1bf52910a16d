package render

import (
	"fmt"
	"strings"
	"unicode"
)

// Header is drawn at the top of every first page: the ta'awwudh and basmala.
const Header = "أَعُوذُ بِاللَّهِ مِنَ الشَّيْطَانِ الرَّجِيمِ ۞ بِسۡمِ اللّٰهِ الرَّحۡمٰنِ الرَّحِیۡمِ ۞"

// VerseMark is appended to the Arabic text of a verse unit.
const VerseMark = " ۞"

// honorifics maps Arabic ligatures and phrases to English so they survive
// Latin-only fonts. Longer phrases come first.
var honorifics = strings.NewReplacer(
	"ﷺ", "(peace be upon him)",
	"﷽", "",
	"صلى الله عليه وسلم", "(peace be upon him)",
	"عليه السلام", "(peace be upon him)",
	"رضي الله عنها", "(may Allah be pleased with her)",
	"رضي الله عنه", "(may Allah be pleased with him)",
)

// EnglishText replaces Arabic honorifics in an English translation.
func EnglishText(s string) string {
	return strings.Join(strings.Fields(honorifics.Replace(s)), " ")
}

// GradingLine formats the grade of a hadith, or "" when it has none.
func GradingLine(grade, gradedBy string) string {
	if strings.TrimSpace(grade) == "" {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("حكم : %s %s", strings.TrimSpace(grade), strings.TrimSpace(gradedBy)))
}

// visualOrder reverses a right-to-left line into drawing order, keeping each
// base letter together with the combining marks that follow it.
func visualOrder(s string) string {
	var clusters [][]rune
	for _, r := range s {
		if len(clusters) > 0 && unicode.Is(unicode.Mn, r) {
			last := len(clusters) - 1
			clusters[last] = append(clusters[last], r)
			continue
		}
		clusters = append(clusters, []rune{r})
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := len(clusters) - 1; i >= 0; i-- {
		sb.WriteString(string(clusters[i]))
	}
	return sb.String()
}
