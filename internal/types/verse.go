package types

import (
	"fmt"
	"unicode/utf8"
)

// VersePosition identifies a verse by surah (group) and ayah (position within the group).
// Ayah 0 is only used by the progress cursor to mean "before the first ayah of the surah".
type VersePosition struct {
	Surah int `json:"surah" validate:"gte=1"`
	Ayah  int `json:"ayah" validate:"gte=0"`
}

// Compare returns -1, 0 or 1 ordering positions surah-major, ayah-minor.
func (p VersePosition) Compare(other VersePosition) int {
	switch {
	case p.Surah < other.Surah:
		return -1
	case p.Surah > other.Surah:
		return 1
	case p.Ayah < other.Ayah:
		return -1
	case p.Ayah > other.Ayah:
		return 1
	}
	return 0
}

// Less reports whether p sorts before other.
func (p VersePosition) Less(other VersePosition) bool {
	return p.Compare(other) < 0
}

func (p VersePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Surah, p.Ayah)
}

// Verse is one ayah with its translations, as read from the corpus.
type Verse struct {
	Position  VersePosition `json:"position"`
	Arabic    string        `json:"arabic"`
	Urdu      string        `json:"urdu"`
	English   string        `json:"english"`
	SurahName string        `json:"surah_name"`
}

// Length is the combined rune count of all language fields.
func (v Verse) Length() int {
	return utf8.RuneCountInString(v.Arabic) + utf8.RuneCountInString(v.Urdu) + utf8.RuneCountInString(v.English)
}

// CombinedVerseUnit is a run of consecutive ayahs from one surah presented as a single item.
type CombinedVerseUnit struct {
	Start     VersePosition `json:"start"`
	End       VersePosition `json:"end"`
	Arabic    string        `json:"arabic"`
	Urdu      string        `json:"urdu"`
	English   string        `json:"english"`
	SurahName string        `json:"surah_name"`
	Count     int           `json:"count"`
}

// Reference returns "<surah> <start>" or "<surah> <start>-<end>".
func (u CombinedVerseUnit) Reference() string {
	if u.Count <= 1 || u.Start.Ayah == u.End.Ayah {
		return fmt.Sprintf("%s %d", u.SurahName, u.Start.Ayah)
	}
	return fmt.Sprintf("%s %d-%d", u.SurahName, u.Start.Ayah, u.End.Ayah)
}

// Length is the combined rune count of all language fields.
func (u CombinedVerseUnit) Length() int {
	return utf8.RuneCountInString(u.Arabic) + utf8.RuneCountInString(u.Urdu) + utf8.RuneCountInString(u.English)
}
