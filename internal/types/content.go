package types

import (
	"fmt"
	"time"
)

// ContentKind distinguishes the two image layouts.
type ContentKind string

const (
	// KindAyah renders a verse unit
	KindAyah ContentKind = "ayah"
	// KindHadith renders a hadith
	KindHadith ContentKind = "hadith"
)

// ContentBlock is the structured input handed to the renderer and to the
// review gate. Reference is the human-readable citation without parentheses.
type ContentBlock struct {
	Kind      ContentKind `json:"kind" yaml:"kind"`
	Arabic    string      `json:"arabic" yaml:"arabic"`
	Urdu      string      `json:"urdu" yaml:"urdu"`
	English   string      `json:"english,omitempty" yaml:"english,omitempty"`
	Reference string      `json:"reference" yaml:"reference"`
	Grade     string      `json:"grade,omitempty" yaml:"grade,omitempty"`
	GradedBy  string      `json:"graded_by,omitempty" yaml:"graded_by,omitempty"`
	Date      time.Time   `json:"date" yaml:"date"`
}

// AyahBlock builds the renderer input for a verse unit.
func AyahBlock(unit *CombinedVerseUnit, date time.Time) ContentBlock {
	return ContentBlock{
		Kind:      KindAyah,
		Arabic:    unit.Arabic,
		Urdu:      unit.Urdu,
		English:   unit.English,
		Reference: unit.Reference(),
		Date:      date,
	}
}

// HadithBlock builds the renderer input for a hadith. collection is the
// display name used in the reference, e.g. "Mishkaat".
func HadithBlock(h *HadithRecord, collection string, date time.Time) ContentBlock {
	return ContentBlock{
		Kind:      KindHadith,
		Arabic:    h.Arabic,
		Urdu:      h.Urdu,
		English:   h.English,
		Reference: collectionReference(collection, h.Number),
		Grade:     h.Grade,
		GradedBy:  h.GradedBy,
		Date:      date,
	}
}

func collectionReference(collection string, number int) string {
	if collection == "" {
		collection = "Mishkaat"
	}
	return fmt.Sprintf("%s %d", collection, number)
}
