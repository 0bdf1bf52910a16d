package types

// Content type tags recorded in the progress state.
const (
	ContentAyat   = "ayat"
	ContentHadith = "hadith"
	ContentBoth   = "both"
)

// NeverRunDate is the sentinel last date of a fresh progress state.
const NeverRunDate = "2000-01-01"

// ProgressState is the durable generation cursor. JSON field names match the
// state files written by earlier versions of the tool.
type ProgressState struct {
	LastDate    string `json:"last_date"`
	ContentType string `json:"content_type"`
	LastSurah   int    `json:"last_surah"`
	LastAyah    int    `json:"last_ayah"`
	LastHadith  int    `json:"last_hadith"`
}

// InitialProgressState returns the state of a tool that has never run: the
// cursor sits just before the first verse and the first hadith.
func InitialProgressState() ProgressState {
	return ProgressState{
		LastDate:    NeverRunDate,
		ContentType: ContentHadith,
		LastSurah:   1,
		LastAyah:    0,
		LastHadith:  0,
	}
}

// LastPosition returns the verse cursor as a position.
func (s ProgressState) LastPosition() VersePosition {
	return VersePosition{Surah: s.LastSurah, Ayah: s.LastAyah}
}
