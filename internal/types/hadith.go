package types

// HadithSource names the backend that produced a HadithRecord.
type HadithSource string

const (
	// SourceSunnah is the primary remote source (sunnah.com)
	SourceSunnah HadithSource = "sunnah"
	// SourceAlHadees is the secondary remote source (al-hadees.com)
	SourceAlHadees HadithSource = "alhadees"
	// SourceLocal is the local corpus
	SourceLocal HadithSource = "local"
)

// HadithRecord is one numbered tradition with its translations and optional grading.
// Grade and GradedBy are opaque labels; they are only ever matched by substring.
type HadithRecord struct {
	Number   int          `json:"number"`
	Arabic   string       `json:"arabic"`
	Urdu     string       `json:"urdu,omitempty"`
	English  string       `json:"english,omitempty"`
	Grade    string       `json:"grade,omitempty"`
	GradedBy string       `json:"graded_by,omitempty"`
	Source   HadithSource `json:"source,omitempty"`
}
