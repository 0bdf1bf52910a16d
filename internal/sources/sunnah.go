package sources

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/fetch"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// SunnahBaseURL is the sunnah.com origin.
const SunnahBaseURL = "https://sunnah.com"

// gradePattern splits "صَحِيحٌ (الألباني)" into grade and scholar.
var gradePattern = regexp.MustCompile(`^([^(]+)(\([^)]+\))?`)

// Sunnah scrapes sunnah.com. It provides Arabic, English and the grading.
type Sunnah struct {
	BaseURL    string
	Collection string
	fetcher    fetch.Fetcher
	logger     *zap.Logger
}

// NewSunnah creates a sunnah.com source for collection.
func NewSunnah(fetcher fetch.Fetcher, collection string, logger *zap.Logger) *Sunnah {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sunnah{
		BaseURL:    SunnahBaseURL,
		Collection: collection,
		fetcher:    fetcher,
		logger:     logger,
	}
}

// Name identifies the source in logs.
func (s *Sunnah) Name() string {
	return string(types.SourceSunnah)
}

// URL returns the page for hadith n.
func (s *Sunnah) URL(n int) string {
	return fmt.Sprintf("%s/%s:%d", strings.TrimRight(s.BaseURL, "/"), s.Collection, n)
}

// Fetch downloads and parses hadith n.
func (s *Sunnah) Fetch(ctx context.Context, n int) (*types.HadithRecord, error) {
	result, err := s.fetcher.Fetch(ctx, s.URL(n))
	if err != nil {
		return nil, &Error{Source: s.Name(), Number: n, Message: "fetch failed", Cause: err}
	}

	h, err := ParseSunnah(result.HTML, n)
	if err != nil {
		return nil, err
	}

	if h.English == "" {
		s.logger.Warn("no English translation on page", zap.Int("hadith", n))
	}
	s.logger.Info("scraped hadith",
		zap.String("source", s.Name()),
		zap.Int("hadith", n),
		zap.String("grade", h.Grade),
		zap.String("graded_by", h.GradedBy),
	)
	return h, nil
}

// ParseSunnah extracts a hadith from a sunnah.com page.
func ParseSunnah(html string, n int) (*types.HadithRecord, error) {
	doc, err := fetch.Parse(html)
	if err != nil {
		return nil, &Error{Source: string(types.SourceSunnah), Number: n, Message: "parse failed", Cause: fmt.Errorf("%w: %w", types.ErrTransient, err)}
	}

	h := &types.HadithRecord{
		Number:  n,
		Arabic:  fetch.Text(doc.Find("span.arabic_text_details").First()),
		English: fetch.Text(doc.Find("div.english_hadith_full div.text_details").First()),
		Source:  types.SourceSunnah,
	}
	if h.Arabic == "" {
		return nil, pageShapeError(string(types.SourceSunnah), n, "Arabic text")
	}

	h.Grade, h.GradedBy = sunnahGrade(doc)
	return h, nil
}

// sunnahGrade reads the first grade cell that is not the "حكم :" label.
func sunnahGrade(doc *goquery.Document) (grade, gradedBy string) {
	doc.Find("table.gradetable td.arabic_grade").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		text := fetch.Text(cell)
		if text == "" {
			return true
		}
		if strings.Contains(text, "حكم") && utf8.RuneCountInString(text) <= 10 {
			return true
		}
		if m := gradePattern.FindStringSubmatch(text); m != nil {
			grade = strings.TrimSpace(m[1])
			gradedBy = strings.TrimSpace(m[2])
		}
		return false
	})
	return grade, gradedBy
}
