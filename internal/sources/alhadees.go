package sources

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/db"
	"github.com/jonathan/daily-ayat-hadith/internal/fetch"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// AlHadeesBaseURL is the al-hadees.com origin.
const AlHadeesBaseURL = "https://al-hadees.com"

// tarqeem marks a numbering note; only the parenthesised reference is kept.
const tarqeem = "ترقیم"

var parenthesised = regexp.MustCompile(`\([^)]+\)`)

// AlHadees scrapes al-hadees.com. It provides Arabic, Urdu and the grading.
type AlHadees struct {
	BaseURL    string
	Collection string
	fetcher    fetch.Fetcher
	logger     *zap.Logger
}

// NewAlHadees creates an al-hadees.com source for collection.
func NewAlHadees(fetcher fetch.Fetcher, collection string, logger *zap.Logger) *AlHadees {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlHadees{
		BaseURL:    AlHadeesBaseURL,
		Collection: collection,
		fetcher:    fetcher,
		logger:     logger,
	}
}

// Name identifies the source in logs.
func (a *AlHadees) Name() string {
	return string(types.SourceAlHadees)
}

// URL returns the page for hadith n.
func (a *AlHadees) URL(n int) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimRight(a.BaseURL, "/"), a.Collection, n)
}

// Fetch downloads and parses hadith n.
func (a *AlHadees) Fetch(ctx context.Context, n int) (*types.HadithRecord, error) {
	result, err := a.fetcher.Fetch(ctx, a.URL(n))
	if err != nil {
		return nil, &Error{Source: a.Name(), Number: n, Message: "fetch failed", Cause: err}
	}

	h, err := ParseAlHadees(result.HTML, n)
	if err != nil {
		return nil, err
	}

	a.logger.Info("scraped hadith",
		zap.String("source", a.Name()),
		zap.Int("hadith", n),
		zap.String("grade", h.Grade),
		zap.String("graded_by", h.GradedBy),
	)
	return h, nil
}

// ParseAlHadees extracts a hadith from an al-hadees.com page.
func ParseAlHadees(html string, n int) (*types.HadithRecord, error) {
	source := string(types.SourceAlHadees)
	doc, err := fetch.Parse(html)
	if err != nil {
		return nil, &Error{Source: source, Number: n, Message: "parse failed", Cause: fmt.Errorf("%w: %w", types.ErrTransient, err)}
	}

	arabic := doc.Find("h4.font-arabic2").First()
	if arabic.Length() == 0 {
		return nil, pageShapeError(source, n, "Arabic text")
	}
	urdu := doc.Find("h4.font-urdu").First()
	if urdu.Length() == 0 {
		return nil, pageShapeError(source, n, "Urdu translation")
	}

	h := &types.HadithRecord{
		Number: n,
		Arabic: db.CleanText(arabic.Text()),
		Urdu:   db.CleanText(urdu.Text()),
		Source: types.SourceAlHadees,
	}
	if h.Arabic == "" {
		return nil, pageShapeError(source, n, "Arabic text")
	}

	h.Grade = alHadeesGrade(doc)
	h.GradedBy = alHadeesGradedBy(doc, h.Grade)
	return h, nil
}

// alHadeesGrade reads the Arabic grade from the status row.
func alHadeesGrade(doc *goquery.Document) string {
	var grade string
	doc.Find("div.row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		isStatus := false
		row.Find("h5").Each(func(_ int, h *goquery.Selection) {
			text := h.Text()
			if strings.Contains(text, "Status") || strings.Contains(text, "حکمِ حدیث") {
				isStatus = true
			}
		})
		if !isStatus {
			return true
		}
		row.Find("div.col-6.text-right span.text-success").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			grade = fetch.Text(span)
			return grade == ""
		})
		return grade == ""
	})
	return grade
}

// alHadeesGradedBy reads the attribution from the status reference block.
func alHadeesGradedBy(doc *goquery.Document, grade string) string {
	var gradedBy string
	doc.Find("h5").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := h.Text()
		if !strings.Contains(text, "Status Reference") && !strings.Contains(text, "حوالہ حکم") {
			return true
		}
		block := h.Closest("div.mb-5")
		rows := block.Find("div.row")
		if rows.Length() < 2 {
			return true
		}
		ref := fetch.Text(rows.Eq(1).Find("div.text-right h3.font-arabic2").First())
		if ref == "" || ref == grade {
			return true
		}
		if !strings.Contains(ref, tarqeem) {
			gradedBy = ref
		} else {
			gradedBy = parenthesised.FindString(ref)
		}
		return gradedBy == ""
	})
	return gradedBy
}
