// Package render draws content blocks onto portrait PNG pages: a header,
// the Arabic text, its translations, the reference and a dated footer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/hijri"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// Colors of every page.
var (
	Background = color.RGBA{R: 245, G: 245, B: 245, A: 255}
	Foreground = color.Black
)

const (
	referenceSize = 40
	dateSize      = 38
)

// Options selects font files and the Hijri day offset. Empty font paths use
// the bundled fallback face.
type Options struct {
	ArabicFontPath  string
	UrduFontPath    string
	EnglishFontPath string
	HijriOffsetDays int
}

// Renderer turns content blocks into images. A Renderer holds only parsed
// fonts, so Render may be called from several goroutines.
type Renderer struct {
	arabic      *truetype.Font
	urdu        *truetype.Font
	english     *truetype.Font
	hijriOffset int
	logger      *zap.Logger
}

// New loads the configured fonts.
func New(opts Options, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	arabic, err := loadFont(opts.ArabicFontPath, "arabic", logger)
	if err != nil {
		return nil, err
	}
	urdu, err := loadFont(opts.UrduFontPath, "urdu", logger)
	if err != nil {
		return nil, err
	}
	english, err := loadFont(opts.EnglishFontPath, "english", logger)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		arabic:      arabic,
		urdu:        urdu,
		english:     english,
		hijriOffset: opts.HijriOffsetDays,
		logger:      logger,
	}, nil
}

// Render lays out block on one page, or on several when it cannot fit at the
// minimum scale.
func (r *Renderer) Render(block types.ContentBlock) ([]image.Image, error) {
	if strings.TrimSpace(block.Arabic) == "" {
		return nil, &Error{Message: "content block has no Arabic text", Cause: types.ErrValidation}
	}

	var sections []section
	switch block.Kind {
	case types.KindAyah:
		sections = r.ayahSections(block)
	case types.KindHadith:
		sections = r.hadithSections(block)
	default:
		return nil, &Error{Message: fmt.Sprintf("unknown content kind %q", block.Kind), Cause: types.ErrValidation}
	}

	lay := newLayout(sections)
	scale, fits := lay.fit()
	lines := lay.lines(scale)

	pages := [][]line{lines}
	if !fits {
		pages = paginate(lines)
	}
	r.logger.Debug("laid out content",
		zap.String("kind", string(block.Kind)),
		zap.String("reference", block.Reference),
		zap.Float64("font_scale", scale.Font),
		zap.Int("pages", len(pages)),
	)

	footer := r.footer(block)
	images := make([]image.Image, 0, len(pages))
	for i, page := range pages {
		reference := "(" + block.Reference + ")"
		if len(pages) > 1 {
			reference = fmt.Sprintf("%s %d/%d", reference, i+1, len(pages))
		}
		images = append(images, r.drawPage(lay.faces, page, reference, footer))
	}
	return images, nil
}

func (r *Renderer) ayahSections(block types.ContentBlock) []section {
	sections := []section{
		{text: Header, font: r.arabic, size: 54, after: 60, rtl: true},
		{text: block.Arabic + VerseMark, font: r.arabic, size: 75, wrap: true, margin: 100, lineGap: 20, after: 80, rtl: true},
	}
	if block.Urdu != "" {
		sections = append(sections, section{text: block.Urdu, font: r.urdu, size: 60, wrap: true, margin: 120, lineGap: 15, after: 60, rtl: true})
	}
	if english := EnglishText(block.English); english != "" {
		sections = append(sections, section{text: english, font: r.english, size: 52, wrap: true, margin: 150, lineGap: 12, after: 60})
	}
	return sections
}

func (r *Renderer) hadithSections(block types.ContentBlock) []section {
	sections := []section{
		{text: Header, font: r.arabic, size: 54, after: 60, rtl: true},
		{text: block.Arabic, font: r.arabic, size: 60, wrap: true, margin: 100, lineGap: 18, after: 80, rtl: true},
	}
	if block.Urdu != "" {
		sections = append(sections, section{text: block.Urdu, font: r.urdu, size: 55, wrap: true, margin: 120, lineGap: 15, after: 60, rtl: true})
	}
	if english := EnglishText(block.English); english != "" {
		sections = append(sections, section{text: english, font: r.english, size: 46, wrap: true, margin: 150, lineGap: 12, after: 60})
	}
	if grading := GradingLine(block.Grade, block.GradedBy); grading != "" {
		sections = append(sections, section{text: grading, font: r.arabic, size: 38, wrap: true, margin: 40, lineGap: 8, after: 50, rtl: true})
	}
	return sections
}

// footer is the Hijri date for verses and the Gregorian date for hadiths.
func (r *Renderer) footer(block types.ContentBlock) string {
	if block.Date.IsZero() {
		return ""
	}
	if block.Kind == types.KindAyah {
		return "(" + hijri.FromGregorian(block.Date, r.hijriOffset).String() + ")"
	}
	d := block.Date
	return fmt.Sprintf("(%d%s %s, %d)", d.Day(), hijri.OrdinalSuffix(d.Day()), d.Month(), d.Year())
}

func (r *Renderer) drawPage(faces faceCache, page []line, reference, footer string) image.Image {
	dc := gg.NewContext(Width, Height)
	dc.SetColor(Background)
	dc.Clear()
	dc.SetColor(Foreground)

	y := float64(topMargin)
	for _, ln := range page {
		dc.SetFontFace(ln.face)
		dc.DrawStringAnchored(ln.text, Width/2, y, 0.5, 1)
		y += ln.height + ln.gap
	}

	dc.SetFontFace(faces.face(r.english, referenceSize))
	dc.DrawStringAnchored(reference, Width/2, y, 0.5, 1)

	if footer != "" {
		dc.SetFontFace(faces.face(r.english, dateSize))
		dc.DrawStringAnchored(footer, Width/2, footerY, 0.5, 1)
	}
	return dc.Image()
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &Error{Message: "failed to create output directory", Cause: err}
	}
	if err := gg.SavePNG(path, img); err != nil {
		return &Error{Message: "failed to write " + path, Cause: err}
	}
	return nil
}
