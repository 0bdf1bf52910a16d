package render

import (
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// Canvas geometry in pixels.
const (
	Width  = 1080
	Height = 1920

	topMargin      = 80
	footerReserve  = 140
	contentLimit   = Height - 160
	pageBottom     = Height - 240
	footerY        = Height - 100
	singleLineSlop = 40
)

// Scaling bounds of the adaptive layout.
const (
	MaxFontScale    = 3.0
	MaxSpacingScale = 2.5
	MinFontScale    = 0.55
	MinSpacingScale = 0.4
)

var growSteps = []float64{0.1, 0.15, 0.2, 0.25, 0.3, 0.35, 0.4, 0.45, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.2, 1.4, 1.6, 1.8, 2.0}

// Scale multiplies base font sizes and vertical spacing.
type Scale struct {
	Font    float64
	Spacing float64
}

// section is one logical text block of a page.
type section struct {
	text    string
	font    *truetype.Font
	size    float64
	wrap    bool
	margin  float64
	lineGap float64
	after   float64
	rtl     bool
}

// line is a laid out row of text, already in drawing order.
type line struct {
	text   string
	face   font.Face
	height float64
	gap    float64
}

// layout measures sections with a scratch context.
type layout struct {
	sections []section
	faces    faceCache
	dc       *gg.Context
}

func newLayout(sections []section) *layout {
	return &layout{
		sections: sections,
		faces:    faceCache{},
		dc:       gg.NewContext(1, 1),
	}
}

func (l *layout) lines(scale Scale) []line {
	var out []line
	for _, s := range l.sections {
		face := l.faces.face(s.font, s.size*scale.Font)
		l.dc.SetFontFace(face)
		height := l.dc.FontHeight()

		rows := []string{s.text}
		if s.wrap {
			rows = l.dc.WordWrap(s.text, Width-s.margin)
		}
		for i, row := range rows {
			gap := s.lineGap * scale.Spacing
			if i == len(rows)-1 {
				gap = s.after * scale.Spacing
			}
			if s.rtl {
				row = visualOrder(row)
			}
			out = append(out, line{text: row, face: face, height: height, gap: gap})
		}
	}
	return out
}

// height is the page height needed at scale, including the top margin and the
// space kept for the reference and date.
func (l *layout) height(scale Scale) float64 {
	total := float64(topMargin)
	for _, ln := range l.lines(scale) {
		total += ln.height + ln.gap
	}
	return total + footerReserve
}

// widthFits reports whether every unwrapped section fits across the canvas.
func (l *layout) widthFits(scale Scale) bool {
	for _, s := range l.sections {
		if s.wrap {
			continue
		}
		l.dc.SetFontFace(l.faces.face(s.font, s.size*scale.Font))
		if w, _ := l.dc.MeasureString(s.text); w > Width-singleLineSlop {
			return false
		}
	}
	return true
}

// fit picks the scale for the sections. Short content grows until it fills
// most of the page; long content shrinks down to the minimum scale. The
// second result is false when even the minimum scale overflows one page.
func (l *layout) fit() (Scale, bool) {
	base := Scale{Font: 1, Spacing: 1}
	baseHeight := l.height(base)

	if baseHeight < contentLimit*0.90 {
		best := base
		for _, step := range growSteps {
			candidate := Scale{Font: 1 + step, Spacing: 1 + step*0.9}
			if l.height(candidate) > contentLimit*0.97 || !l.widthFits(candidate) {
				break
			}
			best = candidate
		}
		best.Font = min(best.Font, MaxFontScale)
		best.Spacing = min(best.Spacing, MaxSpacingScale)
		return best, true
	}

	if baseHeight <= contentLimit {
		return base, true
	}

	scale := base
	for attempt := 0; ; attempt++ {
		if l.height(scale) <= contentLimit {
			return scale, true
		}
		if scale.Font <= MinFontScale && scale.Spacing <= MinSpacingScale {
			return scale, false
		}
		switch {
		case attempt < 2:
			scale.Spacing -= 0.2
		case attempt < 4:
			scale.Font -= 0.1
			scale.Spacing -= 0.08
		default:
			scale.Font -= 0.12
			scale.Spacing -= 0.1
		}
		scale.Font = max(scale.Font, MinFontScale)
		scale.Spacing = max(scale.Spacing, MinSpacingScale)
	}
}

// paginate splits lines into pages that each end above the footer.
func paginate(lines []line) [][]line {
	var pages [][]line
	var current []line
	y := float64(topMargin)
	for _, ln := range lines {
		if len(current) > 0 && y+ln.height > pageBottom {
			pages = append(pages, current)
			current = nil
			y = topMargin
		}
		current = append(current, ln)
		y += ln.height + ln.gap
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}
