// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/daily-ayat-hadith/internal/db"
	"github.com/jonathan/daily-ayat-hadith/internal/hadith"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// previewRunes is how much of each text is shown in summaries
	previewRunes = 50
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func onOff(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}

// PrintSourceInfo outputs the active hadith source configuration.
func (p *Printer) PrintSourceInfo(info hadith.SourceInfo) {
	var sb strings.Builder

	mode := info.Mode
	if mode == "" {
		mode = "local"
	}
	sb.WriteString(fmt.Sprintf("Mode:        %s\n", strings.ToUpper(mode)))
	if info.RemoteEnabled {
		sb.WriteString(fmt.Sprintf("Collection:  %s\n", info.Collection))
		sources := []string{}
		for _, name := range []string{info.Primary, info.Secondary} {
			if name != "" {
				sources = append(sources, name)
			}
		}
		sources = append(sources, "local")
		sb.WriteString(fmt.Sprintf("Chain:       %s\n", strings.Join(sources, " → ")))
		sb.WriteString(fmt.Sprintf("Fallback:    %s\n", onOff(info.FallbackToLocal)))
		sb.WriteString(fmt.Sprintf("AI English:  %s\n", onOff(info.TranslatorEnabled)))
	} else {
		sb.WriteString("Chain:       local\n")
	}

	p.printBox("HADITH SOURCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs the stored generation cursor.
func (p *Printer) PrintProgress(state types.ProgressState, path string) {
	var sb strings.Builder

	lastDate := state.LastDate
	if lastDate == types.NeverRunDate {
		lastDate += " (never run)"
	}
	sb.WriteString(fmt.Sprintf("File:         %s\n", path))
	sb.WriteString(fmt.Sprintf("Last date:    %s\n", lastDate))
	sb.WriteString(fmt.Sprintf("Content:      %s\n", state.ContentType))
	sb.WriteString(fmt.Sprintf("Last ayah:    %s\n", state.LastPosition()))
	sb.WriteString(fmt.Sprintf("Last hadith:  %d", state.LastHadith))

	p.printBox("PROGRESS", sb.String())
}

// PrintAlreadyGenerated reports that date needs no run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAlreadyGenerated(date string, state types.ProgressState) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALREADY GENERATED FOR "+date)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "Last generated: "+state.LastDate)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

// PrintVerseUnit outputs a summary of the selected verse unit.
func (p *Printer) PrintVerseUnit(unit *types.CombinedVerseUnit) {
	if unit == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reference: %s\n", unit.Reference()))
	sb.WriteString(fmt.Sprintf("Verses:    %d (%s → %s)\n", unit.Count, unit.Start, unit.End))
	sb.WriteString(fmt.Sprintf("Length:    %d\n\n", unit.Length()))
	sb.WriteString(fmt.Sprintf("Arabic:  %s\n", truncate(unit.Arabic, previewRunes)))
	sb.WriteString(fmt.Sprintf("Urdu:    %s\n", truncate(unit.Urdu, previewRunes)))
	sb.WriteString(fmt.Sprintf("English: %s", truncate(unit.English, previewRunes)))

	p.printBox("AYAH", sb.String())
}

// PrintHadith outputs a summary of the selected hadith.
func (p *Printer) PrintHadith(h *types.HadithRecord) {
	if h == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Number:  %d\n", h.Number))
	sb.WriteString(fmt.Sprintf("Source:  %s\n", h.Source))
	if h.Grade != "" {
		sb.WriteString(fmt.Sprintf("Grading: %s %s\n", h.Grade, h.GradedBy))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Arabic:  %s\n", truncate(h.Arabic, previewRunes)))
	sb.WriteString(fmt.Sprintf("Urdu:    %s", truncate(h.Urdu, previewRunes)))
	if h.English != "" {
		sb.WriteString(fmt.Sprintf("\nEnglish: %s", truncate(h.English, previewRunes)))
	}

	p.printBox("HADITH", sb.String())
}

// PrintOutputs lists the files written by a run.
func (p *Printer) PrintOutputs(files []string) {
	if len(files) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Wrote %d files:\n\n", len(files)))

	count := min(len(files), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("✓ %s\n", files[i]))
	}
	if len(files) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(files)-maxItemsToShow))
	}

	p.printBox("OUTPUT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRuns lists published runs, newest first.
func (p *Printer) PrintRuns(runs []db.Run) {
	if len(runs) == 0 {
		p.printBox("HISTORY", "No runs recorded yet")
		return
	}

	var sb strings.Builder
	for _, run := range runs {
		source := run.HadithSource
		if source == "" {
			source = "?"
		}
		sb.WriteString(fmt.Sprintf("%s  %s · hadith %d (%s)\n", run.Date, run.AyahReference, run.HadithNumber, source))
	}

	p.printBox("HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}
