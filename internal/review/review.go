// Package review is the human confirmation step between content selection
// and rendering. The operator can edit the draft text or cancel the run.
package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// Draft is the content of one run as presented for review.
type Draft struct {
	Date   string             `yaml:"date"`
	Ayah   types.ContentBlock `yaml:"ayah"`
	Hadith types.ContentBlock `yaml:"hadith"`
}

// Gate confirms a draft. It returns the possibly edited draft and whether
// the run should proceed.
type Gate interface {
	Confirm(ctx context.Context, draft Draft) (Draft, bool, error)
}

// AutoApprove proceeds with every draft unchanged.
type AutoApprove struct{}

// Confirm implements Gate.
func (AutoApprove) Confirm(_ context.Context, draft Draft) (Draft, bool, error) {
	return draft, true, nil
}

const draftHeader = "# Edit the text below, save the file, then answer the prompt.\n# Only arabic, urdu, english, reference, grade and graded_by are read back.\n"

// FileGate writes the draft to a YAML file, waits for the operator to answer
// y/N and reads the file back.
type FileGate struct {
	path   string
	in     *bufio.Reader
	out    io.Writer
	logger *zap.Logger
}

// NewFileGate creates a gate using path for the draft. in and out default to
// stdin and stdout.
func NewFileGate(path string, in io.Reader, out io.Writer, logger *zap.Logger) *FileGate {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileGate{path: path, in: bufio.NewReader(in), out: out, logger: logger}
}

// Confirm implements Gate.
func (g *FileGate) Confirm(ctx context.Context, draft Draft) (Draft, bool, error) {
	if err := WriteDraft(g.path, draft); err != nil {
		return draft, false, err
	}
	g.logger.Info("wrote review draft", zap.String("path", g.path))

	fmt.Fprintf(g.out, "\nReview draft written to %s\n", g.path)
	fmt.Fprintf(g.out, "  Ayah:   %s\n", draft.Ayah.Reference)
	fmt.Fprintf(g.out, "  Hadith: %s\n", draft.Hadith.Reference)
	fmt.Fprint(g.out, "Edit the file if needed. Proceed with generation? [y/N]: ")

	answer, err := g.readLine(ctx)
	if err != nil {
		return draft, false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
	default:
		g.logger.Info("review cancelled by operator")
		return draft, false, nil
	}

	edited, err := ReadDraft(g.path)
	if err != nil {
		return draft, false, err
	}
	return merge(draft, edited), true, nil
}

// readLine reads one answer, giving up when ctx is done. EOF counts as an
// empty answer.
func (g *FileGate) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := g.in.ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", &Error{Message: "failed to read answer", Cause: r.err}
		}
		return r.line, nil
	}
}

// merge takes the editable text from edited and everything else from original.
func merge(original, edited Draft) Draft {
	out := original
	out.Ayah = mergeBlock(original.Ayah, edited.Ayah)
	out.Hadith = mergeBlock(original.Hadith, edited.Hadith)
	return out
}

// mergeBlock applies the operator's text edits. Arabic and Reference are
// required on every image, so clearing them keeps the original. The other
// text fields may be cleared, which drops them from the image.
func mergeBlock(original, edited types.ContentBlock) types.ContentBlock {
	out := original
	out.Arabic = strings.TrimSpace(edited.Arabic)
	out.Urdu = strings.TrimSpace(edited.Urdu)
	out.English = strings.TrimSpace(edited.English)
	out.Reference = strings.TrimSpace(edited.Reference)
	out.Grade = strings.TrimSpace(edited.Grade)
	out.GradedBy = strings.TrimSpace(edited.GradedBy)
	if out.Arabic == "" {
		out.Arabic = original.Arabic
	}
	if out.Reference == "" {
		out.Reference = original.Reference
	}
	return out
}

// WriteDraft saves draft as YAML.
func WriteDraft(path string, draft Draft) error {
	data, err := yaml.Marshal(draft)
	if err != nil {
		return &Error{Message: "failed to encode draft", Cause: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &Error{Message: "failed to create draft directory", Cause: err}
	}
	if err := os.WriteFile(path, append([]byte(draftHeader), data...), 0644); err != nil {
		return &Error{Message: "failed to write draft " + path, Cause: err}
	}
	return nil
}

// ReadDraft loads a draft written by WriteDraft and possibly edited by hand.
func ReadDraft(path string) (Draft, error) {
	var draft Draft
	data, err := os.ReadFile(path)
	if err != nil {
		return draft, &Error{Message: "failed to read draft " + path, Cause: err}
	}
	if err := yaml.Unmarshal(data, &draft); err != nil {
		return draft, &Error{Message: "draft is not valid YAML", Cause: fmt.Errorf("%w: %w", types.ErrValidation, err)}
	}
	return draft, nil
}
