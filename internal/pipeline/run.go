// Package pipeline provides the high-level orchestration of a daily run:
// progress gate, verse unit, hadith, review, render, save and advance.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/daily-ayat-hadith/internal/db"
	"github.com/jonathan/daily-ayat-hadith/internal/observability"
	"github.com/jonathan/daily-ayat-hadith/internal/render"
	"github.com/jonathan/daily-ayat-hadith/internal/review"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// ManifestFile is written next to the images of every run.
const ManifestFile = "manifest.json"

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Tracker is the durable cursor.
type Tracker interface {
	State() types.ProgressState
	ShouldGenerate(date string) (bool, error)
	Advance(date, contentType string, pos types.VersePosition, hadith int) error
}

// PositionSource sequences verses.
type PositionSource interface {
	NextPosition(ctx context.Context, pos types.VersePosition) (types.VersePosition, error)
}

// VerseCombiner builds a verse unit starting at a position.
type VerseCombiner interface {
	Combine(ctx context.Context, start types.VersePosition) (*types.CombinedVerseUnit, error)
}

// HadithResolver picks the next acceptable hadith.
type HadithResolver interface {
	GetNext(ctx context.Context, current, maxAttempts int) (*types.HadithRecord, error)
}

// Renderer turns a content block into pages.
type Renderer interface {
	Render(block types.ContentBlock) ([]image.Image, error)
}

// RunRecorder keeps the history of published runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *db.Run) error
}

// Dependencies are the collaborators of a run. History is optional.
type Dependencies struct {
	Tracker   Tracker
	Positions PositionSource
	Combiner  VerseCombiner
	Hadiths   HadithResolver
	Gate      review.Gate
	Renderer  Renderer
	History   RunRecorder
	Logger    *zap.Logger
	Printer   *observability.Printer
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Date        time.Time
	OutputDir   string
	Collection  string // display name used in hadith references
	MaxAttempts int
	Verbose     bool
	OnProgress  ProgressCallback
}

// Result describes a finished run.
type Result struct {
	RunID     uuid.UUID
	Date      string
	Skipped   bool // the date was already generated
	Cancelled bool // the operator declined at review
	Ayah      *types.CombinedVerseUnit
	Hadith    *types.HadithRecord
	Files     []string
	Manifest  string
}

// Manifest records what a run published.
type Manifest struct {
	RunID       string         `json:"run_id"`
	Date        string         `json:"date"`
	GeneratedAt time.Time      `json:"generated_at"`
	Ayah        ManifestAyah   `json:"ayah"`
	Hadith      ManifestHadith `json:"hadith"`
	Files       []string       `json:"files"`
}

// ManifestAyah identifies the published verse unit.
type ManifestAyah struct {
	Reference string `json:"reference"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// ManifestHadith identifies the published hadith.
type ManifestHadith struct {
	Reference string             `json:"reference"`
	Number    int                `json:"number"`
	Source    types.HadithSource `json:"source,omitempty"`
	Grade     string             `json:"grade,omitempty"`
}

type runner struct {
	deps  Dependencies
	opts  RunOptions
	runID uuid.UUID
	date  string
	log   *zap.Logger
}

func newRunner(deps Dependencies, opts RunOptions) (*runner, error) {
	if deps.Tracker == nil || deps.Positions == nil || deps.Combiner == nil || deps.Hadiths == nil {
		return nil, fmt.Errorf("%w: pipeline dependencies are incomplete", types.ErrValidation)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}
	runID := uuid.New()
	return &runner{
		deps:  deps,
		opts:  opts,
		runID: runID,
		date:  opts.Date.Format("2006-01-02"),
		log:   deps.Logger.With(zap.String("run_id", runID.String())),
	}, nil
}

// emit calls the progress callback if configured
func (r *runner) emit(stage Stage, message string) {
	r.log.Info(message, zap.String("stage", string(stage)))
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{Stage: stage, Message: message, RunID: r.runID.String()})
	}
}

// Run performs one generation for opts.Date. The cursor is advanced only
// after every image and the manifest were written.
func Run(ctx context.Context, deps Dependencies, opts RunOptions) (*Result, error) {
	if deps.Gate == nil {
		deps.Gate = review.AutoApprove{}
	}
	if deps.Renderer == nil {
		return nil, fmt.Errorf("%w: renderer is required", types.ErrValidation)
	}
	r, err := newRunner(deps, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{RunID: r.runID, Date: r.date}

	r.emit(StageProgress, fmt.Sprintf("Checking progress for %s", r.date))
	pending, err := deps.Tracker.ShouldGenerate(r.date)
	if err != nil {
		return nil, &StageError{Stage: StageProgress, Cause: err}
	}
	if !pending {
		r.emit(StageProgress, fmt.Sprintf("Already generated for %s", r.date))
		result.Skipped = true
		return result, nil
	}

	state := deps.Tracker.State()
	if err := r.selectContent(ctx, state, result); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageReview, Cause: err}
	}
	r.emit(StageReview, "Waiting for review")
	draft := review.Draft{
		Date:   r.date,
		Ayah:   types.AyahBlock(result.Ayah, r.opts.Date),
		Hadith: types.HadithBlock(result.Hadith, r.opts.Collection, r.opts.Date),
	}
	draft, proceed, err := deps.Gate.Confirm(ctx, draft)
	if err != nil {
		return nil, &StageError{Stage: StageReview, Cause: err}
	}
	if !proceed {
		r.emit(StageReview, "Cancelled at review, nothing written")
		result.Cancelled = true
		return result, nil
	}

	r.emit(StageRender, "Rendering images")
	var ayahPages, hadithPages []image.Image
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pages, err := deps.Renderer.Render(draft.Ayah)
		if err != nil {
			return fmt.Errorf("ayah: %w", err)
		}
		ayahPages = pages
		return gCtx.Err()
	})
	g.Go(func() error {
		pages, err := deps.Renderer.Render(draft.Hadith)
		if err != nil {
			return fmt.Errorf("hadith: %w", err)
		}
		hadithPages = pages
		return gCtx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, &StageError{Stage: StageRender, Cause: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageSave, Cause: err}
	}
	r.emit(StageSave, "Saving images")
	if err := r.save(result, ayahPages, hadithPages); err != nil {
		return nil, &StageError{Stage: StageSave, Cause: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageAdvance, Cause: err}
	}
	if err := deps.Tracker.Advance(r.date, types.ContentBoth, result.Ayah.End, result.Hadith.Number); err != nil {
		return nil, &StageError{Stage: StageAdvance, Cause: err}
	}
	r.emit(StageAdvance, fmt.Sprintf("Advanced progress to %s and hadith %d", result.Ayah.End, result.Hadith.Number))
	r.record(ctx, result)

	if r.opts.Verbose && deps.Printer != nil {
		deps.Printer.PrintOutputs(result.Files)
	}
	return result, nil
}

// record adds the run to the history. The cursor has already moved, so a
// failure is only logged.
func (r *runner) record(ctx context.Context, result *Result) {
	if r.deps.History == nil {
		return
	}
	run := &db.Run{
		ID:            result.RunID,
		Date:          result.Date,
		AyahReference: result.Ayah.Reference(),
		AyahEnd:       result.Ayah.End.String(),
		HadithNumber:  result.Hadith.Number,
		HadithSource:  string(result.Hadith.Source),
		Files:         len(result.Files),
	}
	if err := r.deps.History.RecordRun(ctx, run); err != nil {
		r.log.Warn("failed to record run history", zap.Error(err))
	}
}

// Preview selects the content the next run would publish without reviewing,
// rendering or advancing.
func Preview(ctx context.Context, deps Dependencies, opts RunOptions) (*Result, error) {
	r, err := newRunner(deps, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{RunID: r.runID, Date: r.date}
	if err := r.selectContent(ctx, deps.Tracker.State(), result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *runner) selectContent(ctx context.Context, state types.ProgressState, result *Result) error {
	r.emit(StageAyah, fmt.Sprintf("Selecting verses after %s", state.LastPosition()))
	start, err := r.deps.Positions.NextPosition(ctx, state.LastPosition())
	if err != nil {
		return &StageError{Stage: StageAyah, Cause: err}
	}
	unit, err := r.deps.Combiner.Combine(ctx, start)
	if err != nil {
		return &StageError{Stage: StageAyah, Cause: err}
	}
	result.Ayah = unit
	if r.opts.Verbose && r.deps.Printer != nil {
		r.deps.Printer.PrintVerseUnit(unit)
	}

	r.emit(StageHadith, fmt.Sprintf("Selecting hadith after %d", state.LastHadith))
	h, err := r.deps.Hadiths.GetNext(ctx, state.LastHadith, r.opts.MaxAttempts)
	if err != nil {
		return &StageError{Stage: StageHadith, Cause: err}
	}
	result.Hadith = h
	if r.opts.Verbose && r.deps.Printer != nil {
		r.deps.Printer.PrintHadith(h)
	}
	return nil
}

// save writes every page and the manifest under <output>/<date>/. On failure
// the files written so far are removed.
func (r *runner) save(result *Result, ayahPages, hadithPages []image.Image) (err error) {
	dir := filepath.Join(r.opts.OutputDir, r.date)
	var written []string
	defer func() {
		if err != nil {
			for _, path := range written {
				_ = os.Remove(path)
			}
		}
	}()

	ayahBase := fmt.Sprintf("ayat_%s_%d", strings.ReplaceAll(result.Ayah.SurahName, " ", "_"), result.Ayah.Start.Ayah)
	hadithBase := fmt.Sprintf("hadith_mishkaat_%d", result.Hadith.Number)
	for _, set := range []struct {
		base  string
		pages []image.Image
	}{
		{ayahBase, ayahPages},
		{hadithBase, hadithPages},
	} {
		for i, page := range set.pages {
			path := filepath.Join(dir, PageFileName(set.base, i+1, len(set.pages)))
			if err := render.SavePNG(page, path); err != nil {
				return err
			}
			written = append(written, path)
			r.log.Info("saved image", zap.String("path", path))
		}
	}

	manifest := Manifest{
		RunID:       r.runID.String(),
		Date:        r.date,
		GeneratedAt: time.Now().UTC(),
		Ayah: ManifestAyah{
			Reference: result.Ayah.Reference(),
			Start:     result.Ayah.Start.String(),
			End:       result.Ayah.End.String(),
		},
		Hadith: ManifestHadith{
			Reference: types.HadithBlock(result.Hadith, r.opts.Collection, r.opts.Date).Reference,
			Number:    result.Hadith.Number,
			Source:    result.Hadith.Source,
			Grade:     result.Hadith.Grade,
		},
		Files: make([]string, 0, len(written)),
	}
	for _, path := range written {
		manifest.Files = append(manifest.Files, filepath.Base(path))
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	manifestPath := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	result.Files = written
	result.Manifest = manifestPath
	return nil
}

// PageFileName returns base.png for single-page output and base_pageN.png
// for each page of a multi-page one.
func PageFileName(base string, page, total int) string {
	if total <= 1 {
		return base + ".png"
	}
	return fmt.Sprintf("%s_page%d.png", base, page)
}
