package hadith

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/translate"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// DefaultMaxAttempts bounds the weak-skip loop of GetNext.
const DefaultMaxAttempts = 10

// RemoteSource fetches one hadith from a website. Errors wrap
// types.ErrNotFound or types.ErrTransient.
type RemoteSource interface {
	Name() string
	Fetch(ctx context.Context, n int) (*types.HadithRecord, error)
}

// LocalStore is the local corpus; it is the sequencing authority.
type LocalStore interface {
	GetHadith(ctx context.Context, n int) (*types.HadithRecord, error)
	NextHadithNumber(ctx context.Context, n int) (int, error)
}

// Translator produces an English translation grounded on an existing one.
type Translator interface {
	Translate(ctx context.Context, arabic, grounding string) (*translate.Result, error)
}

// Options selects the resolution chain.
type Options struct {
	RemoteEnabled   bool
	FallbackToLocal bool
	Collection      string
	Mode            string
}

// Resolver produces one hadith per call from the configured sources.
type Resolver struct {
	opts       Options
	primary    RemoteSource
	secondary  RemoteSource
	local      LocalStore
	translator Translator
	logger     *zap.Logger
}

// NewResolver creates a Resolver. local is required; primary, secondary and
// translator may be nil when not configured. Remote resolution is active only
// when RemoteEnabled is set and at least one remote source is present.
func NewResolver(opts Options, primary, secondary RemoteSource, local LocalStore, translator Translator, logger *zap.Logger) (*Resolver, error) {
	if local == nil {
		return nil, fmt.Errorf("%w: local hadith store is required", types.ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RemoteEnabled && primary == nil && secondary == nil {
		logger.Warn("remote mode enabled without remote sources, using local store")
		opts.RemoteEnabled = false
	}
	return &Resolver{
		opts:       opts,
		primary:    primary,
		secondary:  secondary,
		local:      local,
		translator: translator,
		logger:     logger,
	}, nil
}

// GetHadith resolves hadith n through the source chain:
//
//  1. primary remote, with missing translations filled from the local store
//  2. secondary remote, filled from the local store and then the translator
//  3. the local store, if fallback is enabled
//
// Without remote mode only the local store is used.
func (r *Resolver) GetHadith(ctx context.Context, n int) (*types.HadithRecord, error) {
	if !r.opts.RemoteEnabled {
		return r.fromLocal(ctx, n)
	}

	var failures []error

	if r.primary != nil {
		h, err := r.primary.Fetch(ctx, n)
		if err == nil {
			r.logger.Info("fetched hadith", zap.Int("hadith", n), zap.String("source", r.primary.Name()))
			r.fillFromLocal(ctx, h)
			return h, nil
		}
		r.logger.Warn("primary source failed", zap.Int("hadith", n), zap.String("source", r.primary.Name()), zap.Error(err))
		failures = append(failures, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if r.secondary != nil {
		h, err := r.secondary.Fetch(ctx, n)
		if err == nil {
			r.logger.Info("fetched hadith", zap.Int("hadith", n), zap.String("source", r.secondary.Name()))
			r.fillFromLocal(ctx, h)
			r.fillWithTranslator(ctx, h)
			return h, nil
		}
		r.logger.Warn("secondary source failed", zap.Int("hadith", n), zap.String("source", r.secondary.Name()), zap.Error(err))
		failures = append(failures, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if !r.opts.FallbackToLocal {
		return nil, &Error{
			Number:  n,
			Message: "all remote sources failed",
			Cause:   fmt.Errorf("%w: %w", types.ErrSourceExhausted, errors.Join(failures...)),
		}
	}

	r.logger.Info("falling back to local store", zap.Int("hadith", n))
	return r.fromLocal(ctx, n)
}

// GetNext returns the first non-weak hadith after current, trying at most
// maxAttempts numbers. Sequencing always comes from the local store and
// continues from the last number tried.
func (r *Resolver) GetNext(ctx context.Context, current, maxAttempts int) (*types.HadithRecord, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	number := current
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		next, err := r.local.NextHadithNumber(ctx, number)
		if err != nil {
			return nil, &Error{Number: number, Message: "failed to find next hadith", Cause: err}
		}
		number = next

		h, err := r.GetHadith(ctx, number)
		if err != nil {
			return nil, err
		}

		if !IsWeak(h.Grade) {
			r.logger.Info("selected hadith", zap.Int("hadith", h.Number), zap.String("grade", h.Grade), zap.String("source", string(h.Source)))
			return h, nil
		}

		r.logger.Warn("skipping weak hadith",
			zap.Int("hadith", h.Number),
			zap.String("grade", h.Grade),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
		)
	}

	return nil, &Error{
		Number:  number,
		Message: fmt.Sprintf("no acceptable hadith after %d attempts from %d", maxAttempts, current),
		Cause:   types.ErrExhaustedRetries,
	}
}

// SourceInfo describes the active configuration.
type SourceInfo struct {
	Mode              string `json:"mode"`
	RemoteEnabled     bool   `json:"remote_enabled"`
	Collection        string `json:"collection,omitempty"`
	Primary           string `json:"primary,omitempty"`
	Secondary         string `json:"secondary,omitempty"`
	LocalAvailable    bool   `json:"local_available"`
	FallbackToLocal   bool   `json:"fallback_to_local"`
	TranslatorEnabled bool   `json:"translator_enabled"`
}

// SourceInfo returns the active source configuration.
func (r *Resolver) SourceInfo() SourceInfo {
	info := SourceInfo{
		Mode:              r.opts.Mode,
		RemoteEnabled:     r.opts.RemoteEnabled,
		LocalAvailable:    r.local != nil,
		FallbackToLocal:   r.opts.FallbackToLocal,
		TranslatorEnabled: r.translator != nil,
	}
	if r.opts.RemoteEnabled {
		info.Collection = r.opts.Collection
		if r.primary != nil {
			info.Primary = r.primary.Name()
		}
		if r.secondary != nil {
			info.Secondary = r.secondary.Name()
		}
	}
	return info
}

func (r *Resolver) fromLocal(ctx context.Context, n int) (*types.HadithRecord, error) {
	h, err := r.local.GetHadith(ctx, n)
	if err != nil {
		return nil, &Error{Number: n, Message: "local store lookup failed", Cause: err}
	}
	r.logger.Debug("fetched hadith", zap.Int("hadith", n), zap.String("source", string(types.SourceLocal)))
	return h, nil
}

// fillFromLocal completes empty translations from the local store, best effort.
func (r *Resolver) fillFromLocal(ctx context.Context, h *types.HadithRecord) {
	if h.Urdu != "" && h.English != "" {
		return
	}
	local, err := r.local.GetHadith(ctx, h.Number)
	if err != nil {
		r.logger.Warn("could not complete translations from local store", zap.Int("hadith", h.Number), zap.Error(err))
		return
	}
	if h.Urdu == "" {
		h.Urdu = local.Urdu
	}
	if h.English == "" {
		h.English = local.English
	}
}

// fillWithTranslator generates a missing English translation, best effort.
// Weak hadiths are skipped since they are discarded anyway.
func (r *Resolver) fillWithTranslator(ctx context.Context, h *types.HadithRecord) {
	if h.English != "" || r.translator == nil {
		return
	}
	if IsWeak(h.Grade) {
		r.logger.Info("skipping AI translation for weak hadith", zap.Int("hadith", h.Number), zap.String("grade", h.Grade))
		return
	}

	result, err := r.translator.Translate(ctx, h.Arabic, h.Urdu)
	if err != nil {
		r.logger.Warn("AI translation failed", zap.Int("hadith", h.Number), zap.Error(err))
		return
	}
	if result.NeedsReview() {
		r.logger.Warn("AI translation needs manual review", zap.Int("hadith", h.Number), zap.String("confidence", result.Confidence))
	}
	h.English = result.Text
}
