package ayah

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// Separator is appended after every Arabic segment but the last in a combined unit.
const Separator = "۞"

// Policy bounds how many ayahs are merged.
//
// key constraints:
// - MinLen: once the running length reaches this, no more ayahs are added.
// - MaxLen: adding an ayah must not push the running length past this.
// - MaxCount: never more than this many ayahs in one unit.
//
// The first ayah is always included, so a single ayah longer than MaxLen
// still forms a unit on its own.
type Policy struct {
	MinLen   int
	MaxLen   int
	MaxCount int
}

// DefaultPolicy returns the stock limits.
func DefaultPolicy() Policy {
	return Policy{MinLen: 350, MaxLen: 2000, MaxCount: 3}
}

// VerseSource returns a run of ayahs from one surah.
type VerseSource interface {
	GetVerseRun(ctx context.Context, start types.VersePosition, limit int) ([]types.Verse, error)
}

// Combiner builds CombinedVerseUnits from a VerseSource.
type Combiner struct {
	source VerseSource
	policy Policy
	logger *zap.Logger
}

// NewCombiner creates a Combiner. Zero policy fields take their default values.
func NewCombiner(source VerseSource, policy Policy, logger *zap.Logger) *Combiner {
	def := DefaultPolicy()
	if policy.MinLen <= 0 {
		policy.MinLen = def.MinLen
	}
	if policy.MaxLen <= 0 {
		policy.MaxLen = def.MaxLen
	}
	if policy.MaxCount <= 0 {
		policy.MaxCount = def.MaxCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Combiner{source: source, policy: policy, logger: logger}
}

// Policy returns the limits in effect.
func (c *Combiner) Policy() Policy {
	return c.policy
}

// Combine returns the unit starting at start.
func (c *Combiner) Combine(ctx context.Context, start types.VersePosition) (*types.CombinedVerseUnit, error) {
	run, err := c.source.GetVerseRun(ctx, start, c.policy.MaxCount)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read ayahs at %s", start), Cause: err}
	}
	// The source returns ayahs at or after start; the unit must begin exactly at start.
	if len(run) == 0 || run[0].Position != start {
		return nil, &Error{
			Message: fmt.Sprintf("no verses at position %s", start),
			Cause:   fmt.Errorf("%w: %w", types.ErrValidation, types.ErrNotFound),
		}
	}

	selected := Select(run, c.policy)
	unit := Build(selected)

	c.logger.Debug("combined ayahs",
		zap.String("reference", unit.Reference()),
		zap.Int("count", unit.Count),
		zap.Int("length", unit.Length()),
	)
	return unit, nil
}

// Select picks the prefix of run that forms one unit under policy.
// run must start with the first ayah of the unit.
func Select(run []types.Verse, policy Policy) []types.Verse {
	if len(run) == 0 {
		return nil
	}

	first := run[0]
	selected := []types.Verse{first}
	total := first.Length()

	for _, candidate := range run[1:] {
		if len(selected) >= policy.MaxCount {
			break
		}
		// Long enough already
		if total >= policy.MinLen {
			break
		}
		last := selected[len(selected)-1]
		// Gap or surah change
		if candidate.Position.Surah != first.Position.Surah || candidate.Position.Ayah != last.Position.Ayah+1 {
			break
		}
		if total+candidate.Length() > policy.MaxLen {
			break
		}
		selected = append(selected, candidate)
		total += candidate.Length()
	}

	return selected
}

// Build joins the selected ayahs into a unit. A single ayah passes through unchanged.
func Build(verses []types.Verse) *types.CombinedVerseUnit {
	if len(verses) == 0 {
		return nil
	}

	first := verses[0]
	last := verses[len(verses)-1]
	unit := &types.CombinedVerseUnit{
		Start:     first.Position,
		End:       last.Position,
		SurahName: first.SurahName,
		Count:     len(verses),
	}

	if len(verses) == 1 {
		unit.Arabic = first.Arabic
		unit.Urdu = first.Urdu
		unit.English = first.English
		return unit
	}

	arabic := make([]string, 0, len(verses))
	urdu := make([]string, 0, len(verses))
	english := make([]string, 0, len(verses))
	for i, v := range verses {
		if i < len(verses)-1 {
			arabic = append(arabic, v.Arabic+" "+Separator)
		} else {
			arabic = append(arabic, v.Arabic)
		}
		marker := fmt.Sprintf(" (%d)", v.Position.Ayah)
		urdu = append(urdu, v.Urdu+marker)
		english = append(english, v.English+marker)
	}

	unit.Arabic = strings.Join(arabic, " ")
	unit.Urdu = strings.Join(urdu, " ")
	unit.English = strings.Join(english, " ")
	return unit
}
