package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/llm"
	"github.com/jonathan/daily-ayat-hadith/internal/prompts"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// Confidence levels reported by the model
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Result is a generated translation.
type Result struct {
	Text       string `json:"english_translation" validate:"required"`
	Confidence string `json:"confidence" validate:"required,oneof=high medium low"`
}

// NeedsReview reports whether a human should check the translation.
func (r *Result) NeedsReview() bool {
	return r.Confidence != ConfidenceHigh
}

// Translator turns Arabic hadith text into English, optionally grounded on an
// existing translation (usually Urdu).
type Translator struct {
	client   llm.Client
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a Translator over client.
func New(client llm.Client, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		client:   client,
		validate: validator.New(),
		logger:   logger,
	}
}

// Translate returns an English translation of arabic.
func (t *Translator) Translate(ctx context.Context, arabic, grounding string) (*Result, error) {
	if strings.TrimSpace(arabic) == "" {
		return nil, &Error{Message: "nothing to translate", Cause: types.ErrValidation}
	}

	system, prompt, err := prompts.HadithTranslation(arabic, grounding)
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	t.logger.Info("generating AI translation", zap.String("model", t.client.Model()))
	raw, err := t.client.GenerateJSON(ctx, system, prompt)
	if err != nil {
		return nil, &Error{Message: "AI translation failed", Cause: err}
	}

	result, err := t.Parse(raw)
	if err != nil {
		return nil, err
	}

	t.logger.Info("AI translation generated",
		zap.String("confidence", result.Confidence),
		zap.Bool("needs_review", result.NeedsReview()),
	)
	return result, nil
}

// Parse decodes and validates a model response.
func (t *Translator) Parse(raw string) (*Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &result); err != nil {
		return nil, &Error{Message: "failed to parse translation JSON", Cause: err}
	}

	result.Text = strings.TrimSpace(result.Text)
	result.Confidence = strings.ToLower(strings.TrimSpace(result.Confidence))
	if err := t.validate.Struct(&result); err != nil {
		return nil, &Error{Message: "invalid translation", Cause: fmt.Errorf("%w: %w", types.ErrValidation, err)}
	}
	return &result, nil
}
