package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrKeysExhausted is returned when every API key hit its rate limit.
var ErrKeysExhausted = errors.New("all API keys exhausted")

// Factory builds a client for one API key.
type Factory func(ctx context.Context, apiKey string) (Client, error)

// GeminiFactory returns a Factory producing Gemini clients for config.
func GeminiFactory(config *Config) Factory {
	return func(ctx context.Context, apiKey string) (Client, error) {
		return NewGeminiClient(ctx, config, apiKey)
	}
}

// RotatingClient moves to the next API key when the current one is rate
// limited. Other errors are returned as is. The position is kept across calls,
// so an exhausted key is not retried within one process.
type RotatingClient struct {
	keys    []string
	factory Factory
	model   string
	logger  *zap.Logger

	mu      sync.Mutex
	current int
	client  Client
}

// NewRotatingClient creates a RotatingClient over keys.
func NewRotatingClient(keys []string, model string, factory Factory, logger *zap.Logger) (*RotatingClient, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(keys) > 1 {
		logger.Info("loaded API keys for rotation", zap.Int("keys", len(keys)))
	}
	return &RotatingClient{keys: keys, factory: factory, model: model, logger: logger}, nil
}

// GenerateJSON tries the current key and rotates on rate limit errors.
func (r *RotatingClient) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lastErr error
	for r.current < len(r.keys) {
		client, err := r.clientLocked(ctx)
		if err != nil {
			return "", err
		}

		out, err := client.GenerateJSON(ctx, system, prompt)
		if err == nil {
			return out, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}

		lastErr = err
		r.logger.Warn("rate limit hit for API key",
			zap.Int("key", r.current+1),
			zap.Int("keys", len(r.keys)),
			zap.Error(err),
		)
		r.rotateLocked()
	}

	if lastErr == nil {
		return "", ErrKeysExhausted
	}
	return "", fmt.Errorf("%w: %w", ErrKeysExhausted, lastErr)
}

// Model returns the model name
func (r *RotatingClient) Model() string {
	return r.model
}

// Close releases the active client
func (r *RotatingClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		err := r.client.Close()
		r.client = nil
		return err
	}
	return nil
}

func (r *RotatingClient) clientLocked(ctx context.Context) (Client, error) {
	if r.client != nil {
		return r.client, nil
	}
	client, err := r.factory(ctx, r.keys[r.current])
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

func (r *RotatingClient) rotateLocked() {
	if r.client != nil {
		_ = r.client.Close()
		r.client = nil
	}
	r.current++
	if r.current < len(r.keys) {
		r.logger.Info("rotating to next API key", zap.Int("key", r.current+1), zap.Int("keys", len(r.keys)))
	}
}
