// Package llm provides the LLM client used for AI translation, with API key rotation.
package llm

import (
	"os"
	"strings"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// APIKeyEnv holds one key or a comma separated list of keys.
const APIKeyEnv = "GEMINI_API_KEY"

// Config holds the model configuration
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       DefaultModel,
		Temperature: 0.1,
	}
}

// WithModel returns a copy of the config using model. An empty model keeps the current one.
func (c *Config) WithModel(model string) *Config {
	newConfig := *c
	if model != "" {
		newConfig.Model = model
	}
	return &newConfig
}

// ParseAPIKeys splits a comma separated key list, dropping blanks.
func ParseAPIKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// APIKeysFromEnv reads the rotation list from GEMINI_API_KEY.
func APIKeysFromEnv() []string {
	return ParseAPIKeys(os.Getenv(APIKeyEnv))
}
