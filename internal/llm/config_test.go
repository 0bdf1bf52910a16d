package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, DefaultModel, config.Model)
}

func TestWithModel(t *testing.T) {
	original := DefaultConfig()

	custom := original.WithModel("gemini-2.5-flash")
	assert.Equal(t, "gemini-2.5-flash", custom.Model)
	assert.Equal(t, DefaultModel, original.Model, "original config is not modified")

	same := original.WithModel("")
	assert.Equal(t, DefaultModel, same.Model)
}

func TestParseAPIKeys(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "abc", []string{"abc"}},
		{"list with blanks", " k1, ,k2,,k3 ", []string{"k1", "k2", "k3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAPIKeys(tt.raw))
		})
	}
}

func TestAPIKeysFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "first,second")
	assert.Equal(t, []string{"first", "second"}, APIKeysFromEnv())
}
