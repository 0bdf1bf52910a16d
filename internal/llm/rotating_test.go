package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type scriptedClient struct {
	key    string
	err    error
	out    string
	closed bool
	calls  *[]string
}

func (c *scriptedClient) GenerateJSON(context.Context, string, string) (string, error) {
	*c.calls = append(*c.calls, c.key)
	return c.out, c.err
}

func (c *scriptedClient) Model() string { return "test-model" }

func (c *scriptedClient) Close() error {
	c.closed = true
	return nil
}

// scriptedFactory returns per-key behavior: an error, or a JSON body.
func scriptedFactory(errs map[string]error, calls *[]string, built map[string]*scriptedClient) Factory {
	return func(_ context.Context, key string) (Client, error) {
		c := &scriptedClient{key: key, err: errs[key], out: `{"key":"` + key + `"}`, calls: calls}
		built[key] = c
		return c, nil
	}
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"googleapi 429", &googleapi.Error{Code: 429}, true},
		{"googleapi 500", &googleapi.Error{Code: 500, Message: "internal"}, false},
		{"status text", errors.New("googleapi: Error 429: Resource has been exhausted"), true},
		{"quota", errors.New("Quota exceeded for metric"), true},
		{"rate limit", errors.New("Rate limit reached"), true},
		{"other", errors.New("invalid argument"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimit(tt.err))
		})
	}
}

func TestRotatingClient_RotatesOnRateLimit(t *testing.T) {
	var calls []string
	built := map[string]*scriptedClient{}
	factory := scriptedFactory(map[string]error{"k1": errors.New("429 too many requests")}, &calls, built)

	client, err := NewRotatingClient([]string{"k1", "k2"}, "test-model", factory, nil)
	require.NoError(t, err)

	out, err := client.GenerateJSON(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"key":"k2"}`, out)
	assert.Equal(t, []string{"k1", "k2"}, calls)
	assert.True(t, built["k1"].closed, "rate-limited client is closed")

	// The exhausted key is not retried on the next call
	_, err = client.GenerateJSON(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2", "k2"}, calls)
	assert.Equal(t, "test-model", client.Model())
	assert.NoError(t, client.Close())
}

func TestRotatingClient_AllKeysExhausted(t *testing.T) {
	var calls []string
	limit := errors.New("quota exceeded")
	factory := scriptedFactory(map[string]error{"k1": limit, "k2": limit}, &calls, map[string]*scriptedClient{})

	client, err := NewRotatingClient([]string{"k1", "k2"}, "m", factory, nil)
	require.NoError(t, err)

	_, err = client.GenerateJSON(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeysExhausted)
	assert.ErrorIs(t, err, limit)

	_, err = client.GenerateJSON(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, ErrKeysExhausted)
	assert.Len(t, calls, 2)
}

func TestRotatingClient_OtherErrorsDoNotRotate(t *testing.T) {
	var calls []string
	bad := errors.New("invalid argument")
	factory := scriptedFactory(map[string]error{"k1": bad}, &calls, map[string]*scriptedClient{})

	client, err := NewRotatingClient([]string{"k1", "k2"}, "m", factory, nil)
	require.NoError(t, err)

	_, err = client.GenerateJSON(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, []string{"k1"}, calls)
}

func TestNewRotatingClient_NoKeys(t *testing.T) {
	_, err := NewRotatingClient(nil, "m", nil, nil)
	assert.Error(t, err)
}

func TestNewGeminiClient_NoKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), nil, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}
