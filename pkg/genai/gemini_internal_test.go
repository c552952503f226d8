package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdk "google.golang.org/genai"
)

func TestContentConfig(t *testing.T) {
	t.Parallel()
	g := &Gemini{model: DefaultModel}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg := g.contentConfig(Request{Prompt: "hola"})
		require.NotNil(t, cfg.Temperature)
		assert.InDelta(t, 0.7, *cfg.Temperature, 0.0001)
		assert.Equal(t, int32(4000), cfg.MaxOutputTokens)
		assert.Nil(t, cfg.SystemInstruction)
	})

	t.Run("system instruction and overrides", func(t *testing.T) {
		t.Parallel()
		cfg := g.contentConfig(Request{System: "Eres experto", Prompt: "hola", Temperature: 0.2, MaxOutputTokens: 100})
		assert.InDelta(t, 0.2, *cfg.Temperature, 0.0001)
		assert.Equal(t, int32(100), cfg.MaxOutputTokens)
		require.NotNil(t, cfg.SystemInstruction)
		require.Len(t, cfg.SystemInstruction.Parts, 1)
		assert.Equal(t, "Eres experto", cfg.SystemInstruction.Parts[0].Text)
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want error
		code int
	}{
		{"rate limit", sdk.APIError{Code: 429, Message: "quota"}, ErrRateLimitExceeded, 429},
		{"unauthorized", sdk.APIError{Code: 403, Message: "bad key"}, ErrProviderUnauthorized, 403},
		{"server error", sdk.APIError{Code: 500, Message: "boom"}, ErrGenerationFailed, 500},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ErrGenerationTimeout, 0},
		{"other", errors.New("dial tcp: refused"), ErrGenerationFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := classify(ctx, tt.err)
			assert.ErrorIs(t, err, tt.want)
			if tt.code == 0 {
				assert.ErrorIs(t, err, tt.err, "cause is kept for logs")
				return
			}
			var apiErr sdk.APIError
			require.ErrorAs(t, err, &apiErr, "cause is kept for logs")
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}
