// Package genai produces text completions from a generative model.
//
// Callers depend on the Generator interface; NewGemini backs it with the
// Gemini API through google.golang.org/genai.
package genai

import (
	"context"
	"strings"
	"time"
)

// Default generation parameters.
const (
	DefaultModel           = "gemini-2.5-flash"
	DefaultTemperature     = float32(0.7)
	DefaultMaxOutputTokens = int32(4000)
	DefaultTimeout         = 60 * time.Second
)

// Request is a single-turn completion request.
type Request struct {
	System          string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
}

// Validate reports ErrEmptyPrompt for blank prompts.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Generator returns the model's text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Config is loaded from the environment by pkg/config.
type Config struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"60s"`
}
