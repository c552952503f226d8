package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "google.golang.org/genai"
)

// Gemini implements Generator with the Gemini API.
type Gemini struct {
	client  *sdk.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini-backed Generator.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}

	client, err := sdk.NewClient(ctx, &sdk.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: sdk.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}

	g := &Gemini{client: client, model: cfg.Model, timeout: cfg.Timeout}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	return g, nil
}

// Generate sends one prompt with an optional system instruction and
// returns the concatenated text parts of the first candidate.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, sdk.Text(req.Prompt), g.contentConfig(req))
	if err != nil {
		return "", classify(ctx, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (g *Gemini) contentConfig(req Request) *sdk.GenerateContentConfig {
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxOutputTokens
	}

	cfg := &sdk.GenerateContentConfig{
		Temperature:     sdk.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	}
	if req.System != "" {
		cfg.SystemInstruction = sdk.NewContentFromText(req.System, sdk.RoleUser)
	}
	return cfg
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrGenerationTimeout, err)
	}

	var apiErr sdk.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return errors.Join(ErrRateLimitExceeded, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Join(ErrProviderUnauthorized, err)
		}
	}
	return errors.Join(ErrGenerationFailed, err)
}
