package genai

import "errors"

// Generation errors. Provider failures are joined with the underlying error
// so logs keep the detail while callers match on these values.
var (
	ErrAPIKeyRequired       = errors.New("generative AI API key is required")
	ErrEmptyPrompt          = errors.New("prompt cannot be empty")
	ErrGenerationFailed     = errors.New("text generation failed")
	ErrEmptyCompletion      = errors.New("model returned no text")
	ErrRateLimitExceeded    = errors.New("generative AI rate limit exceeded")
	ErrGenerationTimeout    = errors.New("text generation timed out")
	ErrProviderUnauthorized = errors.New("generative AI credentials rejected")
)
