// Package llm sends single-turn prompts to a generative model backend.
package llm

import (
	"context"
	"strings"

	"docflow/internal/config"

	"github.com/rotisserie/eris"
)

// ErrEmptyCompletion is returned when the backend answers without any text.
var ErrEmptyCompletion = eris.New("llm: completion contained no text")

const (
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel    = "gemini-2.0-flash"
)

// CompletionRequest is one user message sent to a model.
type CompletionRequest struct {
	Model     string // empty selects the backend default
	MaxTokens int
	Prompt    string
}

// Completer returns the model's text answer for a single prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Client is a Completer holding resources that must be released.
type Client interface {
	Completer
	Close() error
}

// New builds the backend named by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "anthropic":
		a, err := NewAnthropic(cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "gemini":
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
