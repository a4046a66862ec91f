package llm

import (
	"context"
	"net/http"
	"strings"

	"docflow/internal/config"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Anthropic implements Client with the official anthropic-sdk-go.
type Anthropic struct {
	client sdk.Client
}

// NewAnthropic creates a client whose HTTP calls are traced with otelhttp.
// Extra options are appended after the defaults, so they win.
func NewAnthropic(cfg config.LLMConfig, opts ...option.RequestOption) (*Anthropic, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, eris.New("llm: ANTHROPIC_API_KEY is required")
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	}
	if cfg.AnthropicURL != "" {
		base = append(base, option.WithBaseURL(cfg.AnthropicURL))
	}

	return &Anthropic{client: sdk.NewClient(append(base, opts...)...)}, nil
}

func (a *Anthropic) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var sb strings.Builder
	found := false
	for _, b := range msg.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
			found = true
		}
	}
	if !found {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

// Close is a no-op; the SDK client holds no resources of its own.
func (a *Anthropic) Close() error { return nil }
