// Package gateway submits composed message sequences to hosted models
// through OpenRouter's OpenAI-compatible chat completion API.
//
// The gateway is stateless across calls: no session state is retained beyond
// standard HTTP connection reuse. It performs no retries; failures are mapped
// into the chaterr taxonomy with enough structure (kind, status, provider
// message) for the caller to decide.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/metrics"
)

// DefaultBaseURL is OpenRouter's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Config carries everything the gateway needs; it is constructed once at
// process start and passed in, never read from the environment here.
type Config struct {
	APIKey  string
	BaseURL string
	// Attribution headers OpenRouter uses to credit the calling app.
	AppURL   string
	AppTitle string
}

// Params are the session-scoped sampling parameters supplied fresh on each
// request.
type Params struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

func (p Params) validate() error {
	if p.Model == "" {
		return chaterr.NewValidation("model id must not be empty")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return chaterr.NewValidation("temperature %v outside [0, 2]", p.Temperature)
	}
	if p.MaxTokens <= 0 {
		return chaterr.NewValidation("max_tokens %d must be positive", p.MaxTokens)
	}
	return nil
}

// Reply is the normalized result of a successful exchange.
type Reply struct {
	Content       string
	Usage         metrics.Usage
	EstimatedCost float64
}

// Client is the boundary component performing the model request/response
// exchange.
type Client struct {
	api    *openai.Client
	apiKey string
}

// New builds a gateway client for the configured backend.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = base
	oc.HTTPClient = &http.Client{
		Transport: attributionTransport{appURL: cfg.AppURL, appTitle: cfg.AppTitle},
	}
	return &Client{api: openai.NewClientWithConfig(oc), apiKey: cfg.APIKey}
}

// Send submits the message sequence and returns the assistant's reply.
// Input constraints are checked before any network call.
func (c *Client) Send(ctx context.Context, msgs []openai.ChatCompletionMessage, p Params) (Reply, error) {
	if len(msgs) == 0 {
		return Reply{}, chaterr.NewValidation("message sequence must not be empty")
	}
	if c.apiKey == "" {
		return Reply{}, chaterr.NewValidation("api key must not be empty")
	}
	if err := p.validate(); err != nil {
		return Reply{}, err
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.Model,
		Messages:    msgs,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return Reply{}, mapError(err)
	}

	if len(resp.Choices) == 0 {
		return Reply{}, fmt.Errorf("%w: response carried no choices", chaterr.ErrProtocol)
	}

	usage := metrics.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	log.Debug().
		Str("model", p.Model).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Msg("chat completion succeeded")

	return Reply{
		Content:       resp.Choices[0].Message.Content,
		Usage:         usage,
		EstimatedCost: metrics.EstimateCost(p.Model, usage),
	}, nil
}

// mapError classifies transport, provider, and protocol failures.
func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &chaterr.ProviderError{
			Status:      apiErr.HTTPStatusCode,
			Code:        codeString(apiErr.Code),
			Message:     apiErr.Message,
			RateLimited: apiErr.HTTPStatusCode == http.StatusTooManyRequests,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode > 0 {
			return &chaterr.ProviderError{
				Status:      reqErr.HTTPStatusCode,
				Message:     reqErr.Error(),
				RateLimited: reqErr.HTTPStatusCode == http.StatusTooManyRequests,
			}
		}
		return fmt.Errorf("%w: %v", chaterr.ErrTransport, reqErr)
	}

	// Everything else is a network-level failure: connection refused, DNS,
	// context timeout or cancellation.
	return fmt.Errorf("%w: %v", chaterr.ErrTransport, err)
}

func codeString(code any) string {
	if code == nil {
		return ""
	}
	if s, ok := code.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", code)
}

// attributionTransport adds the OpenRouter attribution headers to every
// request.
type attributionTransport struct {
	appURL   string
	appTitle string
}

func (t attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.appURL != "" {
		req.Header.Set("HTTP-Referer", t.appURL)
	}
	if t.appTitle != "" {
		req.Header.Set("X-Title", t.appTitle)
	}
	return http.DefaultTransport.RoundTrip(req)
}
