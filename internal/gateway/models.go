package gateway

import (
	"context"

	"github.com/ankitni/charchat/internal/chaterr"
)

// ModelInfo describes a selectable backend model.
type ModelInfo struct {
	ID   string
	Name string
	Cost string
}

// DefaultModel is used when the caller selects nothing.
const DefaultModel = "deepseek/deepseek-chat"

// Catalog returns the bundled model set with approximate pricing. The remote
// listing (Models) is authoritative; this set works offline.
func Catalog() []ModelInfo {
	return []ModelInfo{
		{ID: "deepseek/deepseek-chat", Name: "DeepSeek Chat", Cost: "$0.50 / 1M tokens"},
		{ID: "openai/gpt-4o", Name: "GPT-4o", Cost: "$5.00 / 1M tokens"},
		{ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", Cost: "$0.80 / 1M tokens"},
		{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Cost: "$3.00 / 1M tokens"},
		{ID: "mistralai/mistral-7b-instruct", Name: "Mistral 7B", Cost: "$0.20 / 1M tokens"},
		{ID: "meta-llama/llama-3.1-8b-instruct", Name: "Llama 3.1 8B", Cost: "$0.20 / 1M tokens"},
	}
}

// Models fetches the backend's model listing.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	if c.apiKey == "" {
		return nil, chaterr.NewValidation("api key must not be empty")
	}
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, ModelInfo{ID: m.ID, Name: m.ID})
	}
	return out, nil
}

// ValidateKey reports whether the configured API key is accepted by the
// backend, using the model listing as a cheap probe.
func (c *Client) ValidateKey(ctx context.Context) bool {
	if c.apiKey == "" {
		return false
	}
	_, err := c.Models(ctx)
	return err == nil
}
