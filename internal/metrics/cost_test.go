package metrics_test

import (
	"math"
	"testing"

	"github.com/ankitni/charchat/internal/metrics"
)

func TestEstimateCost_KnownModel(t *testing.T) {
	u := metrics.Usage{PromptTokens: 700_000, CompletionTokens: 300_000, TotalTokens: 1_000_000}
	got := metrics.EstimateCost("deepseek/deepseek-chat", u)
	if math.Abs(got-0.50) > 1e-9 {
		t.Fatalf("cost = %v, want 0.50", got)
	}
}

func TestEstimateCost_UnknownModelUsesDefault(t *testing.T) {
	u := metrics.Usage{TotalTokens: 2_000_000}
	got := metrics.EstimateCost("example/unlisted-model", u)
	if math.Abs(got-2.00) > 1e-9 {
		t.Fatalf("cost = %v, want 2.00", got)
	}
}

func TestEstimateCost_ZeroUsage(t *testing.T) {
	if got := metrics.EstimateCost("openai/gpt-4o", metrics.Usage{}); got != 0 {
		t.Fatalf("cost = %v, want 0", got)
	}
}
