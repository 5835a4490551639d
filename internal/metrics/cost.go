package metrics

// Usage is the token accounting a completed exchange reports.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Approximate price per one million tokens, in USD. Actual billing varies;
// these match the rates the bundled model catalog advertises.
var costPerMillionTokens = map[string]float64{
	"deepseek/deepseek-chat":           0.50,
	"openai/gpt-4o":                    5.00,
	"openai/gpt-4o-mini":               0.80,
	"anthropic/claude-3.5-sonnet":      3.00,
	"mistralai/mistral-7b-instruct":    0.20,
	"meta-llama/llama-3.1-8b-instruct": 0.20,
}

// defaultCostPerMillion is charged for models missing from the table.
const defaultCostPerMillion = 1.00

// EstimateCost returns the approximate USD cost of an exchange on the given
// model. Unknown models fall back to a conservative default rate.
func EstimateCost(model string, u Usage) float64 {
	rate, ok := costPerMillionTokens[model]
	if !ok {
		rate = defaultCostPerMillion
	}
	return float64(u.TotalTokens) / 1_000_000 * rate
}
