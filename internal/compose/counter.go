package compose

import (
	"unicode/utf8"

	"github.com/ankitni/charchat/internal/transcript"
)

// TokenCounter estimates input-token cost for prompt text and history
// messages. Estimates only need to be deterministic and roughly proportional
// to real tokenizer output; the budget carries the slack.
type TokenCounter interface {
	CountText(s string) int
	CountMessage(m transcript.Message) int
}

// HeuristicCounter is the default deterministic estimator.
// Rules:
//   - text cost: rune count divided by 4, rounded up (≈ 4 chars per token).
//   - each message adds a fixed overhead for role tagging and formatting.
type HeuristicCounter struct{}

// Fixed per-message overhead; changing this requires updating the guard test.
const messageOverhead = 4

func (HeuristicCounter) CountText(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + 3) / 4
}

func (h HeuristicCounter) CountMessage(m transcript.Message) int {
	return h.CountText(m.Content) + messageOverhead
}

var _ TokenCounter = HeuristicCounter{}
