package telemetry

import (
	"context"

	"github.com/ankitni/charchat/internal/metrics"
)

// EmitMessageFeatures records local text features of an exchanged message.
// role is the message's role ("user" or "assistant").
func EmitMessageFeatures(ctx context.Context, role, text string) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	f := metrics.CountFeatures(text)
	Emit("message_features", map[string]any{
		"turn_id": turnID,
		"role":    role,
		"bytes":   f.Bytes,
		"runes":   f.Runes,
		"words":   f.Words,
		"lines":   f.Lines,
	})
}
