// Package telemetry emits structured chat-exchange events as JSON lines.
//
// Events cover one exchange each: window preparation, the completed reply
// (token usage and estimated cost), and failures. Emission is off unless
// enabled via CHARCHAT_OBSERVE_JSON=1 or Configure.
package telemetry

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	sink    *zerolog.Logger
	sinkDir = ".charchat"
)

// Configure sets the directory that receives events.jsonl and whether
// emission is enabled. Call once at process start, before any Emit.
func Configure(dir string, enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if dir != "" {
		sinkDir = dir
	}
	observeEnabled = enabled
	sink = nil
}

// Emit writes a single JSON line to events.jsonl when observation is on.
// Each line carries a timestamp and the event name.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if sink == nil {
		l, err := openSink()
		if err != nil {
			// Telemetry must never break the chat loop.
			return
		}
		sink = l
	}
	sink.Log().Fields(fields).Str("event", name).Send()
}

func openSink() (*zerolog.Logger, error) {
	if err := os.MkdirAll(sinkDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(sinkDir, "events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	l := zerolog.New(f).With().Timestamp().Logger()
	return &l, nil
}
