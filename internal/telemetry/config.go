package telemetry

import (
	"os"
)

var observeEnabled bool

func init() {
	// Read once at process start. Mid-run environment changes have no effect;
	// Configure is the only way to flip emission afterwards.
	observeEnabled = os.Getenv("CHARCHAT_OBSERVE_JSON") == "1"
}

// ObserveEnabled reports whether JSONL emission is on, considering the
// startup-evaluated default and any later Configure call.
func ObserveEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return observeEnabled
}
