// Package cli is the presentation layer: cobra commands that call the
// engine and stores and render the results. No persona or transcript logic
// lives here.
package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ankitni/charchat/internal/config"
	"github.com/ankitni/charchat/internal/gateway"
	"github.com/ankitni/charchat/internal/persona"
	"github.com/ankitni/charchat/internal/safety"
	"github.com/ankitni/charchat/internal/telemetry"
	"github.com/ankitni/charchat/internal/transcript"
)

var rootCmd = &cobra.Command{
	Use:   "charchat",
	Short: "Chat with AI personas through OpenRouter",
	Long: `charchat lets you define AI personas and hold multi-turn conversations
with them, routed to one of several hosted models through OpenRouter.
Personas and transcripts persist under the data directory across runs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles everything the commands need.
type app struct {
	cfg         *config.Config
	personas    *persona.Store
	transcripts *transcript.Store
	gw          *gateway.Client
}

// setup loads configuration, opens the stores, and configures logging and
// telemetry. The returned cleanup closes the transcript database.
func setup() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	root, err := safety.InitDataRoot(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	telemetry.Configure(root, cfg.Observe)

	personas, err := persona.NewStore(root)
	if err != nil {
		return nil, nil, err
	}
	transcripts, err := transcript.Open(filepath.Join(root, "transcripts.bolt"))
	if err != nil {
		return nil, nil, err
	}

	gw := gateway.New(gateway.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		AppURL:   "https://github.com/ankitni/charchat",
		AppTitle: "charchat",
	})

	cleanup := func() { _ = transcripts.Close() }
	return &app{cfg: cfg, personas: personas, transcripts: transcripts, gw: gw}, cleanup, nil
}
