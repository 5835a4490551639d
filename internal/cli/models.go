package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ankitni/charchat/internal/gateway"
)

var (
	modelsRemote   bool
	modelsCheckKey bool
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List selectable models",
	RunE: func(cmd *cobra.Command, args []string) error {
		if modelsCheckKey {
			a, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			fmt.Println(keyStatus(ctx, a.gw))
			return nil
		}

		if !modelsRemote {
			for _, m := range gateway.Catalog() {
				fmt.Printf("%-36s %-20s %s\n", m.ID, m.Name, m.Cost)
			}
			return nil
		}

		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		models, err := a.gw.Models(ctx)
		if err != nil {
			return err
		}
		for _, m := range models {
			fmt.Println(m.ID)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <persona-id>",
	Short: "List recorded sessions for a persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		sessions, err := a.transcripts.Sessions(args[0])
		if err != nil {
			return err
		}
		for _, id := range sessions {
			msgs, err := a.transcripts.Load(args[0], id)
			if err != nil {
				return err
			}
			fmt.Printf("%s  (%d messages)\n", id, len(msgs))
		}
		return nil
	},
}

// keyStatus probes the backend with the configured key and renders the result.
func keyStatus(ctx context.Context, gw *gateway.Client) string {
	if gw.ValidateKey(ctx) {
		return "api key: valid"
	}
	return "api key: missing or rejected"
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsRemote, "remote", false, "query the backend instead of the bundled catalog")
	modelsCmd.Flags().BoolVar(&modelsCheckKey, "check-key", false, "probe the backend with the configured api key")
	rootCmd.AddCommand(modelsCmd, historyCmd)
}
