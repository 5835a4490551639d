package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/engine"
	"github.com/ankitni/charchat/internal/gateway"
	"github.com/ankitni/charchat/internal/persona"
)

var (
	chatModel       string
	chatTemperature float32
	chatMaxTokens   int
	chatProfile     string
	chatSession     string
)

var chatCmd = &cobra.Command{
	Use:   "chat <persona-id>",
	Short: "Start an interactive chat session with a persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		return runChat(a, args[0])
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "model id (defaults to the configured model)")
	chatCmd.Flags().Float32VarP(&chatTemperature, "temperature", "t", -1, "sampling temperature (0..2)")
	chatCmd.Flags().IntVar(&chatMaxTokens, "max-tokens", 0, "reply token limit")
	chatCmd.Flags().StringVar(&chatProfile, "profile", "", "user profile id for the system prompt")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "resume a specific session id")
	rootCmd.AddCommand(chatCmd)
}

func runChat(a *app, personaID string) error {
	char, err := a.personas.Get(personaID)
	if err != nil {
		return err
	}

	var profile *persona.Profile
	if chatProfile != "" {
		p, err := a.personas.GetProfile(chatProfile)
		if err != nil {
			return err
		}
		profile = &p
	}

	eng := engine.New(a.personas, a.transcripts, a.gw, engine.Options{
		ContextBudget: a.cfg.ContextBudget,
		Profile:       profile,
	})
	if chatSession != "" {
		if err := eng.Resume(personaID, chatSession); err != nil {
			return err
		}
	}

	params := chatParams(a)

	you := color.New(color.FgCyan, color.Bold)
	them := color.New(color.FgYellow, color.Bold)
	fmt.Printf("chatting with %s (%s) — /new, /retry, /clear, /history, exit\n", char.Name, params.Model)

	s := spinner.New(spinner.CharSets[19], 100*time.Millisecond)
	s.Prefix = "  "

	reader := bufio.NewReader(os.Stdin)
	for {
		you.Print("\nYou: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			fmt.Println("chat ended")
			return nil
		case line == "/new":
			id, err := eng.NewSession(personaID)
			if err != nil {
				return err
			}
			fmt.Printf("started session %s\n", id)
			continue
		case line == "/clear":
			if err := eng.ClearHistory(); err != nil {
				fmt.Fprintf(os.Stderr, "clear: %v\n", err)
			} else {
				fmt.Println("history cleared")
			}
			continue
		case line == "/history":
			for _, m := range eng.History() {
				fmt.Printf("[%s] %s\n", m.Role, m.Content)
			}
			continue
		case line == "/retry":
			s.Start()
			reply, err := eng.Retry(context.Background(), params)
			s.Stop()
			if err != nil {
				renderError(err)
				continue
			}
			them.Printf("%s: ", char.Name)
			fmt.Println(reply)
			continue
		}

		s.Start()
		reply, err := eng.SendUserMessage(context.Background(), personaID, line, params)
		s.Stop()
		if err != nil {
			renderError(err)
			continue
		}
		them.Printf("%s: ", char.Name)
		fmt.Println(reply)
	}
}

func chatParams(a *app) gateway.Params {
	p := gateway.Params{
		Model:       a.cfg.DefaultModel,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}
	if chatModel != "" {
		p.Model = chatModel
	}
	if chatTemperature >= 0 {
		p.Temperature = chatTemperature
	}
	if chatMaxTokens > 0 {
		p.MaxTokens = chatMaxTokens
	}
	return p
}

// renderError shows a precise, non-destructive failure message; the user's
// message is already persisted, so /retry can complete the exchange.
func renderError(err error) {
	red := color.New(color.FgRed)
	switch {
	case chaterr.IsBusy(err):
		red.Fprintln(os.Stderr, "still waiting on the previous reply")
	case chaterr.Retryable(err):
		red.Fprintf(os.Stderr, "temporary failure: %v\n(your message was saved — /retry to try again)\n", err)
	default:
		red.Fprintf(os.Stderr, "error: %v\n", err)
	}
}
