// Package compose builds the model-facing message sequence from a persona,
// the conversation history, and the new user input.
//
// Compose is a pure function: identical inputs always yield the identical
// sequence, nothing is mutated, and no IO happens. The context-window policy
// lives in window.go.
package compose

import (
	"fmt"
	"strings"

	"github.com/ankitni/charchat/internal/persona"
)

// SystemPrompt synthesizes the single leading system message from persona
// fields, persona memories, and (optionally) the active user profile. The
// framing instructs the model to roleplay as the persona and stay in
// character.
func SystemPrompt(p persona.Persona, profile *persona.Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s. ", p.Name)
	if p.Personality != "" {
		fmt.Fprintf(&b, "Your personality is: %s ", p.Personality)
	}
	if p.Backstory != "" {
		fmt.Fprintf(&b, "Your backstory is: %s ", p.Backstory)
	}

	if len(p.Memories) > 0 {
		b.WriteString("\n\nYou have the following memories (important things to remember):\n")
		for _, m := range p.Memories {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}

	if profile != nil {
		b.WriteString("\n\nInformation about the user you're talking to:\n")
		fmt.Fprintf(&b, "Name: %s\n", profile.Name)
		if profile.Age > 0 {
			fmt.Fprintf(&b, "Age: %d\n", profile.Age)
		}
		if profile.Background != "" {
			fmt.Fprintf(&b, "Background: %s\n", profile.Background)
		}
		if profile.Backstory != "" {
			fmt.Fprintf(&b, "Backstory: %s\n", profile.Backstory)
		}
		if profile.AdditionalInfo != "" {
			fmt.Fprintf(&b, "Additional Information: %s\n", profile.AdditionalInfo)
		}
	}

	b.WriteString("\n\nPlease respond to the user's messages in character, maintaining your unique personality and backstory. Be engaging, creative, and consistent with who you are.")
	return b.String()
}
