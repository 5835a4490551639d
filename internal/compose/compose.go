package compose

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/ankitni/charchat/internal/persona"
	"github.com/ankitni/charchat/internal/transcript"
)

// Compose produces the ordered, role-tagged sequence submitted to a model:
// one leading system message synthesized from the persona (and profile),
// the windowed history in chronological order, then the new user message.
//
// An empty history composes to exactly [system, user].
func Compose(
	p persona.Persona,
	profile *persona.Profile,
	history []transcript.Message,
	userText string,
	budget int,
	c TokenCounter,
) ([]openai.ChatCompletionMessage, Stats) {
	system := SystemPrompt(p, profile)
	reserved := c.CountMessage(transcript.Message{Content: system}) +
		c.CountMessage(transcript.Message{Role: transcript.RoleUser, Content: userText})

	window, stats := windowHistory(history, reserved, budget, c)

	msgs := make([]openai.ChatCompletionMessage, 0, len(window)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range window {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    roleFor(m.Role),
			Content: m.Content,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})
	return msgs, stats
}

func roleFor(r transcript.Role) string {
	if r == transcript.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
