package compose_test

import (
	"time"

	"github.com/ankitni/charchat/internal/transcript"
)

// flatCounter charges a fixed cost per message regardless of content, which
// keeps windowing arithmetic readable in tests.
type flatCounter struct {
	perMessage int
}

func (c flatCounter) CountText(s string) int                { return len(s) }
func (c flatCounter) CountMessage(_ transcript.Message) int { return c.perMessage }

func turn(role transcript.Role, content string, sec int) transcript.Message {
	return transcript.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC),
	}
}

// pairs builds n complete user/assistant exchanges with numbered contents
// ("u0", "a0", "u1", ...).
func pairs(n int) []transcript.Message {
	msgs := make([]transcript.Message, 0, 2*n)
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			turn(transcript.RoleUser, "u"+string(rune('0'+i)), 2*i),
			turn(transcript.RoleAssistant, "a"+string(rune('0'+i)), 2*i+1),
		)
	}
	return msgs
}
