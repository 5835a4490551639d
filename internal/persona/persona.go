// Package persona stores AI persona definitions and user profiles as JSON
// records under the data root.
//
// Record model:
//   - One file per persona: personas/{id}.json. The id is a slug derived from
//     the name at creation time and never changes afterwards, so renaming a
//     persona keeps its id (and any transcripts keyed by it).
//   - Colliding ids are disambiguated with a numeric suffix (lily, lily-2, ...).
//   - Every mutation writes through to disk before returning.
package persona

import (
	"strings"
	"time"
)

// Persona is a named AI character definition used to frame conversations.
type Persona struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	BriefDescription string    `json:"brief_description,omitempty"`
	Personality      string    `json:"personality"`
	Backstory        string    `json:"backstory"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Memories         []string  `json:"memories"`
	CreatedAt        time.Time `json:"created_at"`
}

// Fields carries the optional values an Update merges into a persona.
// Nil pointers leave the current value untouched.
type Fields struct {
	Name             *string
	BriefDescription *string
	Personality      *string
	Backstory        *string
	AvatarURL        *string
}

// Slug derives a stable record id from a display name: lowercased, spaces
// collapsed to underscores, anything outside [a-z0-9_-] dropped.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return b.String()
}
