package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/compose"
	"github.com/ankitni/charchat/internal/gateway"
	"github.com/ankitni/charchat/internal/persona"
	"github.com/ankitni/charchat/internal/telemetry"
	"github.com/ankitni/charchat/internal/transcript"
)

// State is the session's position in the exchange cycle.
type State int

const (
	Idle State = iota
	AwaitingReply
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingReply:
		return "awaiting-reply"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// DefaultSession is the session id used until NewSession allocates a fresh one.
const DefaultSession = "default"

// DefaultContextBudget bounds the estimated prompt tokens per request.
const DefaultContextBudget = 4096

// Gateway is the slice of the model gateway the engine consumes.
type Gateway interface {
	Send(ctx context.Context, msgs []openai.ChatCompletionMessage, p gateway.Params) (gateway.Reply, error)
}

// Options tune an engine instance.
type Options struct {
	ContextBudget int
	Counter       compose.TokenCounter
	// Profile, when set, is woven into every composed system prompt.
	Profile *persona.Profile
}

// Engine owns the in-memory transcript for one active session. Independent
// sessions use independent Engine instances; they share the stores but no
// mutable state.
type Engine struct {
	personas    *persona.Store
	transcripts *transcript.Store
	gw          Gateway
	budget      int
	counter     compose.TokenCounter
	profile     *persona.Profile

	mu        sync.Mutex
	state     State
	personaID string
	sessionID string
	history   []transcript.Message
	loaded    bool
}

// New wires an engine over the given stores and gateway.
func New(personas *persona.Store, transcripts *transcript.Store, gw Gateway, opts Options) *Engine {
	budget := opts.ContextBudget
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	counter := opts.Counter
	if counter == nil {
		counter = compose.HeuristicCounter{}
	}
	return &Engine{
		personas:    personas,
		transcripts: transcripts,
		gw:          gw,
		budget:      budget,
		counter:     counter,
		profile:     opts.Profile,
		sessionID:   DefaultSession,
	}
}

// State returns the session's current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Session returns the active persona and session ids.
func (e *Engine) Session() (personaID, sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.personaID, e.sessionID
}

// History returns a snapshot of the in-memory transcript.
func (e *Engine) History() []transcript.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]transcript.Message, len(e.history))
	copy(out, e.history)
	return out
}

// SendUserMessage appends the user's message (persisting immediately),
// composes the request, invokes the gateway, and on success appends and
// persists the assistant's reply, which is returned.
//
// On gateway failure no assistant message is appended; the user's message
// stays in the persisted transcript and Retry can complete the exchange. A
// call while another send is in flight on the same engine fails with
// chaterr.ErrBusy.
func (e *Engine) SendUserMessage(ctx context.Context, personaID, text string, p gateway.Params) (string, error) {
	if !e.mu.TryLock() {
		return "", fmt.Errorf("%w: a reply is already pending for this session", chaterr.ErrBusy)
	}
	defer e.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return "", chaterr.NewValidation("message must not be empty")
	}

	char, err := e.personas.Get(personaID)
	if err != nil {
		return "", err
	}
	if err := e.ensureLoaded(personaID); err != nil {
		return "", err
	}

	e.state = AwaitingReply

	userMsg := transcript.Message{Role: transcript.RoleUser, Content: text, Timestamp: e.nextTimestamp()}
	e.history = append(e.history, userMsg)
	if err := e.persist(); err != nil {
		// Roll the append back so memory matches disk.
		e.history = e.history[:len(e.history)-1]
		e.state = Failed
		return "", errors.Wrap(err, "persist user message")
	}

	reply, err := e.exchange(ctx, char, e.history[:len(e.history)-1], text, p)
	if err != nil {
		e.state = Failed
		return "", err
	}

	e.state = Idle
	return reply, nil
}

// Retry completes an exchange whose reply previously failed: the last
// transcript entry must be an unanswered user message, which is re-sent
// without being appended again. Success appends exactly one assistant
// message.
func (e *Engine) Retry(ctx context.Context, p gateway.Params) (string, error) {
	if !e.mu.TryLock() {
		return "", fmt.Errorf("%w: a reply is already pending for this session", chaterr.ErrBusy)
	}
	defer e.mu.Unlock()

	n := len(e.history)
	if !e.loaded || n == 0 || e.history[n-1].Role != transcript.RoleUser {
		return "", chaterr.NewValidation("nothing to retry: last message is not an unanswered user message")
	}

	char, err := e.personas.Get(e.personaID)
	if err != nil {
		return "", err
	}

	e.state = AwaitingReply
	reply, err := e.exchange(ctx, char, e.history[:n-1], e.history[n-1].Content, p)
	if err != nil {
		e.state = Failed
		return "", err
	}
	e.state = Idle
	return reply, nil
}

// exchange composes, sends, and on success appends and persists the reply.
// history must exclude the user message passed as text. Callers hold the lock.
func (e *Engine) exchange(ctx context.Context, char persona.Persona, history []transcript.Message, text string, p gateway.Params) (string, error) {
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = uuid.NewString()
		ctx = telemetry.WithTurnID(ctx, turnID)
	}

	msgs, stats := compose.Compose(char, e.profile, history, text, e.budget, e.counter)
	telemetry.Emit("window_prepared", map[string]any{
		"turn_id":         turnID,
		"persona":         char.ID,
		"session":         e.sessionID,
		"model":           p.Model,
		"budget":          stats.Budget,
		"total_estimated": stats.Total,
		"included_groups": stats.IncludedGroups,
		"skipped_groups":  stats.SkippedGroups,
		"over_budget":     stats.OverBudgetBase,
	})
	telemetry.EmitMessageFeatures(ctx, string(transcript.RoleUser), text)

	reply, err := e.gw.Send(ctx, msgs, p)
	if err != nil {
		telemetry.Emit("exchange_failed", map[string]any{
			"turn_id": turnID,
			"persona": char.ID,
			"session": e.sessionID,
			"error":   err.Error(),
		})
		log.Warn().Err(err).Str("persona", char.ID).Str("session", e.sessionID).Msg("exchange failed")
		return "", errors.Wrapf(err, "persona %q session %q", char.ID, e.sessionID)
	}

	e.history = append(e.history, transcript.Message{
		Role:      transcript.RoleAssistant,
		Content:   reply.Content,
		Timestamp: e.nextTimestamp(),
	})
	if err := e.persist(); err != nil {
		e.history = e.history[:len(e.history)-1]
		return "", errors.Wrap(err, "persist assistant reply")
	}

	telemetry.Emit("reply_received", map[string]any{
		"turn_id":            turnID,
		"persona":            char.ID,
		"session":            e.sessionID,
		"model":              p.Model,
		"prompt_tokens":      reply.Usage.PromptTokens,
		"completion_tokens":  reply.Usage.CompletionTokens,
		"total_tokens":       reply.Usage.TotalTokens,
		"estimated_cost_usd": reply.EstimatedCost,
	})
	telemetry.EmitMessageFeatures(ctx, string(transcript.RoleAssistant), reply.Content)

	return reply.Content, nil
}

// NewSession switches the engine to a fresh, empty session for personaID and
// returns the new session id. Durable history of other sessions is untouched.
func (e *Engine) NewSession(personaID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.personas.Get(personaID); err != nil {
		return "", err
	}
	e.personaID = personaID
	e.sessionID = uuid.NewString()
	e.history = []transcript.Message{}
	e.loaded = true
	e.state = Idle
	return e.sessionID, nil
}

// Resume loads an existing session for personaID into memory.
func (e *Engine) Resume(personaID, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.personas.Get(personaID); err != nil {
		return err
	}
	msgs, err := e.transcripts.Load(personaID, sessionID)
	if err != nil {
		return err
	}
	e.personaID = personaID
	e.sessionID = sessionID
	e.history = msgs
	e.loaded = true
	e.state = Idle
	return nil
}

// ClearHistory truncates the active session's durable transcript to empty.
func (e *Engine) ClearHistory() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.personaID == "" {
		return chaterr.NewValidation("no active session")
	}
	if err := e.transcripts.Clear(e.personaID, e.sessionID); err != nil {
		return err
	}
	e.history = []transcript.Message{}
	return nil
}

// ensureLoaded pulls the durable transcript into memory when the engine is
// not already holding this persona's active session. Switching personas
// implicitly resumes their default session.
func (e *Engine) ensureLoaded(personaID string) error {
	if e.loaded && personaID == e.personaID {
		return nil
	}
	if personaID != e.personaID {
		e.sessionID = DefaultSession
	}
	msgs, err := e.transcripts.Load(personaID, e.sessionID)
	if err != nil {
		return err
	}
	e.personaID = personaID
	e.history = msgs
	e.loaded = true
	return nil
}

func (e *Engine) persist() error {
	return e.transcripts.Save(e.personaID, e.sessionID, e.history)
}

// nextTimestamp keeps transcript timestamps monotonically non-decreasing
// even if the wall clock steps backwards.
func (e *Engine) nextTimestamp() time.Time {
	ts := time.Now().UTC()
	if n := len(e.history); n > 0 && ts.Before(e.history[n-1].Timestamp) {
		ts = e.history[n-1].Timestamp
	}
	return ts
}
