package engine_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/ankitni/charchat/internal/engine"
	"github.com/ankitni/charchat/internal/gateway"
	"github.com/ankitni/charchat/internal/persona"
	"github.com/ankitni/charchat/internal/safety"
	"github.com/ankitni/charchat/internal/transcript"
)

// fakeGateway records every request and returns a scripted reply or error.
// When block is set, Send parks until the channel is closed, which lets tests
// overlap calls deliberately.
type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	gotMsgs [][]openai.ChatCompletionMessage
	reply   gateway.Reply
	err     error

	entered chan struct{}
	block   chan struct{}
}

func (f *fakeGateway) Send(_ context.Context, msgs []openai.ChatCompletionMessage, _ gateway.Params) (gateway.Reply, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotMsgs = append(f.gotMsgs, msgs)
	if f.err != nil {
		return gateway.Reply{}, f.err
	}
	return f.reply, nil
}

func (f *fakeGateway) set(reply gateway.Reply, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
	f.err = err
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeGateway) lastMsgs() []openai.ChatCompletionMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.gotMsgs) == 0 {
		return nil
	}
	return f.gotMsgs[len(f.gotMsgs)-1]
}

type fixture struct {
	engine      *engine.Engine
	gw          *fakeGateway
	transcripts *transcript.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root, err := safety.InitDataRoot(t.TempDir())
	require.NoError(t, err)
	personas, err := persona.NewStore(root)
	require.NoError(t, err)
	transcripts, err := transcript.Open(filepath.Join(root, "transcripts.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = transcripts.Close() })

	gw := &fakeGateway{reply: gateway.Reply{Content: "scripted reply"}}
	return &fixture{
		engine:      engine.New(personas, transcripts, gw, engine.Options{}),
		gw:          gw,
		transcripts: transcripts,
	}
}

func testParams() gateway.Params {
	return gateway.Params{Model: "deepseek/deepseek-chat", Temperature: 0.7, MaxTokens: 200}
}
