package transcript_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/transcript"
)

func openStore(t *testing.T) *transcript.Store {
	t.Helper()
	s, err := transcript.Open(filepath.Join(t.TempDir(), "transcripts.bolt"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func exchange(ts time.Time) []transcript.Message {
	return []transcript.Message{
		{Role: transcript.RoleUser, Content: "hi there", Timestamp: ts},
		{Role: transcript.RoleAssistant, Content: "hello! how are you?", Timestamp: ts.Add(time.Second)},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openStore(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in := exchange(ts)

	if err := s.Save("lily", "default", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load("lily", "default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d messages, want 2", len(out))
	}
	for i := range in {
		if out[i].Role != in[i].Role || out[i].Content != in[i].Content || !out[i].Timestamp.Equal(in[i].Timestamp) {
			t.Fatalf("message %d mismatch: got %+v want %+v", i, out[i], in[i])
		}
	}
}

func TestLoad_AbsenceIsEmpty(t *testing.T) {
	s := openStore(t)

	msgs, err := s.Load("lily", "never-seen")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Fatalf("expected empty non-nil transcript, got %#v", msgs)
	}
}

func TestSave_Overwrites(t *testing.T) {
	s := openStore(t)
	ts := time.Now().UTC()

	if err := s.Save("zero", "default", exchange(ts)); err != nil {
		t.Fatalf("save: %v", err)
	}
	shorter := []transcript.Message{{Role: transcript.RoleUser, Content: "only this", Timestamp: ts}}
	if err := s.Save("zero", "default", shorter); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.Load("zero", "default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || out[0].Content != "only this" {
		t.Fatalf("save is not snapshot-overwrite: %+v", out)
	}
}

func TestClear(t *testing.T) {
	s := openStore(t)
	ts := time.Now().UTC()

	if err := s.Save("kei", "default", exchange(ts)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear("kei", "default"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, err := s.Load("kei", "default")
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty after clear, got %+v, %v", out, err)
	}

	// Clearing an absent transcript is a no-op, not an error.
	if err := s.Clear("kei", "never-seen"); err != nil {
		t.Fatalf("clear absent: %v", err)
	}
}

func TestSessions(t *testing.T) {
	s := openStore(t)
	ts := time.Now().UTC()

	for _, id := range []string{"default", "b-session", "a-session"} {
		if err := s.Save("lily", id, exchange(ts)); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	ids, err := s.Sessions("lily")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	want := []string{"a-session", "b-session", "default"}
	if len(ids) != len(want) {
		t.Fatalf("got %v want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v want %v", ids, want)
		}
	}

	none, err := s.Sessions("zero")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no sessions for unknown persona, got %v, %v", none, err)
	}
}

func TestDeletePersona(t *testing.T) {
	s := openStore(t)
	ts := time.Now().UTC()

	if err := s.Save("lily", "default", exchange(ts)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("lily", "second", exchange(ts)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeletePersona("lily"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ids, err := s.Sessions("lily")
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected no sessions after delete, got %v, %v", ids, err)
	}

	if err := s.DeletePersona("lily"); err != nil {
		t.Fatalf("deleting an absent persona should be a no-op: %v", err)
	}
}

func TestSave_ConcurrentWriters(t *testing.T) {
	s := openStore(t)
	ts := time.Now().UTC()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			session := fmt.Sprintf("session-%d", n)
			msgs := []transcript.Message{
				{Role: transcript.RoleUser, Content: fmt.Sprintf("from writer %d", n), Timestamp: ts},
			}
			if err := s.Save("lily", session, msgs); err != nil {
				t.Errorf("save %s: %v", session, err)
			}
			// Contend on a shared key as well; each write is a whole snapshot.
			if err := s.Save("lily", "shared", msgs); err != nil {
				t.Errorf("save shared from %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	ids, err := s.Sessions("lily")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(ids) != writers+1 {
		t.Fatalf("got %d sessions, want %d: %v", len(ids), writers+1, ids)
	}
	for i := 0; i < writers; i++ {
		msgs, err := s.Load("lily", fmt.Sprintf("session-%d", i))
		if err != nil || len(msgs) != 1 {
			t.Fatalf("session-%d: %v, %v", i, msgs, err)
		}
		if msgs[0].Content != fmt.Sprintf("from writer %d", i) {
			t.Fatalf("session-%d content crossed: %+v", i, msgs[0])
		}
	}

	// The contended key holds exactly one intact snapshot, never a blend.
	shared, err := s.Load("lily", "shared")
	if err != nil || len(shared) != 1 {
		t.Fatalf("shared: %v, %v", shared, err)
	}
}

func TestValidation(t *testing.T) {
	s := openStore(t)

	if _, err := s.Load("", "default"); !chaterr.IsValidation(err) {
		t.Fatalf("empty persona id: %v", err)
	}
	if err := s.Save("lily", "", nil); !chaterr.IsValidation(err) {
		t.Fatalf("empty session id: %v", err)
	}
	if _, err := s.Sessions(""); !chaterr.IsValidation(err) {
		t.Fatalf("empty persona id for sessions: %v", err)
	}

	// Persona ids outside the slug alphabet never name a real bucket.
	for _, id := range []string{"../escape", "Has Space", "UPPER"} {
		if _, err := s.Load(id, "default"); !chaterr.IsValidation(err) {
			t.Fatalf("Load(%q): %v", id, err)
		}
		if err := s.DeletePersona(id); !chaterr.IsValidation(err) {
			t.Fatalf("DeletePersona(%q): %v", id, err)
		}
	}
}
