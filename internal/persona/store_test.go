package persona_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/persona"
	"github.com/ankitni/charchat/internal/safety"
)

func newStore(t *testing.T) (*persona.Store, string) {
	t.Helper()
	root, err := safety.InitDataRoot(t.TempDir())
	require.NoError(t, err)
	s, err := persona.NewStore(root)
	require.NoError(t, err)
	return s, root
}

func TestNewStore_SeedsSamples(t *testing.T) {
	s, _ := newStore(t)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Kei", list[0].Name)
	assert.Equal(t, "Lily", list[1].Name)
	assert.Equal(t, "Zero", list[2].Name)

	profiles, err := s.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "default", profiles[0].ID)
}

func TestNewStore_SeedsOnlyOnce(t *testing.T) {
	s, root := newStore(t)
	require.NoError(t, s.Delete("zero"))

	reopened, err := persona.NewStore(root)
	require.NoError(t, err)
	list, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, list, 2, "reopening a non-empty store must not re-seed")
}

func TestCreate_AllocatesSlugID(t *testing.T) {
	s, _ := newStore(t)

	p, err := s.Create("Nova Sparks", "brief", "warm", "a lighthouse keeper", "")
	require.NoError(t, err)
	assert.Equal(t, "nova_sparks", p.ID)
	assert.NotNil(t, p.Memories)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.Get("nova_sparks")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
}

func TestCreate_DuplicateNameGetsSuffix(t *testing.T) {
	s, _ := newStore(t)

	p, err := s.Create("Lily", "", "bubbly", "another lily entirely", "")
	require.NoError(t, err)
	assert.Equal(t, "lily-2", p.ID)

	p3, err := s.Create("Lily", "", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "lily-3", p3.ID)
}

func TestCreate_RejectsBadNames(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Create("", "", "", "", "")
	assert.True(t, chaterr.IsValidation(err), "empty name: %v", err)

	_, err = s.Create("!!!", "", "", "", "")
	assert.True(t, chaterr.IsValidation(err), "slug-less name: %v", err)
}

func TestGet_MissingIsNotFound(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Get("nobody")
	assert.True(t, chaterr.IsNotFound(err), "got %v", err)
}

func TestIDsOutsideSlugAlphabetAreRejected(t *testing.T) {
	s, _ := newStore(t)

	for _, id := range []string{"", "../lily", "Has Space", "UPPER"} {
		_, err := s.Get(id)
		assert.True(t, chaterr.IsValidation(err), "Get(%q): %v", id, err)
		assert.True(t, chaterr.IsValidation(s.Delete(id)), "Delete(%q)", id)
		_, err = s.GetProfile(id)
		assert.True(t, chaterr.IsValidation(err), "GetProfile(%q): %v", id, err)
	}
}

func TestUpdate_MergesAndKeepsID(t *testing.T) {
	s, _ := newStore(t)

	name := "Lily Renamed"
	backstory := "rewritten"
	p, err := s.Update("lily", persona.Fields{Name: &name, Backstory: &backstory})
	require.NoError(t, err)

	assert.Equal(t, "lily", p.ID, "rename must not change the id")
	assert.Equal(t, "Lily Renamed", p.Name)
	assert.Equal(t, "rewritten", p.Backstory)
	assert.NotEmpty(t, p.Personality, "untouched fields survive the merge")
}

func TestUpdate_MissingIsNotFound(t *testing.T) {
	s, _ := newStore(t)
	name := "Ghost"
	_, err := s.Update("ghost", persona.Fields{Name: &name})
	assert.True(t, chaterr.IsNotFound(err), "got %v", err)
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.Delete("kei"))
	_, err := s.Get("kei")
	assert.True(t, chaterr.IsNotFound(err), "got %v", err)

	err = s.Delete("kei")
	assert.True(t, chaterr.IsNotFound(err), "second delete: %v", err)
}

func TestMemories_AddRemove(t *testing.T) {
	s, _ := newStore(t)

	p, err := s.AddMemory("zero", "the user prefers short answers")
	require.NoError(t, err)
	require.Equal(t, []string{"the user prefers short answers"}, p.Memories)

	// Persisted, not just in the returned value.
	got, err := s.Get("zero")
	require.NoError(t, err)
	require.Len(t, got.Memories, 1)

	p, err = s.RemoveMemory("zero", 0)
	require.NoError(t, err)
	assert.Empty(t, p.Memories)

	_, err = s.RemoveMemory("zero", 5)
	assert.True(t, chaterr.IsValidation(err), "out-of-range index: %v", err)

	_, err = s.AddMemory("zero", "")
	assert.True(t, chaterr.IsValidation(err), "empty memory: %v", err)
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Lily":         "lily",
		"Nova Sparks":  "nova_sparks",
		"  Padded  ":   "padded",
		"Héllo Wörld":  "hllo_wrld",
		"already_ok-1": "already_ok-1",
		"!!!":          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, persona.Slug(in), "Slug(%q)", in)
	}
}
