package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/fsops"
	"github.com/ankitni/charchat/internal/safety"
)

const (
	personaDir = "personas"
	profileDir = "profiles"
	avatarDir  = "avatars"
)

// suffix attempts before Create gives up on a colliding id.
const maxSlugAttempts = 100

// Store persists personas and profiles under an absolute data root.
type Store struct {
	root string
}

// NewStore opens a store rooted at absRoot (as resolved by safety.InitDataRoot)
// and seeds the bundled sample personas and the default profile when their
// directories are empty.
func NewStore(absRoot string) (*Store, error) {
	s := &Store{root: absRoot}
	for _, dir := range []string{personaDir, profileDir, avatarDir} {
		if err := os.MkdirAll(filepath.Join(absRoot, dir), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s dir", dir)
		}
	}
	if err := s.seed(); err != nil {
		return nil, errors.Wrap(err, "seed sample records")
	}
	return s, nil
}

// List returns all personas sorted by name (ties broken by id), so the order
// is deterministic across calls.
func (s *Store) List() ([]Persona, error) {
	ids, err := fsops.ListRecords(s.root, personaDir)
	if err != nil {
		return nil, err
	}

	out := make([]Persona, 0, len(ids))
	for _, id := range ids {
		var p Persona
		if err := fsops.ReadJSON(s.root, recordPath(personaDir, id), &p); err != nil {
			// A single malformed record must not hide the rest.
			log.Warn().Err(err).Str("persona_id", id).Msg("skipping unreadable persona record")
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Get returns the persona with the given id.
func (s *Store) Get(id string) (Persona, error) {
	if err := validateID(id); err != nil {
		return Persona{}, err
	}
	var p Persona
	if err := fsops.ReadJSON(s.root, recordPath(personaDir, id), &p); err != nil {
		if os.IsNotExist(err) {
			return Persona{}, chaterr.NewNotFound("persona", id)
		}
		return Persona{}, err
	}
	return p, nil
}

// Create validates, allocates a fresh id, persists, and returns the persona.
// An empty name is a validation error; an id collision is resolved by
// suffixing (-2, -3, ...).
func (s *Store) Create(name, briefDescription, personality, backstory, avatarURL string) (Persona, error) {
	id, err := s.allocateID(name)
	if err != nil {
		return Persona{}, err
	}

	p := Persona{
		ID:               id,
		Name:             name,
		BriefDescription: briefDescription,
		Personality:      personality,
		Backstory:        backstory,
		AvatarURL:        avatarURL,
		Memories:         []string{},
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.write(p); err != nil {
		return Persona{}, err
	}
	return p, nil
}

// Update merges the provided fields into the stored persona and persists it.
// The id is never changed, even when the name is.
func (s *Store) Update(id string, f Fields) (Persona, error) {
	p, err := s.Get(id)
	if err != nil {
		return Persona{}, err
	}

	if f.Name != nil {
		if err := validateName(*f.Name); err != nil {
			return Persona{}, err
		}
		p.Name = *f.Name
	}
	if f.BriefDescription != nil {
		p.BriefDescription = *f.BriefDescription
	}
	if f.Personality != nil {
		p.Personality = *f.Personality
	}
	if f.Backstory != nil {
		p.Backstory = *f.Backstory
	}
	if f.AvatarURL != nil {
		p.AvatarURL = *f.AvatarURL
	}

	if err := s.write(p); err != nil {
		return Persona{}, err
	}
	return p, nil
}

// Delete removes the persona record. Transcripts referencing the id are left
// in place (orphaned, not deleted).
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := fsops.RemoveRecord(s.root, recordPath(personaDir, id)); err != nil {
		if os.IsNotExist(err) {
			return chaterr.NewNotFound("persona", id)
		}
		return err
	}
	return nil
}

// AddMemory appends a memory line to the persona and persists it.
func (s *Store) AddMemory(id, memory string) (Persona, error) {
	if memory == "" {
		return Persona{}, chaterr.NewValidation("memory must not be empty")
	}
	p, err := s.Get(id)
	if err != nil {
		return Persona{}, err
	}
	p.Memories = append(p.Memories, memory)
	if err := s.write(p); err != nil {
		return Persona{}, err
	}
	return p, nil
}

// RemoveMemory drops the memory at index and persists the persona.
func (s *Store) RemoveMemory(id string, index int) (Persona, error) {
	p, err := s.Get(id)
	if err != nil {
		return Persona{}, err
	}
	if index < 0 || index >= len(p.Memories) {
		return Persona{}, chaterr.NewValidation("memory index %d out of range", index)
	}
	p.Memories = append(p.Memories[:index], p.Memories[index+1:]...)
	if err := s.write(p); err != nil {
		return Persona{}, err
	}
	return p, nil
}

// AttachAvatar copies the image at srcPath into the data root's avatar
// directory and points the persona's avatar URL at the copy.
func (s *Store) AttachAvatar(id, srcPath string) (Persona, error) {
	p, err := s.Get(id)
	if err != nil {
		return Persona{}, err
	}
	dest := filepath.Join(avatarDir, p.ID+filepath.Ext(srcPath))
	abs, err := fsops.CopyAvatar(s.root, srcPath, dest)
	if err != nil {
		return Persona{}, errors.Wrap(err, "copy avatar")
	}
	p.AvatarURL = abs
	if err := s.write(p); err != nil {
		return Persona{}, err
	}
	return p, nil
}

func (s *Store) write(p Persona) error {
	return fsops.WriteJSONAtomic(s.root, recordPath(personaDir, p.ID), p)
}

func (s *Store) allocateID(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	base := Slug(name)
	if base == "" {
		return "", chaterr.NewValidation("name %q yields an empty id", name)
	}

	if !s.exists(base) {
		return base, nil
	}
	for n := 2; n <= maxSlugAttempts; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if !s.exists(id) {
			return id, nil
		}
	}
	return "", chaterr.NewDuplicate("persona", base)
}

func (s *Store) exists(id string) bool {
	var p Persona
	err := fsops.ReadJSON(s.root, recordPath(personaDir, id), &p)
	return err == nil
}

func validateName(name string) error {
	if len(name) == 0 {
		return chaterr.NewValidation("name must not be empty")
	}
	return nil
}

// validateID guards record lookups addressed by externally supplied ids:
// store-allocated ids always pass, anything outside the slug alphabet is
// rejected before a path is built from it.
func validateID(id string) error {
	if !safety.ValidRecordName(id) {
		return chaterr.NewValidation("id %q is not a valid record name", id)
	}
	return nil
}

func recordPath(dir, id string) string {
	return filepath.Join(dir, id+".json")
}
