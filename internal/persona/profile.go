package persona

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/fsops"
)

// Profile describes the human side of a conversation. When selected, its
// fields are woven into the composed system prompt so the persona knows who
// it is talking to.
type Profile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age,omitempty"`
	Background     string    `json:"background,omitempty"`
	Backstory      string    `json:"backstory,omitempty"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profiles returns all stored profiles sorted by name.
func (s *Store) Profiles() ([]Profile, error) {
	ids, err := fsops.ListRecords(s.root, profileDir)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		var p Profile
		if err := fsops.ReadJSON(s.root, recordPath(profileDir, id), &p); err != nil {
			log.Warn().Err(err).Str("profile_id", id).Msg("skipping unreadable profile record")
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetProfile returns the profile with the given id.
func (s *Store) GetProfile(id string) (Profile, error) {
	if err := validateID(id); err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := fsops.ReadJSON(s.root, recordPath(profileDir, id), &p); err != nil {
		if os.IsNotExist(err) {
			return Profile{}, chaterr.NewNotFound("profile", id)
		}
		return Profile{}, err
	}
	return p, nil
}

// SaveProfile creates or overwrites a profile record. The id derives from
// the name; saving under an existing name replaces that profile.
func (s *Store) SaveProfile(p Profile) (Profile, error) {
	if err := validateName(p.Name); err != nil {
		return Profile{}, err
	}
	if p.ID == "" {
		p.ID = Slug(p.Name)
	}
	if p.ID == "" {
		return Profile{}, chaterr.NewValidation("name %q yields an empty id", p.Name)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := s.writeProfile(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// DeleteProfile removes a profile record.
func (s *Store) DeleteProfile(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := fsops.RemoveRecord(s.root, recordPath(profileDir, id)); err != nil {
		if os.IsNotExist(err) {
			return chaterr.NewNotFound("profile", id)
		}
		return err
	}
	return nil
}

func (s *Store) writeProfile(p Profile) error {
	return fsops.WriteJSONAtomic(s.root, filepath.Join(profileDir, p.ID+".json"), p)
}
