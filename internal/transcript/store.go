package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/safety"
)

// Store owns the durable copy of every transcript.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the transcript database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create transcript dir")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open transcript db")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Load returns the persisted transcript for (personaID, sessionID), or an
// empty transcript when none exists yet.
func (s *Store) Load(personaID, sessionID string) ([]Message, error) {
	if err := validateKey(personaID, sessionID); err != nil {
		return nil, err
	}
	var msgs []Message
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(personaID))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(sessionID))
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, &msgs)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load transcript %s/%s", personaID, sessionID)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// Save overwrites the durable record for (personaID, sessionID) with the
// given ordered message sequence as one atomic snapshot.
func (s *Store) Save(personaID, sessionID string, msgs []Message) error {
	if err := validateKey(personaID, sessionID); err != nil {
		return err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	enc, err := json.Marshal(msgs)
	if err != nil {
		return errors.Wrap(err, "encode transcript")
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(personaID))
		if err != nil {
			return err
		}
		return b.Put([]byte(sessionID), enc)
	})
	return errors.Wrapf(err, "save transcript %s/%s", personaID, sessionID)
}

// Clear resets the durable transcript for (personaID, sessionID) to empty.
func (s *Store) Clear(personaID, sessionID string) error {
	if err := validateKey(personaID, sessionID); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(personaID))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(sessionID))
	})
	return errors.Wrapf(err, "clear transcript %s/%s", personaID, sessionID)
}

// Sessions lists the session ids recorded for a persona, sorted.
func (s *Store) Sessions(personaID string) ([]string, error) {
	if !safety.ValidRecordName(personaID) {
		return nil, chaterr.NewValidation("persona id %q is not a valid record name", personaID)
	}
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(personaID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list sessions for %s", personaID)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeletePersona drops every session recorded for a persona. Used when the
// caller explicitly wants the history gone; deleting a persona record alone
// leaves its transcripts orphaned.
func (s *Store) DeletePersona(personaID string) error {
	if !safety.ValidRecordName(personaID) {
		return chaterr.NewValidation("persona id %q is not a valid record name", personaID)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(personaID)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(personaID))
	})
	return errors.Wrapf(err, "delete transcripts for %s", personaID)
}

func validateKey(personaID, sessionID string) error {
	// Persona ids are slugs; anything outside the slug alphabet never names
	// a real bucket and is rejected up front.
	if !safety.ValidRecordName(personaID) {
		return chaterr.NewValidation("persona id %q is not a valid record name", personaID)
	}
	if sessionID == "" {
		return chaterr.NewValidation("session id must not be empty")
	}
	return nil
}
