// Package ledger persists the append-only transaction history, one JSON
// document per identity, plus the shared identity directory.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/logging"
)

// Store owns the per-identity ledger documents. Appends rewrite the whole
// document through a temp file and rename, so a failed write never corrupts
// the previously durable state. A per-identity mutex serializes appends and
// exports for the same identity; different identities do not contend.
type Store struct {
	dir string
	log *logging.Logger

	mu    sync.Mutex
	locks map[domain.Identity]*sync.Mutex
}

// NewStore creates the data directory if needed and returns a store over it.
func NewStore(dir string, log *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{
		dir:   dir,
		log:   log.Sub("ledger"),
		locks: make(map[domain.Identity]*sync.Mutex),
	}, nil
}

// lock returns the mutex guarding one identity's document.
func (s *Store) lock(id domain.Identity) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Append adds one record to an identity's history. The record is validated
// first; histories are never edited in place.
func (s *Store) Append(id domain.Identity, rec domain.TransactionRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	history, err := s.read(id)
	if err != nil {
		return err
	}
	history = append(history, rec)

	if err := writeJSON(s.path(id), history); err != nil {
		return fmt.Errorf("writing ledger for %s: %w", id, err)
	}

	s.log.Info().
		Str("identity", string(id)).
		Str("record", rec.ID).
		Str("kind", string(rec.Kind)).
		Int("records", len(history)).
		Msg("record appended")
	return nil
}

// Read returns the ordered history for an identity. A missing document is
// an empty history, not an error.
func (s *Store) Read(id domain.Identity) (domain.History, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()
	return s.read(id)
}

func (s *Store) read(id domain.Identity) (domain.History, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.History{}, nil
		}
		return nil, fmt.Errorf("reading ledger for %s: %w", id, err)
	}

	var history domain.History
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("parsing ledger for %s: %w", id, err)
	}
	return history, nil
}

func (s *Store) path(id domain.Identity) string {
	return filepath.Join(s.dir, "ledger_"+sanitizeID(id)+".json")
}

// writeJSON writes v to path atomically: temp file in the same directory,
// then rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// sanitizeID keeps identity-derived filenames to a safe character set.
func sanitizeID(id domain.Identity) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			return r
		}
		return '_'
	}, string(id))
}
