package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/logging"
	"github.com/talabot/talabot/internal/render"
)

// Directory is the shared document listing every identity the bot has seen,
// with display name and first-contact time. Entries are written once and
// never mutated.
type Directory struct {
	path string
	log  *logging.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewDirectory returns a directory backed by the given JSON file.
func NewDirectory(path string, log *logging.Logger) *Directory {
	return &Directory{
		path: path,
		log:  log.Sub("directory"),
		now:  time.Now,
	}
}

// RegisterOnce records an identity on first contact. It reports whether the
// identity was new; repeat calls are no-ops, so callers can key the
// administrator notification off the return value.
func (d *Directory) RegisterOnce(id domain.Identity, displayName string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := d.read()
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Identity == id {
			return false, nil
		}
	}

	now := d.now()
	entries = append(entries, domain.DirectoryEntry{
		Identity:     id,
		DisplayName:  displayName,
		FirstSeen:    now,
		RegisteredAt: render.Jalali(now),
	})
	if err := writeJSON(d.path, entries); err != nil {
		return false, fmt.Errorf("writing identity directory: %w", err)
	}

	d.log.Info().Str("identity", string(id)).Str("name", displayName).Msg("identity registered")
	return true, nil
}

// Entries returns all known identities.
func (d *Directory) Entries() ([]domain.DirectoryEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read()
}

func (d *Directory) read() ([]domain.DirectoryEntry, error) {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading identity directory: %w", err)
	}
	var entries []domain.DirectoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing identity directory: %w", err)
	}
	return entries, nil
}
