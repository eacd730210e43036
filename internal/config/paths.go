package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".talabot"

// Paths holds resolved filesystem paths for talabot data.
type Paths struct {
	Base    string // ~/.talabot
	Config  string // ~/.talabot/config.yaml
	Data    string // ~/.talabot/data — one ledger document per identity
	Exports string // ~/.talabot/exports — generated artifacts
	Users   string // ~/.talabot/users.json — identity directory
	Logs    string // ~/.talabot/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If TALABOT_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("TALABOT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		Data:    filepath.Join(base, "data"),
		Exports: filepath.Join(base, "exports"),
		Users:   filepath.Join(base, "users.json"),
		Logs:    filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data, p.Exports, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
