package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/logging"
)

// Renderer writes artifacts under a single export directory. Each method
// renders exactly one artifact and returns its path; empty histories are
// rejected with domain.ErrNoData before anything touches the disk.
type Renderer struct {
	dir      string
	fontPath string
	face     font.Face
	log      *logging.Logger
}

// New creates a renderer. fontPath points at a TrueType face covering the
// Persian script; when empty, the invoice falls back to a built-in bitmap
// face (useful for tests) and the PDF to a core font.
func New(dir, fontPath string, log *logging.Logger) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	face := font.Face(basicfont.Face7x13)
	if fontPath != "" {
		loaded, err := loadFontFace(fontPath, 20)
		if err != nil {
			return nil, fmt.Errorf("loading invoice font: %w", err)
		}
		face = loaded
	}

	return &Renderer{
		dir:      dir,
		fontPath: fontPath,
		face:     face,
		log:      log.Sub("render"),
	}, nil
}

// loadFontFace parses a TTF file into a face at the given point size.
func loadFontFace(path string, size float64) (font.Face, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// artifactPath builds a collision-free export filename from the identity
// and a generation timestamp.
func (r *Renderer) artifactPath(prefix string, id domain.Identity, ext string) string {
	name := fmt.Sprintf("%s_%s_%d.%s", prefix, sanitize(id), time.Now().UnixMilli(), ext)
	return filepath.Join(r.dir, name)
}

// sanitize keeps identity-derived filenames to a safe character set.
func sanitize(id domain.Identity) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			return r
		}
		return '_'
	}, string(id))
}
