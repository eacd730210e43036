package render

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/talabot/talabot/internal/domain"
)

// CSV exports a full history as delimited text, one row per record in
// ledger order.
func (r *Renderer) CSV(id domain.Identity, history domain.History) (string, error) {
	if len(history) == 0 {
		return "", domain.ErrNoData
	}

	path := r.artifactPath("transactions", id, "csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating csv export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range history {
		if err := w.Write(recordRow(rec)); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}

	r.log.Debug().Str("path", path).Int("records", len(history)).Msg("csv exported")
	return path, nil
}
