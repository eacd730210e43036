package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/talabot/talabot/internal/domain"
)

const sheetName = "Transactions"

// XLSX exports a full history as a single-sheet spreadsheet with the same
// columns as the CSV export.
func (r *Renderer) XLSX(id domain.Identity, history domain.History) (string, error) {
	if len(history) == 0 {
		return "", domain.ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("writing header row: %w", err)
	}

	for i, rec := range history {
		row := recordRow(rec)
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return "", fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	path := r.artifactPath("transactions", id, "xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving spreadsheet: %w", err)
	}

	r.log.Debug().Str("path", path).Int("records", len(history)).Msg("xlsx exported")
	return path, nil
}
