package render

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/talabot/talabot/internal/domain"
)

// PDF page layout in millimeters.
const (
	pdfLineHeight = 7.0
	pdfBlockGap   = 5.0
	// pdfBreakAt starts a new page when the cursor passes this height, so a
	// record block never straddles a page boundary.
	pdfBreakAt = 250.0
)

// PDF exports a full history as a paginated document, one text block per
// record laid out top to bottom.
func (r *Renderer) PDF(id domain.Identity, history domain.History) (string, error) {
	if len(history) == 0 {
		return "", domain.ErrNoData
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	fontName := "Helvetica"
	if r.fontPath != "" {
		fontName = "ledger"
		pdf.AddUTF8Font(fontName, "", r.fontPath)
	}
	pdf.SetFont(fontName, "", 12)
	pdf.AddPage()

	for _, rec := range history {
		block := pdfBlock(rec)
		needed := float64(len(block))*pdfLineHeight + pdfBlockGap
		if pdf.GetY()+needed > pdfBreakAt {
			pdf.AddPage()
		}
		for _, line := range block {
			pdf.CellFormat(0, pdfLineHeight, line, "", 1, "R", false, 0, "")
		}
		pdf.Ln(pdfBlockGap)
	}

	path := r.artifactPath("transactions", id, "pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("saving pdf export: %w", err)
	}

	r.log.Debug().Str("path", path).Int("records", len(history)).Msg("pdf exported")
	return path, nil
}

// pdfBlock pairs the shared export columns with their headers, one line per
// field.
func pdfBlock(rec domain.TransactionRecord) []string {
	row := recordRow(rec)
	block := make([]string, 0, len(row))
	for i, v := range row {
		if v == "-" {
			continue
		}
		block = append(block, exportHeader[i]+": "+v)
	}
	return block
}
