package render

import (
	"fmt"

	"github.com/fogleman/gg"

	"github.com/talabot/talabot/internal/domain"
)

// Invoice canvas geometry. Layout is presentation only; the contract is
// that every persisted field of the record appears on the image.
const (
	invoiceWidth  = 600
	invoiceHeight = 400
	invoiceMargin = 40
	lineHeight    = 36
)

// Invoice renders one record as a bordered PNG receipt and returns the
// artifact path.
func (r *Renderer) Invoice(rec domain.TransactionRecord, id domain.Identity) (string, error) {
	dc := gg.NewContext(invoiceWidth, invoiceHeight)

	// Background and border
	dc.SetHexColor("#f5f5f5")
	dc.Clear()
	dc.SetHexColor("#999999")
	dc.SetLineWidth(2)
	dc.DrawRectangle(10, 10, invoiceWidth-20, invoiceHeight-20)
	dc.Stroke()

	dc.SetFontFace(r.face)
	dc.SetHexColor("#333333")

	title := "🧾 فاکتور " + DirectionLabel(rec.Direction) + " " + KindLabel(rec.Kind)
	tw, _ := dc.MeasureString(title)
	dc.DrawString(title, (invoiceWidth-tw)/2, 60)

	y := 110.0
	for _, line := range invoiceLines(rec) {
		dc.DrawString(line, invoiceMargin, y)
		y += lineHeight
	}

	path := r.artifactPath("invoice", id, "png")
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("writing invoice png: %w", err)
	}
	r.log.Debug().Str("path", path).Str("record", rec.ID).Msg("invoice rendered")
	return path, nil
}

// invoiceLines lays out the record's fields top to bottom, one line each,
// with the kind-specific block in the middle.
func invoiceLines(rec domain.TransactionRecord) []string {
	lines := []string{
		"📅 تاریخ: " + rec.CapturedAt,
		"نوع تراکنش: " + DirectionLabel(rec.Direction),
	}
	if rec.Counterparty != "" {
		lines = append(lines, "👤 طرف حساب: "+rec.Counterparty)
	}

	switch rec.Kind {
	case domain.ItemGold:
		lines = append(lines,
			"💰 قیمت مثقال: "+AmountToman(rec.Gold.UnitPrice),
			"💵 مبلغ کل: "+AmountToman(rec.Gold.TotalAmount),
			"⚖️ وزن تقریبی: "+WeightGram(rec.Gold.Weight),
		)
	case domain.ItemCoin:
		lines = append(lines,
			"🪙 نوع سکه: "+rec.Coin.Subtype,
			"💰 قیمت واحد: "+AmountToman(rec.Coin.UnitPrice),
			"🔢 تعداد: "+Amount(rec.Coin.Quantity),
			"💵 مبلغ کل: "+AmountToman(rec.Coin.TotalAmount),
		)
	case domain.ItemCurrency:
		lines = append(lines,
			"💱 نوع ارز: "+rec.Currency.Subtype,
			"💰 قیمت واحد: "+AmountToman(rec.Currency.UnitPrice),
			"🔢 تعداد: "+Amount(rec.Currency.Quantity),
			"💵 مبلغ کل: "+AmountToman(rec.Currency.TotalAmount),
		)
	}

	return append(lines, "📝 توضیحات: "+rec.Note)
}
