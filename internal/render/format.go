// Package render turns records and histories into artifacts: the invoice
// PNG plus CSV, XLSX, and PDF exports. All numeric output goes through the
// fa-IR formatter so every artifact shows the same figures.
package render

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	ptime "github.com/yaa110/go-persian-calendar"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/talabot/talabot/internal/domain"
)

var fa = message.NewPrinter(language.Persian)

// toFaDigits maps ASCII digits to Persian ones for strings the x/text
// printer never sees (timestamps).
var toFaDigits = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
)

// Jalali renders a capture time as a Jalali date-time with Persian digits,
// the equivalent of toLocaleString("fa-IR").
func Jalali(t time.Time) string {
	return toFaDigits.Replace(ptime.New(t).Format("yyyy/MM/dd HH:mm:ss"))
}

// Amount renders a toman figure with fa-IR thousands grouping.
func Amount(d decimal.Decimal) string {
	if d.IsInteger() {
		return fa.Sprint(number.Decimal(d.IntPart()))
	}
	f, _ := d.Float64()
	return fa.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// AmountToman is Amount with the currency word attached.
func AmountToman(d decimal.Decimal) string {
	return Amount(d) + " تومان"
}

// Weight renders a gram weight with exactly three fraction digits.
func Weight(d decimal.Decimal) string {
	f, _ := d.Float64()
	return fa.Sprint(number.Decimal(f,
		number.MinFractionDigits(3), number.MaxFractionDigits(3)))
}

// WeightGram is Weight with the unit word attached.
func WeightGram(d decimal.Decimal) string {
	return Weight(d) + " گرم"
}

// Count renders a record count.
func Count(n int) string {
	return fa.Sprint(number.Decimal(n))
}

// DirectionLabel is the user-facing name of a direction.
func DirectionLabel(d domain.Direction) string {
	switch d {
	case domain.DirectionBuy:
		return "خرید"
	case domain.DirectionSell:
		return "فروش"
	}
	return string(d)
}

// KindLabel is the user-facing name of an item kind.
func KindLabel(k domain.ItemKind) string {
	switch k {
	case domain.ItemGold:
		return "طلا"
	case domain.ItemCoin:
		return "سکه"
	case domain.ItemCurrency:
		return "ارز"
	}
	return string(k)
}

// Details summarizes the kind-specific subfields in one cell so that
// heterogeneous kinds coexist in a flat table.
func Details(rec domain.TransactionRecord) string {
	switch rec.Kind {
	case domain.ItemGold:
		return KindLabel(domain.ItemGold)
	case domain.ItemCoin:
		return rec.Coin.Subtype
	case domain.ItemCurrency:
		return rec.Currency.Subtype
	}
	return "-"
}

// quantityCell and weightCell render the kind-dependent columns, with "-"
// where a field does not apply.
func quantityCell(rec domain.TransactionRecord) string {
	switch rec.Kind {
	case domain.ItemGold:
		return "-"
	case domain.ItemCoin:
		return Amount(rec.Coin.Quantity)
	case domain.ItemCurrency:
		return Amount(rec.Currency.Quantity)
	}
	return "-"
}

func weightCell(rec domain.TransactionRecord) string {
	if rec.Kind == domain.ItemGold {
		return WeightGram(rec.Gold.Weight)
	}
	return "-"
}

// exportHeader is the fixed column ordering shared by the CSV, XLSX, and
// PDF exports.
var exportHeader = []string{
	"نوع تراکنش", "کالا", "جزئیات", "طرف حساب",
	"قیمت واحد", "تعداد", "مبلغ کل", "وزن", "توضیحات", "تاریخ",
}

// recordRow renders one record into the shared column ordering. Every
// export format goes through here, which is what keeps them in parity.
func recordRow(rec domain.TransactionRecord) []string {
	counterparty := rec.Counterparty
	if counterparty == "" {
		counterparty = "-"
	}
	return []string{
		DirectionLabel(rec.Direction),
		KindLabel(rec.Kind),
		Details(rec),
		counterparty,
		AmountToman(rec.UnitPrice()),
		quantityCell(rec),
		AmountToman(rec.TotalAmount()),
		weightCell(rec),
		rec.Note,
		rec.CapturedAt,
	}
}
