package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/talabot/talabot/internal/domain"
)

// Summarize folds a history into buy/sell totals and net profit. An empty
// history yields the zero summary; callers that need to distinguish "no
// transactions yet" from totals that cancel out must check len(history)
// (or Count) and answer with domain.ErrNoData semantics themselves.
func Summarize(history domain.History) domain.Summary {
	totalBuy := decimal.Zero
	totalSell := decimal.Zero

	for _, rec := range history {
		switch rec.Direction {
		case domain.DirectionBuy:
			totalBuy = totalBuy.Add(rec.TotalAmount())
		case domain.DirectionSell:
			totalSell = totalSell.Add(rec.TotalAmount())
		}
	}

	return domain.Summary{
		TotalBuy:  totalBuy,
		TotalSell: totalSell,
		NetProfit: totalSell.Sub(totalBuy),
		Count:     len(history),
	}
}
