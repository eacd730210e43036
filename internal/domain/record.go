// Package domain holds the core types shared across talabot: transaction
// records, histories, summaries, and the messaging contracts.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoData marks a summary or export requested over an empty history. It
// is informational: callers answer with a "no transactions yet" message,
// never an error reply.
var ErrNoData = errors.New("no transactions recorded")

// Identity is the stable key partitioning session state and persisted
// history. For the Telegram transport it is the chat id rendered as a
// string, but nothing in the core depends on that.
type Identity string

// Direction of a transaction.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// ItemKind discriminates what was traded.
type ItemKind string

const (
	ItemGold     ItemKind = "gold"
	ItemCoin     ItemKind = "coin"
	ItemCurrency ItemKind = "currency"
)

// GoldDetails is the payload of a gold transaction. The unit price is the
// daily price of one mithqal; the weight in grams is derived from the total
// amount at capture time and rounded to three decimals.
type GoldDetails struct {
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Weight      decimal.Decimal `json:"weight"`
}

// CoinDetails is the payload of a coin transaction.
type CoinDetails struct {
	Subtype     string          `json:"subtype"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// CurrencyDetails is the payload of a foreign-currency transaction.
type CurrencyDetails struct {
	Subtype     string          `json:"subtype"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// TransactionRecord is one persisted ledger entry. Records are immutable
// once appended; exactly one of Gold, Coin, or Currency is set, matching
// Kind.
type TransactionRecord struct {
	ID           string           `json:"id"`
	Direction    Direction        `json:"direction"`
	Kind         ItemKind         `json:"kind"`
	Counterparty string           `json:"counterparty,omitempty"`
	Note         string           `json:"note"`
	CreatedAt    time.Time        `json:"createdAt"`
	CapturedAt   string           `json:"capturedAt"` // Jalali date-time, Persian digits
	Gold         *GoldDetails     `json:"gold,omitempty"`
	Coin         *CoinDetails     `json:"coin,omitempty"`
	Currency     *CurrencyDetails `json:"currency,omitempty"`
}

// TotalAmount returns the record's total in toman regardless of kind.
func (r TransactionRecord) TotalAmount() decimal.Decimal {
	switch r.Kind {
	case ItemGold:
		return r.Gold.TotalAmount
	case ItemCoin:
		return r.Coin.TotalAmount
	case ItemCurrency:
		return r.Currency.TotalAmount
	}
	return decimal.Zero
}

// UnitPrice returns the captured unit price regardless of kind.
func (r TransactionRecord) UnitPrice() decimal.Decimal {
	switch r.Kind {
	case ItemGold:
		return r.Gold.UnitPrice
	case ItemCoin:
		return r.Coin.UnitPrice
	case ItemCurrency:
		return r.Currency.UnitPrice
	}
	return decimal.Zero
}

// Validate checks the payload/kind pairing and the amount invariants.
func (r TransactionRecord) Validate() error {
	if r.Direction != DirectionBuy && r.Direction != DirectionSell {
		return fmt.Errorf("record %s: unknown direction %q", r.ID, r.Direction)
	}
	switch r.Kind {
	case ItemGold:
		if r.Gold == nil || r.Coin != nil || r.Currency != nil {
			return fmt.Errorf("record %s: gold record must carry exactly the gold payload", r.ID)
		}
		if r.Gold.TotalAmount.IsNegative() {
			return fmt.Errorf("record %s: negative total amount", r.ID)
		}
	case ItemCoin:
		if r.Coin == nil || r.Gold != nil || r.Currency != nil {
			return fmt.Errorf("record %s: coin record must carry exactly the coin payload", r.ID)
		}
		if !r.Coin.TotalAmount.Equal(r.Coin.UnitPrice.Mul(r.Coin.Quantity)) {
			return fmt.Errorf("record %s: total amount does not match unitPrice x quantity", r.ID)
		}
	case ItemCurrency:
		if r.Currency == nil || r.Gold != nil || r.Coin != nil {
			return fmt.Errorf("record %s: currency record must carry exactly the currency payload", r.ID)
		}
		if !r.Currency.TotalAmount.Equal(r.Currency.UnitPrice.Mul(r.Currency.Quantity)) {
			return fmt.Errorf("record %s: total amount does not match unitPrice x quantity", r.ID)
		}
	default:
		return fmt.Errorf("record %s: unknown item kind %q", r.ID, r.Kind)
	}
	return nil
}

// History is the ordered, append-only sequence of records for one identity.
type History []TransactionRecord

// Summary is the buy/sell fold of a history.
type Summary struct {
	TotalBuy  decimal.Decimal `json:"totalBuy"`
	TotalSell decimal.Decimal `json:"totalSell"`
	NetProfit decimal.Decimal `json:"netProfit"`
	Count     int             `json:"count"`
}

// DirectoryEntry records the first contact with an identity. Written once,
// never mutated.
type DirectoryEntry struct {
	Identity     Identity  `json:"identity"`
	DisplayName  string    `json:"displayName"`
	FirstSeen    time.Time `json:"firstSeen"`
	RegisteredAt string    `json:"registeredAt"` // Jalali date-time
}
