package dialog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talabot/talabot/internal/calc"
	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/logging"
	"github.com/talabot/talabot/internal/render"
)

// Validation failures. Both are recovered locally by re-prompting; neither
// is ever fatal.
var (
	ErrInvalidNumericInput = errors.New("dialog: input does not parse as a number")
	ErrInvalidChoice       = errors.New("dialog: input is not a recognized option")
)

// Result is the outcome of feeding one answer to a session. When Done is
// set, Record holds the completed draft and the session must be destroyed;
// otherwise Reply carries the next prompt (or an error notice plus the
// reissued prompt) and Keyboard the choice rows, if the next step has a
// fixed choice set.
type Result struct {
	Reply    string
	Keyboard [][]string
	Done     bool
	Record   *domain.TransactionRecord
}

// User-facing prompts and notices. The bot speaks Persian, matching its
// audience; all numbers it echoes back are rendered by internal/render.
const (
	promptName         = "👤 نام طرف حساب را وارد کنید:"
	promptItemKind     = "📦 لطفاً نوع کالا را انتخاب کنید:"
	promptGoldPrice    = "💰 لطفاً قیمت روز مثقال طلا (به تومان) را وارد کنید:"
	promptCoinType     = "🪙 لطفاً نوع سکه را انتخاب کنید:"
	promptCurrencyType = "💱 لطفاً نوع ارز را انتخاب کنید:"
	promptUnitPrice    = "💰 قیمت واحد (به تومان) را وارد کنید:"
	promptGoldAmount   = "💵 مبلغ کل خرید یا فروش (به تومان) را وارد کنید:"
	promptQuantity     = "🔢 تعداد را وارد کنید:"
	promptNote         = "📝 توضیحات را وارد کنید (برای رد شدن «-» بفرستید):"

	noticeNotANumber    = "❌ لطفاً فقط عدد وارد کنید."
	noticeNotPositive   = "❌ مقدار باید بزرگ‌تر از صفر باشد."
	noticeInvalidChoice = "❌ گزینه نامعتبر است؛ یکی از دکمه‌ها را انتخاب کنید."

	// notePlaceholder fills the note field when the user skips it.
	notePlaceholder = "-"
)

// Choice sets for the enumerated steps.
var (
	itemKindLabels = map[string]domain.ItemKind{
		"طلا": domain.ItemGold,
		"سکه": domain.ItemCoin,
		"ارز": domain.ItemCurrency,
	}
	itemKindKeyboard = [][]string{{"طلا", "سکه", "ارز"}}

	coinSubtypes     = []string{"سکه امامی", "بهار آزادی", "نیم‌سکه", "ربع سکه"}
	coinKeyboard     = [][]string{{"سکه امامی", "بهار آزادی"}, {"نیم‌سکه", "ربع سکه"}}
	currencySubtypes = []string{"دلار", "یورو", "پوند", "درهم"}
	currencyKeyboard = [][]string{{"دلار", "یورو"}, {"پوند", "درهم"}}
)

// Machine drives sessions through the intake dialog. It is stateless apart
// from its clock; all dialog state lives on the Session.
type Machine struct {
	log *logging.Logger
	now func() time.Time
}

// NewMachine creates a dialog machine.
func NewMachine(log *logging.Logger) *Machine {
	return &Machine{log: log.Sub("dialog"), now: time.Now}
}

// Start creates a session for the given direction and returns the first
// prompt.
func (m *Machine) Start(id domain.Identity, dir domain.Direction) (*Session, Result) {
	sess := &Session{
		Identity:  id,
		Direction: dir,
		Step:      StepName,
		StartedAt: m.now(),
	}
	m.log.Debug().Str("identity", string(id)).Str("direction", string(dir)).Msg("dialog started")
	return sess, Result{Reply: promptName}
}

// Advance feeds one answer to the session. On a validation failure the
// session's step is unchanged and the returned Result reissues the same
// prompt behind an error notice.
func (m *Machine) Advance(sess *Session, text string) (Result, error) {
	text = strings.TrimSpace(text)

	switch sess.Step {
	case StepName:
		sess.Counterparty = text
		sess.Step = StepItemKind
		return Result{Reply: promptItemKind, Keyboard: itemKindKeyboard}, nil

	case StepItemKind:
		kind, ok := itemKindLabels[text]
		if !ok {
			return reissue(noticeInvalidChoice, promptItemKind, itemKindKeyboard), ErrInvalidChoice
		}
		sess.Kind = kind
		switch kind {
		case domain.ItemGold:
			sess.Step = StepGoldPrice
			return Result{Reply: promptGoldPrice}, nil
		case domain.ItemCoin:
			sess.Step = StepCoinType
			return Result{Reply: promptCoinType, Keyboard: coinKeyboard}, nil
		case domain.ItemCurrency:
			sess.Step = StepCurrencyType
			return Result{Reply: promptCurrencyType, Keyboard: currencyKeyboard}, nil
		}

	case StepGoldPrice:
		price, err := parseNumber(text)
		if err != nil {
			return reissue(noticeNotANumber, promptGoldPrice, nil), ErrInvalidNumericInput
		}
		if !price.IsPositive() {
			return reissue(noticeNotPositive, promptGoldPrice, nil), ErrInvalidNumericInput
		}
		sess.UnitPrice = price
		sess.Step = StepAmount
		return Result{Reply: promptGoldAmount}, nil

	case StepCoinType:
		if !contains(coinSubtypes, text) {
			return reissue(noticeInvalidChoice, promptCoinType, coinKeyboard), ErrInvalidChoice
		}
		sess.Subtype = text
		sess.Step = StepUnitPrice
		return Result{Reply: promptUnitPrice}, nil

	case StepCurrencyType:
		if !contains(currencySubtypes, text) {
			return reissue(noticeInvalidChoice, promptCurrencyType, currencyKeyboard), ErrInvalidChoice
		}
		sess.Subtype = text
		sess.Step = StepUnitPrice
		return Result{Reply: promptUnitPrice}, nil

	case StepUnitPrice:
		price, err := parseNumber(text)
		if err != nil {
			return reissue(noticeNotANumber, promptUnitPrice, nil), ErrInvalidNumericInput
		}
		if !price.IsPositive() {
			return reissue(noticeNotPositive, promptUnitPrice, nil), ErrInvalidNumericInput
		}
		sess.UnitPrice = price
		sess.Step = StepAmount
		return Result{Reply: promptQuantity}, nil

	case StepAmount:
		n, err := parseNumber(text)
		if err != nil {
			return reissue(noticeNotANumber, m.amountPrompt(sess), nil), ErrInvalidNumericInput
		}
		if sess.Kind == domain.ItemGold {
			if n.IsNegative() {
				return reissue(noticeNotPositive, promptGoldAmount, nil), ErrInvalidNumericInput
			}
			sess.TotalAmount = n
		} else {
			if !n.IsPositive() {
				return reissue(noticeNotPositive, promptQuantity, nil), ErrInvalidNumericInput
			}
			sess.Quantity = n
			sess.TotalAmount = calc.Total(sess.UnitPrice, sess.Quantity)
		}
		sess.Step = StepNote
		return Result{Reply: promptNote}, nil

	case StepNote:
		note := text
		if note == "" {
			note = notePlaceholder
		}
		sess.Note = note
		rec, err := m.buildRecord(sess)
		if err != nil {
			return Result{}, err
		}
		m.log.Debug().
			Str("identity", string(sess.Identity)).
			Str("kind", string(sess.Kind)).
			Str("record", rec.ID).
			Msg("dialog complete")
		return Result{Done: true, Record: rec}, nil
	}

	return Result{}, errors.New("dialog: session in unknown step")
}

// amountPrompt picks the amount-step prompt for the session's item kind.
func (m *Machine) amountPrompt(sess *Session) string {
	if sess.Kind == domain.ItemGold {
		return promptGoldAmount
	}
	return promptQuantity
}

// buildRecord turns a finished session into an immutable record draft.
func (m *Machine) buildRecord(sess *Session) (*domain.TransactionRecord, error) {
	now := m.now()
	rec := &domain.TransactionRecord{
		ID:           uuid.NewString(),
		Direction:    sess.Direction,
		Kind:         sess.Kind,
		Counterparty: sess.Counterparty,
		Note:         sess.Note,
		CreatedAt:    now,
		CapturedAt:   render.Jalali(now),
	}

	switch sess.Kind {
	case domain.ItemGold:
		weight, err := calc.GoldWeight(sess.UnitPrice, sess.TotalAmount)
		if err != nil {
			return nil, err
		}
		rec.Gold = &domain.GoldDetails{
			UnitPrice:   sess.UnitPrice,
			TotalAmount: sess.TotalAmount,
			Weight:      weight,
		}
	case domain.ItemCoin:
		rec.Coin = &domain.CoinDetails{
			Subtype:     sess.Subtype,
			UnitPrice:   sess.UnitPrice,
			Quantity:    sess.Quantity,
			TotalAmount: sess.TotalAmount,
		}
	case domain.ItemCurrency:
		rec.Currency = &domain.CurrencyDetails{
			Subtype:     sess.Subtype,
			UnitPrice:   sess.UnitPrice,
			Quantity:    sess.Quantity,
			TotalAmount: sess.TotalAmount,
		}
	default:
		return nil, errors.New("dialog: session finished without an item kind")
	}
	return rec, nil
}

func reissue(notice, prompt string, keyboard [][]string) Result {
	return Result{Reply: notice + "\n\n" + prompt, Keyboard: keyboard}
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// digit runs map Persian and Arabic-Indic digits to ASCII so users can type
// numbers with either keyboard.
var digitRuns = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".",
)

// parseNumber parses a user-supplied number, tolerating Persian digits and
// thousands separators.
func parseNumber(s string) (decimal.Decimal, error) {
	s = digitRuns.Replace(s)
	s = strings.NewReplacer(",", "", "٬", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidNumericInput
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidNumericInput
	}
	return d, nil
}
