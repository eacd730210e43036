package dialog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/logging"
)

func testMachine() *Machine {
	return NewMachine(logging.New(nil, "silent"))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// feed runs a sequence of accepted answers and returns the final result.
func feed(t *testing.T, m *Machine, sess *Session, answers ...string) Result {
	t.Helper()
	var res Result
	var err error
	for _, a := range answers {
		res, err = m.Advance(sess, a)
		require.NoError(t, err, "answer %q", a)
	}
	return res
}

func TestGoldBuyDialog(t *testing.T) {
	m := testMachine()
	sess, res := m.Start("123", domain.DirectionBuy)
	assert.Equal(t, StepName, sess.Step)
	assert.NotEmpty(t, res.Reply)

	res = feed(t, m, sess, "Ali", "طلا", "123000", "50000", "-")
	require.True(t, res.Done)
	rec := res.Record
	require.NotNil(t, rec)

	require.NoError(t, rec.Validate())
	assert.Equal(t, domain.DirectionBuy, rec.Direction)
	assert.Equal(t, domain.ItemGold, rec.Kind)
	assert.Equal(t, "Ali", rec.Counterparty)
	assert.Equal(t, "-", rec.Note)
	assert.True(t, rec.Gold.UnitPrice.Equal(d("123000")))
	assert.True(t, rec.Gold.TotalAmount.Equal(d("50000")))
	assert.True(t, rec.Gold.Weight.Equal(d("1.761")))
	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.CapturedAt)
}

func TestCoinSellDialog(t *testing.T) {
	m := testMachine()
	sess, _ := m.Start("123", domain.DirectionSell)

	res := feed(t, m, sess, "Reza", "سکه", "سکه امامی", "42000000", "2", "فروش نقدی")
	require.True(t, res.Done)
	rec := res.Record

	require.NoError(t, rec.Validate())
	assert.Equal(t, domain.ItemCoin, rec.Kind)
	assert.Equal(t, "سکه امامی", rec.Coin.Subtype)
	assert.True(t, rec.Coin.TotalAmount.Equal(d("84000000")))
	assert.Equal(t, "فروش نقدی", rec.Note)
}

func TestCurrencyBuyDialog(t *testing.T) {
	m := testMachine()
	sess, _ := m.Start("123", domain.DirectionBuy)

	res := feed(t, m, sess, "صرافی مرکزی", "ارز", "دلار", "61500", "350", "")
	require.True(t, res.Done)
	rec := res.Record

	require.NoError(t, rec.Validate())
	assert.Equal(t, domain.ItemCurrency, rec.Kind)
	assert.Equal(t, "دلار", rec.Currency.Subtype)
	assert.True(t, rec.Currency.TotalAmount.Equal(d("21525000")))
	// empty note becomes the placeholder
	assert.Equal(t, "-", rec.Note)
}

func TestInvalidNumericLeavesStepUnchanged(t *testing.T) {
	// every numeric step in every branch
	branches := []struct {
		name    string
		answers []string // accepted answers leading up to a numeric step
	}{
		{"gold price", []string{"Ali", "طلا"}},
		{"gold amount", []string{"Ali", "طلا", "123000"}},
		{"coin unit price", []string{"Ali", "سکه", "بهار آزادی"}},
		{"coin quantity", []string{"Ali", "سکه", "بهار آزادی", "42000000"}},
		{"currency unit price", []string{"Ali", "ارز", "یورو"}},
		{"currency quantity", []string{"Ali", "ارز", "یورو", "71000"}},
	}

	for _, tt := range branches {
		t.Run(tt.name, func(t *testing.T) {
			m := testMachine()
			sess, _ := m.Start("123", domain.DirectionBuy)
			feed(t, m, sess, tt.answers...)
			before := sess.Step

			res, err := m.Advance(sess, "not a number")
			assert.ErrorIs(t, err, ErrInvalidNumericInput)
			assert.Equal(t, before, sess.Step)
			assert.Contains(t, res.Reply, noticeNotANumber)

			// the same prompt is reissued and a correct answer still advances
			res, err = m.Advance(sess, "1000")
			require.NoError(t, err)
			assert.NotEqual(t, before, sess.Step)
		})
	}
}

func TestNonPositivePriceRejected(t *testing.T) {
	m := testMachine()
	sess, _ := m.Start("123", domain.DirectionBuy)
	feed(t, m, sess, "Ali", "طلا")

	for _, bad := range []string{"0", "-5"} {
		_, err := m.Advance(sess, bad)
		assert.ErrorIs(t, err, ErrInvalidNumericInput, "price %q", bad)
		assert.Equal(t, StepGoldPrice, sess.Step)
	}
}

func TestInvalidChoiceReprompts(t *testing.T) {
	m := testMachine()
	sess, _ := m.Start("123", domain.DirectionBuy)
	feed(t, m, sess, "Ali")

	res, err := m.Advance(sess, "نقره")
	assert.ErrorIs(t, err, ErrInvalidChoice)
	assert.Equal(t, StepItemKind, sess.Step)
	assert.Contains(t, res.Reply, noticeInvalidChoice)
	assert.Equal(t, itemKindKeyboard, res.Keyboard)

	// subtype steps behave the same
	feed(t, m, sess, "سکه")
	_, err = m.Advance(sess, "سکه تقلبی")
	assert.ErrorIs(t, err, ErrInvalidChoice)
	assert.Equal(t, StepCoinType, sess.Step)
}

func TestPersianDigitsAccepted(t *testing.T) {
	m := testMachine()
	sess, _ := m.Start("123", domain.DirectionBuy)

	res := feed(t, m, sess, "Ali", "طلا", "۱۲۳٬۰۰۰", "۵۰,۰۰۰", "-")
	require.True(t, res.Done)
	assert.True(t, res.Record.Gold.UnitPrice.Equal(d("123000")))
	assert.True(t, res.Record.Gold.TotalAmount.Equal(d("50000")))
}

func TestChoiceKeyboardsOffered(t *testing.T) {
	m := testMachine()
	sess, _ := m.Start("123", domain.DirectionBuy)

	res, err := m.Advance(sess, "Ali")
	require.NoError(t, err)
	assert.Equal(t, itemKindKeyboard, res.Keyboard)

	res, err = m.Advance(sess, "ارز")
	require.NoError(t, err)
	assert.Equal(t, currencyKeyboard, res.Keyboard)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	assert.Zero(t, s.Len())

	_, ok := s.Get("1")
	assert.False(t, ok)

	sess := &Session{Identity: "1", Step: StepName}
	s.Put(sess)
	got, ok := s.Get("1")
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, s.Len())

	// one slot per identity
	s.Put(&Session{Identity: "1", Step: StepNote})
	got, _ = s.Get("1")
	assert.Equal(t, StepNote, got.Step)
	assert.Equal(t, 1, s.Len())

	s.Delete("1")
	_, ok = s.Get("1")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"123000", "123000", true},
		{"1,234.5", "1234.5", true},
		{"۱۲۳", "123", true},
		{"٤٢", "42", true},
		{"۱۲٫۵", "12.5", true},
		{"abc", "", false},
		{"", "", false},
		{"12a", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseNumber(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}
