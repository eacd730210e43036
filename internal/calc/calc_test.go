package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGoldWeight(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		total     string
		want      string
	}{
		// 50000/123000 * 4.3318 = 1.76089... -> 1.761
		{"reference dialog answers", "123000", "50000", "1.761"},
		{"whole mithqal", "1000000", "1000000", "4.332"},
		{"zero amount", "123000", "0", "0"},
		{"small amount", "50000000", "1000", "0"},
		{"large amount", "42000000", "300000000", "30.941"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoldWeight(d(tt.unitPrice), d(tt.total))
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestGoldWeightRejectsNonPositivePrice(t *testing.T) {
	for _, price := range []string{"0", "-1", "-123000"} {
		_, err := GoldWeight(d(price), d("50000"))
		assert.ErrorIs(t, err, ErrNonPositivePrice, "price %s", price)
	}
}

func TestGoldWeightMonotonicInAmount(t *testing.T) {
	price := d("123000")
	prev := decimal.Zero
	for _, total := range []string{"10000", "50000", "100000", "500000", "1000000"} {
		w, err := GoldWeight(price, d(total))
		require.NoError(t, err)
		assert.True(t, w.GreaterThan(prev), "weight %s not greater than %s for total %s", w, prev, total)
		prev = w
	}
}

func TestGoldWeightThreeDecimals(t *testing.T) {
	w, err := GoldWeight(d("123000"), d("50000"))
	require.NoError(t, err)
	assert.LessOrEqual(t, int(-w.Exponent()), 3)
}

func TestTotal(t *testing.T) {
	tests := []struct {
		unitPrice string
		quantity  string
		want      string
	}{
		{"42000000", "2", "84000000"},
		{"61500", "350", "21525000"},
		{"1000", "0", "0"},
	}

	for _, tt := range tests {
		got := Total(d(tt.unitPrice), d(tt.quantity))
		assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
	}
}
