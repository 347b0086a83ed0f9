package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{"12,5", 12.5},
		{" 7 ", 7},
		{"-0,25", -0.25},
		{"+3.1415", 3.1415},
		{".5", 0.5},
		{"100", 100},
		{"1e2", 100},
		{"0.00005", 0}, // truncated past 4 digits
	}
	for _, c := range cases {
		q, err := ParseQuantity(c.in)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.want, q.Float64(), 1e-9, c.in)
	}

	for _, bad := range []string{"", "abc", "1.2.3", "12.."} {
		_, err := ParseQuantity(bad)
		assert.Error(t, err, bad)
	}
}

func TestQuantityArithmeticIsExact(t *testing.T) {
	// The classic float trap: 0.1+0.2 != 0.3.
	sum := MustParseQuantity("0.1") + MustParseQuantity("0.2")
	assert.Equal(t, MustParseQuantity("0.3"), sum)

	var total Quantity
	for i := 0; i < 1000; i++ {
		total += MustParseQuantity("0.1")
	}
	assert.Equal(t, NewQuantityFromInt(100), total)
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	q := MustParseQuantity("12.5")

	encoded, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "12.5000", string(encoded), "quantities encode as JSON numbers")

	var decoded Quantity
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, q, decoded)

	// Strings with a decimal comma also decode.
	require.NoError(t, json.Unmarshal([]byte(`"3,75"`), &decoded))
	assert.InDelta(t, 3.75, decoded.Float64(), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`null`), &decoded))
	assert.True(t, decoded.IsZero())
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "12.5000", MustParseQuantity("12.5").String())
	assert.Equal(t, "-0.2500", MustParseQuantity("-0.25").String())
	assert.Equal(t, "0.0000", Quantity(0).String())
}

func TestEpsilonThresholds(t *testing.T) {
	assert.Equal(t, Quantity(100), StockEpsilon)
	assert.Equal(t, Quantity(10), BeerEpsilon)
	assert.True(t, MustParseQuantity("0.01") <= StockEpsilon)
	assert.False(t, MustParseQuantity("0.011") <= StockEpsilon)
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("2,50")
	require.NoError(t, err)
	assert.True(t, m.Equal(MustMoney("2.50")))

	_, err = ParseMoney("")
	assert.Error(t, err)
}
