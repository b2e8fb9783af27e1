package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestQuantizeHalfUp(t *testing.T) {
	require.True(t, dec("10.005").Equal(dec("10.00").Add(dec("0.005"))))

	cases := map[string]string{
		"10.005":  "10.01",
		"10.004":  "10.00",
		"10.015":  "10.02",
		"-10.005": "-10.01",
		"0":       "0",
		"3.333":   "3.33",
	}
	for in, want := range cases {
		require.True(t, Quantize(dec(in)).Equal(dec(want)), "quantize(%s) = %s, want %s", in, Quantize(dec(in)), want)
	}
}

func TestDistributeExactSum(t *testing.T) {
	cases := []struct {
		total string
		n     int
	}{
		{"100.00", 3},
		{"100.00", 7},
		{"0.01", 3},
		{"999.99", 12},
		{"1000000.50", 13},
		{"300.00", 3},
	}
	for _, tc := range cases {
		amounts := Distribute(dec(tc.total), tc.n)
		require.Len(t, amounts, tc.n)
		for _, a := range amounts {
			require.True(t, a.Exponent() >= -2, "amount %s has more than 2 decimals", a)
		}
		require.True(t, Sum(amounts).Equal(Quantize(dec(tc.total))),
			"distribute(%s, %d) sums to %s", tc.total, tc.n, Sum(amounts))
	}
}

func TestDistributeRemainderGoesToLastBucket(t *testing.T) {
	amounts := Distribute(dec("100.00"), 3)
	require.True(t, amounts[0].Equal(dec("33.33")))
	require.True(t, amounts[1].Equal(dec("33.33")))
	require.True(t, amounts[2].Equal(dec("33.34")))
}

func TestDistributeNonPositiveCount(t *testing.T) {
	amounts := Distribute(dec("50.00"), 0)
	require.Len(t, amounts, 1)
	require.True(t, amounts[0].Equal(dec("50.00")))

	amounts = Distribute(dec("50.00"), -4)
	require.Len(t, amounts, 1)
}

func TestDistributeZeroTotal(t *testing.T) {
	for _, a := range Distribute(decimal.Zero, 5) {
		require.True(t, a.IsZero())
	}
}

func TestDistributeManyBuckets(t *testing.T) {
	for n := 1; n <= 1000; n += 37 {
		amounts := Distribute(dec("12345.67"), n)
		require.True(t, Sum(amounts).Equal(dec("12345.67")))
	}
}
