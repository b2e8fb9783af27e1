package movements

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmountStripsThousandSeparators(t *testing.T) {
	amount, err := ParseAmount(" 1,250.50 ")
	require.NoError(t, err)
	require.True(t, amount.Equal(d("1250.50")))
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "  ", "abc", "-100", "0", "0.00", "1.2.3"} {
		_, err := ParseAmount(raw)
		require.ErrorIs(t, err, ErrInvalidAmount, "input %q", raw)
	}
}
