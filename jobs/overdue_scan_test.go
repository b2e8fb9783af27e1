package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCountOverdueQueryUsesSettlementRule(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	query, args := countOverdueQuery(0, asOf)
	require.Contains(t, query, "NOT (i.amount > 0 AND i.paid_date IS NOT NULL)")
	require.NotContains(t, query, "NOT i.paid")
	require.Contains(t, query, "i.due_date < $1")
	require.Equal(t, []any{asOf}, args)

	query, args = countOverdueQuery(9, asOf)
	require.Contains(t, query, "AND m.company_id = $2")
	require.Equal(t, []any{asOf, int64(9)}, args)
}
