package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMovementRowsQueryMatchesWritePathColumns(t *testing.T) {
	query, args := movementRowsQuery(Filter{CompanyID: 7})

	require.Contains(t, query, "subunit_id")
	require.Contains(t, query, "type, concept_id")
	require.NotContains(t, query, "sub_unit_id")
	require.NotContains(t, query, "movement_type")
	require.Equal(t, []interface{}{int64(7)}, args)
}

func TestMovementRowsQueryAppendsFilters(t *testing.T) {
	sub := int64(3)
	concept := int64(9)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	query, args := movementRowsQuery(Filter{
		CompanyID: 7,
		SubUnitID: &sub,
		ConceptID: &concept,
		From:      from,
		To:        to,
	})

	require.Contains(t, query, "AND subunit_id = $2")
	require.Contains(t, query, "AND concept_id = $3")
	require.Contains(t, query, "AND start_date >= $4")
	require.Contains(t, query, "AND start_date <= $5")
	require.Equal(t, []interface{}{int64(7), sub, concept, from, to}, args)
}

func TestInstallmentRowsQueryMatchesWritePathColumns(t *testing.T) {
	sub := int64(3)
	query, args := installmentRowsQuery(Filter{CompanyID: 7, SubUnitID: &sub})

	require.Contains(t, query, "m.subunit_id")
	require.Contains(t, query, "m.type")
	require.NotContains(t, query, "sub_unit_id")
	require.NotContains(t, query, "movement_type")
	require.Contains(t, query, "AND m.subunit_id = $2")
	require.Contains(t, query, "ORDER BY i.movement_id, i.sequence")
	require.Equal(t, []interface{}{int64(7), sub}, args)
}
