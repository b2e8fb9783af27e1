package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/verifintek/verifintek/internal/analytics"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestWriteBalanceCSVKeepsFieldOrderAndFormatting(t *testing.T) {
	capital := d("1000")
	var buf bytes.Buffer
	err := WriteBalanceCSV(&buf, analytics.BalanceReport{
		AssetTotal:      d("380"),
		LiabilityTotal:  d("120"),
		Net:             d("260"),
		StartingCapital: &capital,
		Balance:         d("1260"),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{
		"Metric,Value",
		"Asset Total,380.00",
		"Liability Total,120.00",
		"Net,260.00",
		"Starting Capital,1000.00",
		"Balance,1260.00",
	}, lines)
}

func TestWriteCashflowCSVPadsPeriods(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCashflowCSV(&buf, []analytics.CashflowPoint{
		{Year: 2024, Month: time.May, Paid: d("100"), Scheduled: d("200")},
		{Year: 2024, Month: time.November, Paid: d("0"), Scheduled: d("33.34")},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, "2024-05,100.00,200.00", lines[1])
	require.Equal(t, "2024-11,0.00,33.34", lines[2])
}

func TestWriteBreakdownCSVOmitsNilRatio(t *testing.T) {
	ratio := d("2.5")
	var buf bytes.Buffer
	err := WriteBreakdownCSV(&buf, []analytics.SubUnitLine{
		{SubUnitID: 10, Name: "North", AssetTotal: d("300"), LiabilityTotal: d("120"), Net: d("180"), Ratio: &ratio},
		{SubUnitID: 11, Name: "South", AssetTotal: d("80"), Net: d("80")},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, "North,300.00,120.00,180.00,2.5", lines[1])
	require.Equal(t, "South,80.00,0.00,80.00,", lines[2])
}

func TestWriteSummaryText(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummaryText(&buf, analytics.ReportBundle{
		Filter:      analytics.Filter{CompanyID: 7},
		Balance:     analytics.BalanceReport{Balance: d("1260")},
		GeneratedAt: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Report for company 7")
	require.Contains(t, buf.String(), "Balance: 1260.00")
}
