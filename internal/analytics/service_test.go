package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/verifintek/verifintek/internal/movements"
)

type memRepo struct {
	movements    []MovementRow
	installments []InstallmentRow
	capital      *decimal.Decimal
	names        map[int64]string
	loads        int
}

func (r *memRepo) MovementRows(_ context.Context, filter Filter) ([]MovementRow, error) {
	r.loads++
	var out []MovementRow
	for _, row := range r.movements {
		if filter.SubUnitID != nil && (row.SubUnitID == nil || *row.SubUnitID != *filter.SubUnitID) {
			continue
		}
		if filter.ConceptID != nil && row.ConceptID != *filter.ConceptID {
			continue
		}
		if !filter.From.IsZero() && row.StartDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && row.StartDate.After(filter.To) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *memRepo) InstallmentRows(_ context.Context, filter Filter) ([]InstallmentRow, error) {
	r.loads++
	var out []InstallmentRow
	for _, row := range r.installments {
		if filter.SubUnitID != nil && (row.SubUnitID == nil || *row.SubUnitID != *filter.SubUnitID) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *memRepo) StartingCapital(context.Context, int64) (*decimal.Decimal, error) {
	return r.capital, nil
}

func (r *memRepo) SubUnitNames(context.Context, int64) (map[int64]string, error) {
	return r.names, nil
}

type allowAll struct{}

func (allowAll) CanListReports(context.Context, int64, int64, *int64) (bool, error) {
	return true, nil
}

type denyAll struct{}

func (denyAll) CanListReports(context.Context, int64, int64, *int64) (bool, error) {
	return false, nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func fixtureRepo() *memRepo {
	capital := d("1000.00")
	return &memRepo{
		capital: &capital,
		names:   map[int64]string{10: "North", 11: "South"},
		movements: []MovementRow{
			{MovementID: 1, SubUnitID: ptr(10), Type: movements.TypeAsset, ConceptID: 1, TotalAmount: d("300.00"), StartDate: day("2024-05-10")},
			{MovementID: 2, SubUnitID: ptr(10), Type: movements.TypeLiability, ConceptID: 2, TotalAmount: d("120.00"), StartDate: day("2024-05-20")},
			{MovementID: 3, SubUnitID: ptr(11), Type: movements.TypeAsset, ConceptID: 1, TotalAmount: d("80.00"), StartDate: day("2024-06-01")},
		},
		installments: []InstallmentRow{
			{MovementID: 1, SubUnitID: ptr(10), Type: movements.TypeAsset, Amount: d("100.00"), DueDate: day("2024-05-17"), PaidDate: timePtr(day("2024-05-18"))},
			{MovementID: 1, SubUnitID: ptr(10), Type: movements.TypeAsset, Amount: d("100.00"), DueDate: day("2024-05-24")},
			{MovementID: 1, SubUnitID: ptr(10), Type: movements.TypeAsset, Amount: d("100.00"), DueDate: day("2024-07-05")},
			{MovementID: 2, SubUnitID: ptr(10), Type: movements.TypeLiability, Amount: d("120.00"), DueDate: day("2024-06-19")},
		},
	}
}

func fixtureService(repo Repository, access AccessChecker) *Service {
	svc := NewService(repo, access, nil)
	svc.WithNow(func() time.Time { return day("2024-06-15") })
	return svc
}

func TestBalanceIncludesCapitalAtCompanyLevel(t *testing.T) {
	svc := fixtureService(fixtureRepo(), allowAll{})

	report, err := svc.Balance(context.Background(), 1, Filter{CompanyID: 1})
	require.NoError(t, err)
	require.True(t, report.AssetTotal.Equal(d("380.00")))
	require.True(t, report.LiabilityTotal.Equal(d("120.00")))
	require.True(t, report.Net.Equal(d("260.00")))
	require.NotNil(t, report.StartingCapital)
	require.True(t, report.Balance.Equal(d("1260.00")))
}

func TestBalanceSubUnitScopeExcludesCapital(t *testing.T) {
	svc := fixtureService(fixtureRepo(), allowAll{})

	report, err := svc.Balance(context.Background(), 1, Filter{CompanyID: 1, SubUnitID: ptr(10)})
	require.NoError(t, err)
	require.Nil(t, report.StartingCapital)
	require.True(t, report.Balance.Equal(d("180.00")), "asset 300 minus liability 120, no capital")
}

func TestAgingBuckets(t *testing.T) {
	svc := fixtureService(fixtureRepo(), allowAll{})

	report, err := svc.Aging(context.Background(), 1, Filter{CompanyID: 1})
	require.NoError(t, err)
	// Paid installment excluded; 05-24 receivable is overdue on 06-15,
	// 07-05 is current; the 06-19 payable is still upcoming.
	require.True(t, report.ReceivablesOverdue.Equal(d("100.00")))
	require.True(t, report.ReceivablesCurrent.Equal(d("100.00")))
	require.True(t, report.PayablesOverdue.IsZero())
	require.True(t, report.PayablesCurrent.Equal(d("120.00")))
}

func TestCashflowBucketsPaidAndScheduled(t *testing.T) {
	svc := fixtureService(fixtureRepo(), allowAll{})

	points, err := svc.Cashflow(context.Background(), 1, Filter{
		CompanyID: 1,
		From:      day("2024-05-01"),
		To:        day("2024-07-31"),
	})
	require.NoError(t, err)
	require.Len(t, points, 3)

	require.Equal(t, time.May, points[0].Month)
	require.True(t, points[0].Paid.Equal(d("100.00")))
	require.True(t, points[0].Scheduled.Equal(d("200.00")))

	require.Equal(t, time.June, points[1].Month)
	require.True(t, points[1].Paid.IsZero())
	require.True(t, points[1].Scheduled.Equal(d("120.00")))

	require.Equal(t, time.July, points[2].Month)
	require.True(t, points[2].Scheduled.Equal(d("100.00")))
}

func TestBreakdownRatioNilWithoutLiabilities(t *testing.T) {
	svc := fixtureService(fixtureRepo(), allowAll{})

	lines, err := svc.Breakdown(context.Background(), 1, Filter{CompanyID: 1})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	require.Equal(t, int64(10), lines[0].SubUnitID)
	require.Equal(t, "North", lines[0].Name)
	require.True(t, lines[0].Net.Equal(d("180.00")))
	require.NotNil(t, lines[0].Ratio)
	require.True(t, lines[0].Ratio.Equal(d("2.5")))

	require.Equal(t, int64(11), lines[1].SubUnitID)
	require.True(t, lines[1].Net.Equal(d("80.00")))
	require.Nil(t, lines[1].Ratio, "no liabilities means no ratio")
}

func TestTrendCoversTrailingWindow(t *testing.T) {
	svc := fixtureService(fixtureRepo(), allowAll{})

	points, err := svc.Trend(context.Background(), 1, Filter{CompanyID: 1}, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	require.Equal(t, time.April, points[0].Month)
	require.True(t, points[0].Net.IsZero())

	require.Equal(t, time.May, points[1].Month)
	require.True(t, points[1].Assets.Equal(d("300.00")))
	require.True(t, points[1].Liabilities.Equal(d("120.00")))

	require.Equal(t, time.June, points[2].Month)
	require.True(t, points[2].Assets.Equal(d("80.00")))
}

func TestProjectionSkipsPaidInstallments(t *testing.T) {
	svc := fixtureService(fixtureRepo(), allowAll{})

	points, err := svc.Projection(context.Background(), 1, Filter{CompanyID: 1}, 2)
	require.NoError(t, err)
	require.Len(t, points, 2)

	require.Equal(t, time.June, points[0].Month)
	require.True(t, points[0].LiabilityDue.Equal(d("120.00")))
	require.True(t, points[0].AssetDue.IsZero())

	require.Equal(t, time.July, points[1].Month)
	require.True(t, points[1].AssetDue.Equal(d("100.00")))
}

func TestAggregateDeniedWithoutReportCapability(t *testing.T) {
	svc := fixtureService(fixtureRepo(), denyAll{})

	_, err := svc.Aggregate(context.Background(), 1, Filter{CompanyID: 1})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCachedBalanceSkipsRepeatLoadsUntilBump(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	defer srv.Close()

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	repo := fixtureRepo()
	svc := NewService(repo, allowAll{}, NewCache(client, time.Minute))
	svc.WithNow(func() time.Time { return day("2024-06-15") })

	ctx := context.Background()
	first, err := svc.Balance(ctx, 1, Filter{CompanyID: 1})
	require.NoError(t, err)
	loadsAfterFirst := repo.loads

	second, err := svc.Balance(ctx, 1, Filter{CompanyID: 1})
	require.NoError(t, err)
	require.Equal(t, loadsAfterFirst, repo.loads, "second read must come from cache")
	require.True(t, first.Balance.Equal(second.Balance))

	require.NoError(t, svc.InvalidateCache(ctx))
	_, err = svc.Balance(ctx, 1, Filter{CompanyID: 1})
	require.NoError(t, err)
	require.Greater(t, repo.loads, loadsAfterFirst, "bump must force a reload")
}
