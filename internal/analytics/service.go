package analytics

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrPermissionDenied indicates the caller cannot read or report on the
// requested scope.
var ErrPermissionDenied = errors.New("analytics: permission denied")

const (
	// TrendMonths is the default trailing window for the month series.
	TrendMonths = 12
	// ProjectionMonths is the default forward window for unpaid
	// installments.
	ProjectionMonths = 6
)

// AccessChecker gates report computation by membership scope.
type AccessChecker interface {
	CanListReports(ctx context.Context, userID, companyID int64, subUnitID *int64) (bool, error)
}

// Service coordinates report computation with the scope gate and the
// cache layer. Concurrent identical requests collapse through
// singleflight so a cold cache is only filled once.
type Service struct {
	repo   Repository
	cache  *Cache
	access AccessChecker
	group  singleflight.Group
	now    func() time.Time
}

// NewService wires a Repository with the access gate and cache helper.
func NewService(repo Repository, access AccessChecker, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, access: access, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Balance computes the consolidated position for the scope. Starting
// capital only participates when no sub-unit is selected.
func (s *Service) Balance(ctx context.Context, userID int64, filter Filter) (BalanceReport, error) {
	var report BalanceReport
	err := s.cached(ctx, userID, "balance", filter, &report, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.MovementRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		if filter.SubUnitID != nil {
			return ComputeBalance(rows, nil), nil
		}
		capital, err := s.repo.StartingCapital(ctx, filter.CompanyID)
		if err != nil {
			return nil, err
		}
		return ComputeBalance(rows, capital), nil
	})
	return report, err
}

// Cashflow computes the paid-versus-scheduled month series. A missing
// window defaults to the trailing twelve months.
func (s *Service) Cashflow(ctx context.Context, userID int64, filter Filter) ([]CashflowPoint, error) {
	if filter.From.IsZero() || filter.To.IsZero() {
		filter.To = s.today()
		filter.From = filter.To.AddDate(0, -(TrendMonths - 1), 0)
	}
	var points []CashflowPoint
	err := s.cached(ctx, userID, "cashflow", filter, &points, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.InstallmentRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		return ComputeCashflow(rows, filter.From, filter.To), nil
	})
	return points, err
}

// Aging splits unpaid installments into overdue and upcoming buckets.
func (s *Service) Aging(ctx context.Context, userID int64, filter Filter) (AgingReport, error) {
	asOf := s.today()
	var report AgingReport
	err := s.cached(ctx, userID, "aging", filter, &report, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.InstallmentRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		return ComputeAging(rows, asOf), nil
	}, asOf.Format("2006-01-02"))
	return report, err
}

// Breakdown computes per-sub-unit net contributions.
func (s *Service) Breakdown(ctx context.Context, userID int64, filter Filter) ([]SubUnitLine, error) {
	var lines []SubUnitLine
	err := s.cached(ctx, userID, "breakdown", filter, &lines, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.MovementRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		names, err := s.repo.SubUnitNames(ctx, filter.CompanyID)
		if err != nil {
			return nil, err
		}
		return ComputeBreakdown(rows, names), nil
	})
	return lines, err
}

// Trend returns the trailing month series of assets and liabilities.
func (s *Service) Trend(ctx context.Context, userID int64, filter Filter, months int) ([]TrendPoint, error) {
	if months < 1 {
		months = TrendMonths
	}
	end := s.today()
	var points []TrendPoint
	err := s.cached(ctx, userID, "trend", filter, &points, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.MovementRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		return ComputeTrend(rows, end, months), nil
	}, "m", formatInt(int64(months)), end.Format("2006-01"))
	return points, err
}

// Projection returns the upcoming unpaid installment series.
func (s *Service) Projection(ctx context.Context, userID int64, filter Filter, months int) ([]ProjectionPoint, error) {
	if months < 1 {
		months = ProjectionMonths
	}
	start := s.today()
	var points []ProjectionPoint
	err := s.cached(ctx, userID, "projection", filter, &points, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.InstallmentRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		return ComputeProjection(rows, start, months), nil
	}, "m", formatInt(int64(months)), start.Format("2006-01"))
	return points, err
}

// Aggregate assembles the full report bundle for one scope.
func (s *Service) Aggregate(ctx context.Context, userID int64, filter Filter) (ReportBundle, error) {
	if err := s.authorize(ctx, userID, filter); err != nil {
		return ReportBundle{}, err
	}
	bundle := ReportBundle{
		Filter:       filter,
		GeneratedFor: userID,
		GeneratedAt:  s.now().UTC(),
	}
	var err error
	if bundle.Balance, err = s.Balance(ctx, userID, filter); err != nil {
		return ReportBundle{}, err
	}
	if bundle.Cashflow, err = s.Cashflow(ctx, userID, filter); err != nil {
		return ReportBundle{}, err
	}
	if bundle.Aging, err = s.Aging(ctx, userID, filter); err != nil {
		return ReportBundle{}, err
	}
	if bundle.Breakdown, err = s.Breakdown(ctx, userID, filter); err != nil {
		return ReportBundle{}, err
	}
	if bundle.Trend, err = s.Trend(ctx, userID, filter, TrendMonths); err != nil {
		return ReportBundle{}, err
	}
	if bundle.Projection, err = s.Projection(ctx, userID, filter, ProjectionMonths); err != nil {
		return ReportBundle{}, err
	}
	return bundle, nil
}

// InvalidateCache bumps the report cache version. Called after ledger
// mutations.
func (s *Service) InvalidateCache(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) authorize(ctx context.Context, userID int64, filter Filter) error {
	ok, err := s.access.CanListReports(ctx, userID, filter.CompanyID, filter.SubUnitID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func (s *Service) cached(ctx context.Context, userID int64, kind string, filter Filter, dest interface{}, loader func(context.Context) (interface{}, error), extra ...string) error {
	if err := s.authorize(ctx, userID, filter); err != nil {
		return err
	}
	keyBase := keyReport(kind, filter, extra...)
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return err
	}
	sfLoader := func(ctx context.Context) (interface{}, error) {
		value, err, _ := s.group.Do(key, func() (interface{}, error) {
			return loader(ctx)
		})
		return value, err
	}
	return s.cache.FetchJSON(ctx, key, dest, sfLoader)
}

func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
