package movements

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/verifintek/verifintek/internal/concepts"
	"github.com/verifintek/verifintek/internal/money"
	"github.com/verifintek/verifintek/internal/shared"
)

// LedgerTx exposes the rows of one movement inside a transaction that holds
// the movement's row lock. Edits and redistribution run against it so two
// concurrent installment edits on the same movement serialize instead of
// racing.
type LedgerTx interface {
	Movement(ctx context.Context) (*Movement, error)
	Installments(ctx context.Context) ([]Installment, error)
	SaveInstallment(ctx context.Context, ins Installment) error
	SaveAmounts(ctx context.Context, rows []Installment) error
}

// RepositoryPort defines data access for movements and installments.
type RepositoryPort interface {
	CreateMovement(ctx context.Context, mov *Movement, installments []Installment) (*Movement, error)
	GetMovement(ctx context.Context, id int64) (*Movement, error)
	ListMovements(ctx context.Context, filter ListFilter) ([]Movement, error)
	DeleteMovement(ctx context.Context, id int64) error
	GetInstallment(ctx context.Context, id int64) (*Installment, error)
	ListInstallments(ctx context.Context, movementID int64) ([]Installment, error)
	WithMovementLock(ctx context.Context, movementID int64, fn func(ctx context.Context, tx LedgerTx) error) error
}

// ConceptResolver resolves a concept name to its record, creating it when
// missing.
type ConceptResolver interface {
	ResolveOrCreate(ctx context.Context, name string, suggested concepts.SuggestedType) (concepts.Concept, error)
}

// Authorizer gates mutations by membership scope.
type Authorizer interface {
	CanWrite(ctx context.Context, userID, companyID int64, subUnitID *int64) (bool, error)
	CanRead(ctx context.Context, userID, companyID int64, subUnitID *int64) (bool, error)
}

// ListFilter narrows movement listings.
type ListFilter struct {
	CompanyID int64
	SubUnitID *int64
	Type      Type
	ConceptID int64
	FromDate  time.Time
	ToDate    time.Time
	Limit     int
	Offset    int
}

// CreateMovementInput carries the parameters for registering a movement.
type CreateMovementInput struct {
	CompanyID        int64
	SubUnitID        *int64
	CapturedBy       int64
	Type             Type
	ConceptName      string
	SuggestedType    concepts.SuggestedType
	TotalAmount      decimal.Decimal
	StartDate        time.Time
	Frequency        Frequency
	InstallmentCount int
	Notes            string
}

// EditInstallmentInput updates an installment's payment state. The amount is
// never caller-settable: amounts are derived by generation and
// redistribution only.
type EditInstallmentInput struct {
	ActorID  int64
	PaidDate *time.Time
}

// MovementView pairs a movement with its computed settlement status. The
// base entity is never mutated with display data.
type MovementView struct {
	Movement     Movement
	Installments []Installment
	Settlement   Settlement
}

// Service implements the movement and payment-ledger operations.
type Service struct {
	repo     RepositoryPort
	concepts ConceptResolver
	authz    Authorizer
	now      func() time.Time
}

// NewService builds a Service.
func NewService(repo RepositoryPort, resolver ConceptResolver, authz Authorizer) *Service {
	return &Service{repo: repo, concepts: resolver, authz: authz, now: time.Now}
}

// CreateMovement validates the input, resolves the concept, persists the
// movement with its generated installment plan and returns it with the
// folio populated.
func (s *Service) CreateMovement(ctx context.Context, input CreateMovementInput) (*Movement, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidType
	}
	if strings.TrimSpace(input.ConceptName) == "" {
		return nil, ErrMissingConcept
	}
	if !input.TotalAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if input.StartDate.IsZero() {
		return nil, ErrMissingStartDate
	}
	if _, ok := input.Frequency.StepDays(); !ok {
		return nil, ErrUnknownFrequency
	}
	if input.InstallmentCount < 1 {
		input.InstallmentCount = 1
	}

	if err := s.requireWrite(ctx, input.CapturedBy, input.CompanyID, input.SubUnitID); err != nil {
		return nil, err
	}

	concept, err := s.concepts.ResolveOrCreate(ctx, input.ConceptName, input.SuggestedType)
	if err != nil {
		return nil, err
	}

	total := money.Quantize(input.TotalAmount)
	installments, err := BuildSchedule(total, input.StartDate, input.Frequency, input.InstallmentCount)
	if err != nil {
		return nil, err
	}

	mov := &Movement{
		CompanyID:        input.CompanyID,
		SubUnitID:        input.SubUnitID,
		CapturedBy:       &input.CapturedBy,
		Type:             input.Type,
		ConceptID:        concept.ID,
		TotalAmount:      total,
		RegisteredOn:     s.today(),
		StartDate:        input.StartDate,
		InstallmentCount: input.InstallmentCount,
		Frequency:        input.Frequency,
		Notes:            input.Notes,
		WorkflowStatus:   WorkflowPending,
	}
	return s.repo.CreateMovement(ctx, mov, installments)
}

// EditInstallment applies a paid-date change to one installment and
// redistributes the movement's remaining unpaid balance. The whole
// read-modify-write runs under the movement's row lock.
func (s *Service) EditInstallment(ctx context.Context, installmentID int64, input EditInstallmentInput) (*Installment, error) {
	target, err := s.repo.GetInstallment(ctx, installmentID)
	if err != nil {
		return nil, err
	}

	var updated Installment
	err = s.repo.WithMovementLock(ctx, target.MovementID, func(ctx context.Context, tx LedgerTx) error {
		mov, err := tx.Movement(ctx)
		if err != nil {
			return err
		}
		if err := s.requireWrite(ctx, input.ActorID, mov.CompanyID, mov.SubUnitID); err != nil {
			return err
		}

		rows, err := tx.Installments(ctx)
		if err != nil {
			return err
		}

		idx := -1
		for i := range rows {
			if rows[i].ID == installmentID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrNotFound
		}

		rows[idx].PaidDate = input.PaidDate
		rows[idx].Paid = rows[idx].IsPaid()
		if err := tx.SaveInstallment(ctx, rows[idx]); err != nil {
			return err
		}

		if rebalanced := RedistributePending(mov.TotalAmount, rows); rebalanced != nil {
			if err := tx.SaveAmounts(ctx, rebalanced); err != nil {
				return err
			}
			for _, p := range rebalanced {
				if p.ID == installmentID {
					rows[idx].Amount = p.Amount
				}
			}
		}

		updated = rows[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteMovement removes a movement and, by cascade, its installments.
func (s *Service) DeleteMovement(ctx context.Context, actorID, movementID int64) error {
	mov, err := s.repo.GetMovement(ctx, movementID)
	if err != nil {
		return err
	}
	if err := s.requireWrite(ctx, actorID, mov.CompanyID, mov.SubUnitID); err != nil {
		return err
	}
	return s.repo.DeleteMovement(ctx, movementID)
}

// GetMovement returns a movement with its installments and computed
// settlement status, scope-checked for the actor.
func (s *Service) GetMovement(ctx context.Context, actorID, movementID int64) (*MovementView, error) {
	mov, err := s.repo.GetMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	ok, err := s.authz.CanRead(ctx, actorID, mov.CompanyID, mov.SubUnitID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrScopeDenied
	}
	installments, err := s.repo.ListInstallments(ctx, movementID)
	if err != nil {
		return nil, err
	}
	return &MovementView{
		Movement:     *mov,
		Installments: installments,
		Settlement:   Classify(*mov, installments, s.today()),
	}, nil
}

// ListMovements returns scope-checked movements with settlement statuses.
func (s *Service) ListMovements(ctx context.Context, actorID int64, filter ListFilter) ([]MovementView, error) {
	ok, err := s.authz.CanRead(ctx, actorID, filter.CompanyID, filter.SubUnitID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrScopeDenied
	}

	rows, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	today := s.today()
	views := make([]MovementView, 0, len(rows))
	for _, mov := range rows {
		installments, err := s.repo.ListInstallments(ctx, mov.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, MovementView{
			Movement:     mov,
			Installments: installments,
			Settlement:   Classify(mov, installments, today),
		})
	}
	return views, nil
}

// Status recomputes the settlement status for a movement.
func (s *Service) Status(m Movement, installments []Installment) Settlement {
	return Classify(m, installments, s.today())
}

// today truncates the service clock to a civil date in UTC. Overdue is
// decided at date granularity, so an installment due today stays pending
// for the whole day.
func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) requireWrite(ctx context.Context, userID, companyID int64, subUnitID *int64) error {
	ok, err := s.authz.CanWrite(ctx, userID, companyID, subUnitID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrWriteDenied
	}
	return nil
}
