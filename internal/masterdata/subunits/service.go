package subunits

import (
	"context"
	"errors"

	"github.com/verifintek/verifintek/internal/masterdata/shared"
)

// ErrNameTaken indicates another sub-unit of the same company already
// uses the name.
var ErrNameTaken = errors.New("sub-unit name already in use within company")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]SubUnit, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (SubUnit, error) {
	if id <= 0 {
		return SubUnit{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, su SubUnit) (SubUnit, error) {
	if err := s.validate(su); err != nil {
		return SubUnit{}, err
	}
	su.IsActive = true
	return s.repo.Create(ctx, su)
}

func (s *Service) Update(ctx context.Context, id int64, su SubUnit) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(su); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, su)
}

// Deactivate retires a sub-unit without deleting its history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.SetActive(ctx, id, false)
}

// Activate restores a retired sub-unit.
func (s *Service) Activate(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.SetActive(ctx, id, true)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
