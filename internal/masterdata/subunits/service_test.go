package subunits

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verifintek/verifintek/internal/masterdata/shared"
)

type memRepo struct {
	units  map[int64]SubUnit
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{units: make(map[int64]SubUnit), nextID: 1}
}

func (m *memRepo) List(ctx context.Context, filters shared.ListFilters) ([]SubUnit, int, error) {
	var out []SubUnit
	for _, su := range m.units {
		if filters.CompanyID != nil && su.CompanyID != *filters.CompanyID {
			continue
		}
		if filters.IsActive != nil && su.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, su)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (SubUnit, error) {
	su, ok := m.units[id]
	if !ok {
		return SubUnit{}, shared.ErrNotFound
	}
	return su, nil
}

func (m *memRepo) Create(ctx context.Context, su SubUnit) (SubUnit, error) {
	for _, existing := range m.units {
		if existing.CompanyID == su.CompanyID && existing.Name == su.Name {
			return SubUnit{}, ErrNameTaken
		}
	}
	su.ID = m.nextID
	m.nextID++
	m.units[su.ID] = su
	return su, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, su SubUnit) error {
	if _, ok := m.units[id]; !ok {
		return shared.ErrNotFound
	}
	su.ID = id
	m.units[id] = su
	return nil
}

func (m *memRepo) SetActive(ctx context.Context, id int64, active bool) error {
	su, ok := m.units[id]
	if !ok {
		return shared.ErrNotFound
	}
	su.IsActive = active
	m.units[id] = su
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.units[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.units, id)
	return nil
}

func TestCreateForcesActive(t *testing.T) {
	svc := NewService(newMemRepo())

	su, err := svc.Create(context.Background(), SubUnit{CompanyID: 1, Name: "North", IsActive: false})
	require.NoError(t, err)
	require.True(t, su.IsActive)
}

func TestCreateRequiresCompany(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.Create(context.Background(), SubUnit{Name: "North"})
	require.ErrorIs(t, err, ErrCompanyRequired)
}

func TestCreateRejectsDuplicateNameWithinCompany(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.Create(context.Background(), SubUnit{CompanyID: 1, Name: "North"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), SubUnit{CompanyID: 1, Name: "North"})
	require.ErrorIs(t, err, ErrNameTaken)

	// Same name under another company is fine.
	_, err = svc.Create(context.Background(), SubUnit{CompanyID: 2, Name: "North"})
	require.NoError(t, err)
}

func TestDeactivateAndActivate(t *testing.T) {
	svc := NewService(newMemRepo())

	su, err := svc.Create(context.Background(), SubUnit{CompanyID: 1, Name: "North"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), su.ID))
	got, err := svc.Get(context.Background(), su.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.NoError(t, svc.Activate(context.Background(), su.ID))
	got, err = svc.Get(context.Background(), su.ID)
	require.NoError(t, err)
	require.True(t, got.IsActive)
}

func TestListFiltersByActive(t *testing.T) {
	svc := NewService(newMemRepo())

	a, err := svc.Create(context.Background(), SubUnit{CompanyID: 1, Name: "North"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), SubUnit{CompanyID: 1, Name: "South"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), a.ID))

	active := true
	units, total, err := svc.List(context.Background(), shared.ListFilters{IsActive: &active})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "South", units[0].Name)
}
