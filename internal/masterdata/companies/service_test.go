package companies

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/verifintek/verifintek/internal/masterdata/shared"
)

type memRepo struct {
	companies map[int64]Company
	nextID    int64
}

func newMemRepo() *memRepo {
	return &memRepo{companies: make(map[int64]Company), nextID: 1}
}

func (m *memRepo) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	var out []Company
	for _, c := range m.companies {
		if filters.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Search)) {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return Company{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memRepo) Create(ctx context.Context, company Company) (Company, error) {
	for _, existing := range m.companies {
		if existing.Name == company.Name {
			return Company{}, ErrNameTaken
		}
	}
	company.ID = m.nextID
	m.nextID++
	m.companies[company.ID] = company
	return company, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, company Company) error {
	if _, ok := m.companies[id]; !ok {
		return shared.ErrNotFound
	}
	company.ID = id
	m.companies[id] = company
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.companies[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.companies, id)
	return nil
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.Create(context.Background(), Company{Name: "   "})
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestCreateRejectsNegativeCapital(t *testing.T) {
	svc := NewService(newMemRepo())
	capital := decimal.NewFromInt(-100)

	_, err := svc.Create(context.Background(), Company{Name: "Acme", StartingCapital: &capital})
	require.ErrorIs(t, err, ErrNegativeCapital)
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.Create(context.Background(), Company{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Company{Name: "Acme"})
	require.ErrorIs(t, err, ErrNameTaken)
}

func TestGetRejectsInvalidID(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestUpdateKeepsStartingCapital(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	capital := decimal.NewFromInt(5000)

	created, err := svc.Create(context.Background(), Company{Name: "Acme", StartingCapital: &capital})
	require.NoError(t, err)

	created.Address = "Main St 1"
	require.NoError(t, svc.Update(context.Background(), created.ID, created))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Main St 1", got.Address)
	require.NotNil(t, got.StartingCapital)
	require.True(t, got.StartingCapital.Equal(capital))
}
