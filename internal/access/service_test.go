package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memRepo struct {
	memberships []Membership
	nextID      int64
}

func (r *memRepo) ListForUser(_ context.Context, userID int64) ([]Membership, error) {
	var out []Membership
	for _, m := range r.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) Insert(_ context.Context, m Membership) (Membership, error) {
	for _, existing := range r.memberships {
		if existing.UserID == m.UserID && existing.CompanyID == m.CompanyID && sameSubUnit(existing.SubUnitID, m.SubUnitID) {
			return Membership{}, ErrDuplicateMembership
		}
	}
	r.nextID++
	m.ID = r.nextID
	r.memberships = append(r.memberships, m)
	return m, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	for i, m := range r.memberships {
		if m.ID == id {
			r.memberships = append(r.memberships[:i], r.memberships[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func sameSubUnit(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type memDirectory struct {
	companies []CompanyRef
	subUnits  []SubUnitRef
}

func (d *memDirectory) ListCompanies(context.Context) ([]CompanyRef, error) {
	return d.companies, nil
}

func (d *memDirectory) GetCompany(_ context.Context, id int64) (CompanyRef, error) {
	for _, c := range d.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return CompanyRef{}, ErrNotFound
}

func (d *memDirectory) ActiveSubUnits(_ context.Context, companyID int64) ([]SubUnitRef, error) {
	var out []SubUnitRef
	for _, su := range d.subUnits {
		if su.CompanyID == companyID {
			out = append(out, su)
		}
	}
	return out, nil
}

func (d *memDirectory) GetSubUnit(_ context.Context, id int64) (SubUnitRef, error) {
	for _, su := range d.subUnits {
		if su.ID == id {
			return su, nil
		}
	}
	return SubUnitRef{}, ErrNotFound
}

type memUsers struct {
	superusers map[int64]bool
}

func (u *memUsers) IsSuperuser(_ context.Context, userID int64) (bool, error) {
	return u.superusers[userID], nil
}

func ptr(v int64) *int64 { return &v }

func fixtureResolver() (*Resolver, *memRepo) {
	repo := &memRepo{}
	dir := &memDirectory{
		companies: []CompanyRef{
			{ID: 1, Name: "Acme Holdings"},
			{ID: 2, Name: "Borealis Group"},
		},
		subUnits: []SubUnitRef{
			{ID: 10, CompanyID: 1, Name: "North"},
			{ID: 11, CompanyID: 1, Name: "South"},
			{ID: 12, CompanyID: 1, Name: "West"},
			{ID: 20, CompanyID: 2, Name: "Main"},
		},
	}
	users := &memUsers{superusers: map[int64]bool{99: true}}
	return NewResolver(repo, dir, users), repo
}

func TestCompanyWideMembershipSeesAllSubUnits(t *testing.T) {
	resolver, repo := fixtureResolver()
	repo.memberships = []Membership{
		{ID: 1, UserID: 5, CompanyID: 1, SubUnitID: nil, Role: RoleFinancial, CanRead: true},
	}

	visible, err := resolver.VisibleSubUnits(context.Background(), 5, 1)
	require.NoError(t, err)
	require.Len(t, visible, 3)
}

func TestNamedMembershipsSeeOnlyNamedSubUnits(t *testing.T) {
	resolver, repo := fixtureResolver()
	repo.memberships = []Membership{
		{ID: 1, UserID: 5, CompanyID: 1, SubUnitID: ptr(10), Role: RoleDirector, CanRead: true},
		{ID: 2, UserID: 5, CompanyID: 1, SubUnitID: ptr(12), Role: RoleDirector, CanRead: true},
	}

	visible, err := resolver.VisibleSubUnits(context.Background(), 5, 1)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	ids := []int64{visible[0].ID, visible[1].ID}
	require.ElementsMatch(t, []int64{10, 12}, ids)
}

func TestSuperuserSeesEverything(t *testing.T) {
	resolver, _ := fixtureResolver()

	scope, err := resolver.ResolveScope(context.Background(), 99, 1, 11)
	require.NoError(t, err)
	require.True(t, scope.Superuser)
	require.Len(t, scope.Companies, 2)
	require.Len(t, scope.SubUnits, 3)
	require.Equal(t, int64(1), scope.SelectedCompanyID)
	require.Equal(t, int64(11), scope.SelectedSubUnitID)
}

func TestResolveScopeDropsStaleSelection(t *testing.T) {
	resolver, repo := fixtureResolver()
	repo.memberships = []Membership{
		{ID: 1, UserID: 5, CompanyID: 2, SubUnitID: nil, Role: RoleAdmin, CanRead: true, CanWrite: true},
	}

	scope, err := resolver.ResolveScope(context.Background(), 5, 1, 10)
	require.NoError(t, err)
	require.Zero(t, scope.SelectedCompanyID)
	require.Zero(t, scope.SelectedSubUnitID)
	require.Len(t, scope.Companies, 1)
	require.Equal(t, int64(2), scope.Companies[0].ID)
}

func TestCanWriteRequiresWritingRole(t *testing.T) {
	resolver, repo := fixtureResolver()
	repo.memberships = []Membership{
		{ID: 1, UserID: 5, CompanyID: 1, SubUnitID: nil, Role: RoleDirector, CanRead: true, CanWrite: true},
		{ID: 2, UserID: 6, CompanyID: 1, SubUnitID: nil, Role: RoleFinancial, CanRead: true, CanWrite: true},
	}

	ok, err := resolver.CanWrite(context.Background(), 5, 1, nil)
	require.NoError(t, err)
	require.False(t, ok, "director role never writes even with the capability set")

	ok, err = resolver.CanWrite(context.Background(), 6, 1, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCanWriteScopedMembershipDoesNotCoverCompanyLevel(t *testing.T) {
	resolver, repo := fixtureResolver()
	repo.memberships = []Membership{
		{ID: 1, UserID: 5, CompanyID: 1, SubUnitID: ptr(10), Role: RoleAdmin, CanRead: true, CanWrite: true},
	}

	ok, err := resolver.CanWrite(context.Background(), 5, 1, nil)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = resolver.CanWrite(context.Background(), 5, 1, ptr(10))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = resolver.CanWrite(context.Background(), 5, 1, ptr(11))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSelectionAuthorization(t *testing.T) {
	resolver, repo := fixtureResolver()
	repo.memberships = []Membership{
		{ID: 1, UserID: 5, CompanyID: 1, SubUnitID: ptr(10), Role: RoleFinancial, CanRead: true},
	}

	_, err := resolver.AuthorizeCompanySelection(context.Background(), 5, 1)
	require.ErrorIs(t, err, ErrScopeDenied, "company-wide selection needs a company-wide grant")

	su, err := resolver.AuthorizeSubUnitSelection(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Equal(t, "North", su.Name)

	_, err = resolver.AuthorizeSubUnitSelection(context.Background(), 5, 11)
	require.ErrorIs(t, err, ErrScopeDenied)
}

func TestGrantMembershipSingleCompany(t *testing.T) {
	resolver, _ := fixtureResolver()

	first, err := resolver.GrantMembership(context.Background(), GrantInput{
		UserID: 5, CompanyID: 1, SubUnitID: ptr(10), Role: RoleFinancial, CanRead: true, CanWrite: true,
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = resolver.GrantMembership(context.Background(), GrantInput{
		UserID: 5, CompanyID: 1, SubUnitID: ptr(11), Role: RoleFinancial, CanRead: true,
	})
	require.NoError(t, err, "more grants within the same company accumulate")

	_, err = resolver.GrantMembership(context.Background(), GrantInput{
		UserID: 5, CompanyID: 2, Role: RoleFinancial, CanRead: true,
	})
	require.ErrorIs(t, err, ErrCompanyConflict)

	_, err = resolver.GrantMembership(context.Background(), GrantInput{
		UserID: 5, CompanyID: 1, SubUnitID: ptr(10), Role: RoleAdmin, CanRead: true,
	})
	require.ErrorIs(t, err, ErrDuplicateMembership)
}

func TestGrantMembershipRejectsUnknownRole(t *testing.T) {
	resolver, _ := fixtureResolver()
	_, err := resolver.GrantMembership(context.Background(), GrantInput{
		UserID: 5, CompanyID: 1, Role: Role("OBSERVER"), CanRead: true,
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}
