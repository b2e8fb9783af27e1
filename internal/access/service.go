package access

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("access: not found")
	// ErrInvalidRole indicates an unknown role value.
	ErrInvalidRole = errors.New("access: invalid role")
	// ErrDuplicateMembership indicates a grant already exists for the
	// same (user, company, sub-unit) key.
	ErrDuplicateMembership = errors.New("access: membership already exists")
	// ErrCompanyConflict indicates the user already holds memberships
	// in a different company. A user belongs to one parent company at
	// a time.
	ErrCompanyConflict = errors.New("access: user already belongs to another company")
	// ErrScopeDenied indicates the caller may not select or act on the
	// requested scope.
	ErrScopeDenied = errors.New("access: scope denied")
)

// RepositoryPort persists membership grants.
type RepositoryPort interface {
	ListForUser(ctx context.Context, userID int64) ([]Membership, error)
	Insert(ctx context.Context, m Membership) (Membership, error)
	Delete(ctx context.Context, id int64) error
}

// Directory looks up companies and sub-units for scope resolution.
type Directory interface {
	ListCompanies(ctx context.Context) ([]CompanyRef, error)
	GetCompany(ctx context.Context, id int64) (CompanyRef, error)
	ActiveSubUnits(ctx context.Context, companyID int64) ([]SubUnitRef, error)
	GetSubUnit(ctx context.Context, id int64) (SubUnitRef, error)
}

// UserFlags exposes the per-user flags the resolver needs.
type UserFlags interface {
	IsSuperuser(ctx context.Context, userID int64) (bool, error)
}

// Resolver answers visibility and permission questions for one user.
type Resolver struct {
	repo      RepositoryPort
	directory Directory
	users     UserFlags
}

// NewResolver constructs a Resolver.
func NewResolver(repo RepositoryPort, directory Directory, users UserFlags) *Resolver {
	return &Resolver{repo: repo, directory: directory, users: users}
}

// ResolveScope computes the companies and sub-units visible to the user
// and validates the current selection against them. An invalid selection
// is dropped from the result rather than surfaced as an error; callers
// treat the returned scope as authoritative.
func (r *Resolver) ResolveScope(ctx context.Context, userID, selectedCompanyID, selectedSubUnitID int64) (Scope, error) {
	super, err := r.users.IsSuperuser(ctx, userID)
	if err != nil {
		return Scope{}, err
	}
	scope := Scope{UserID: userID, Superuser: super}

	scope.Companies, err = r.visibleCompanies(ctx, userID, super)
	if err != nil {
		return Scope{}, err
	}

	if selectedCompanyID != 0 && containsCompany(scope.Companies, selectedCompanyID) {
		scope.SelectedCompanyID = selectedCompanyID
		scope.SubUnits, err = r.VisibleSubUnits(ctx, userID, selectedCompanyID)
		if err != nil {
			return Scope{}, err
		}
		if selectedSubUnitID != 0 && containsSubUnit(scope.SubUnits, selectedSubUnitID) {
			scope.SelectedSubUnitID = selectedSubUnitID
		}
	}
	return scope, nil
}

// VisibleSubUnits returns the active sub-units of a company the user may
// read. A company-wide membership exposes every active sub-unit;
// otherwise only the explicitly named ones are visible.
func (r *Resolver) VisibleSubUnits(ctx context.Context, userID, companyID int64) ([]SubUnitRef, error) {
	super, err := r.users.IsSuperuser(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := r.directory.ActiveSubUnits(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if super {
		return all, nil
	}

	memberships, err := r.readMemberships(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	named := make(map[int64]bool)
	for _, m := range memberships {
		if m.SubUnitID == nil {
			return all, nil
		}
		named[*m.SubUnitID] = true
	}
	visible := make([]SubUnitRef, 0, len(named))
	for _, su := range all {
		if named[su.ID] {
			visible = append(visible, su)
		}
	}
	return visible, nil
}

// CanRead reports whether the user may read the given scope. A nil
// sub-unit means company-level access, which requires a company-wide
// membership.
func (r *Resolver) CanRead(ctx context.Context, userID, companyID int64, subUnitID *int64) (bool, error) {
	super, err := r.users.IsSuperuser(ctx, userID)
	if err != nil {
		return false, err
	}
	if super {
		return true, nil
	}
	memberships, err := r.readMemberships(ctx, userID, companyID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.Covers(subUnitID) {
			return true, nil
		}
	}
	return false, nil
}

// CanWrite reports whether the user may mutate the given scope. Writing
// requires read access plus a covering membership with the write
// capability and a writing role.
func (r *Resolver) CanWrite(ctx context.Context, userID, companyID int64, subUnitID *int64) (bool, error) {
	readable, err := r.CanRead(ctx, userID, companyID, subUnitID)
	if err != nil || !readable {
		return false, err
	}
	super, err := r.users.IsSuperuser(ctx, userID)
	if err != nil {
		return false, err
	}
	if super {
		return true, nil
	}
	memberships, err := r.repo.ListForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.CompanyID == companyID && m.CanWrite && m.Role.AllowsWrite() && m.Covers(subUnitID) {
			return true, nil
		}
	}
	return false, nil
}

// CanListReports reports whether the user may open aggregated reports
// for the given scope.
func (r *Resolver) CanListReports(ctx context.Context, userID, companyID int64, subUnitID *int64) (bool, error) {
	super, err := r.users.IsSuperuser(ctx, userID)
	if err != nil {
		return false, err
	}
	if super {
		return true, nil
	}
	memberships, err := r.repo.ListForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.CompanyID == companyID && m.CanRead && m.CanListReports && m.Covers(subUnitID) {
			return true, nil
		}
	}
	return false, nil
}

// AuthorizeCompanySelection validates that the user may select the
// company as their current scope. Company-wide selection requires a
// company-wide membership.
func (r *Resolver) AuthorizeCompanySelection(ctx context.Context, userID, companyID int64) (CompanyRef, error) {
	company, err := r.directory.GetCompany(ctx, companyID)
	if err != nil {
		return CompanyRef{}, err
	}
	ok, err := r.CanRead(ctx, userID, companyID, nil)
	if err != nil {
		return CompanyRef{}, err
	}
	if !ok {
		return CompanyRef{}, ErrScopeDenied
	}
	return company, nil
}

// AuthorizeSubUnitSelection validates that the user may select the
// sub-unit as their current scope.
func (r *Resolver) AuthorizeSubUnitSelection(ctx context.Context, userID, subUnitID int64) (SubUnitRef, error) {
	su, err := r.directory.GetSubUnit(ctx, subUnitID)
	if err != nil {
		return SubUnitRef{}, err
	}
	ok, err := r.CanRead(ctx, userID, su.CompanyID, &su.ID)
	if err != nil {
		return SubUnitRef{}, err
	}
	if !ok {
		return SubUnitRef{}, ErrScopeDenied
	}
	return su, nil
}

// GrantInput carries the fields of a new membership grant.
type GrantInput struct {
	UserID         int64
	CompanyID      int64
	SubUnitID      *int64
	Role           Role
	CanRead        bool
	CanWrite       bool
	CanListReports bool
}

// GrantMembership creates a membership. A user may hold grants in only
// one parent company; additional grants for sub-units of that same
// company accumulate.
func (r *Resolver) GrantMembership(ctx context.Context, input GrantInput) (Membership, error) {
	if !input.Role.Valid() {
		return Membership{}, ErrInvalidRole
	}
	existing, err := r.repo.ListForUser(ctx, input.UserID)
	if err != nil {
		return Membership{}, err
	}
	for _, m := range existing {
		if m.CompanyID != input.CompanyID {
			return Membership{}, ErrCompanyConflict
		}
	}
	return r.repo.Insert(ctx, Membership{
		UserID:         input.UserID,
		CompanyID:      input.CompanyID,
		SubUnitID:      input.SubUnitID,
		Role:           input.Role,
		CanRead:        input.CanRead,
		CanWrite:       input.CanWrite,
		CanListReports: input.CanListReports,
	})
}

// RevokeMembership deletes a grant by id.
func (r *Resolver) RevokeMembership(ctx context.Context, id int64) error {
	return r.repo.Delete(ctx, id)
}

func (r *Resolver) visibleCompanies(ctx context.Context, userID int64, super bool) ([]CompanyRef, error) {
	if super {
		return r.directory.ListCompanies(ctx)
	}
	memberships, err := r.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool)
	var companies []CompanyRef
	for _, m := range memberships {
		if !m.CanRead || seen[m.CompanyID] {
			continue
		}
		seen[m.CompanyID] = true
		company, err := r.directory.GetCompany(ctx, m.CompanyID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		companies = append(companies, company)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].Name < companies[j].Name })
	return companies, nil
}

func (r *Resolver) readMemberships(ctx context.Context, userID, companyID int64) ([]Membership, error) {
	all, err := r.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []Membership
	for _, m := range all {
		if m.CompanyID == companyID && m.CanRead {
			out = append(out, m)
		}
	}
	return out, nil
}

func containsCompany(list []CompanyRef, id int64) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}

func containsSubUnit(list []SubUnitRef, id int64) bool {
	for _, su := range list {
		if su.ID == id {
			return true
		}
	}
	return false
}
