package access

import "time"

// Role classifies a membership inside a company.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleFinancial Role = "FINANCIAL"
	RoleDirector  Role = "DIRECTOR"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFinancial, RoleDirector:
		return true
	}
	return false
}

// AllowsWrite reports whether this role can perform write-gated actions.
// Directors are read and reporting only.
func (r Role) AllowsWrite() bool {
	return r == RoleAdmin || r == RoleFinancial
}

// Membership grants a user access into a company, optionally narrowed to
// one sub-unit. A nil SubUnitID means the grant covers every sub-unit of
// the company.
type Membership struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CompanyID      int64     `json:"company_id"`
	SubUnitID      *int64    `json:"sub_unit_id,omitempty"`
	Role           Role      `json:"role"`
	CanRead        bool      `json:"can_read"`
	CanWrite       bool      `json:"can_write"`
	CanListReports bool      `json:"can_list_reports"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Covers reports whether the membership's scope includes the given
// sub-unit. Company-wide rows (nil SubUnitID) cover everything,
// including company-level operations (nil target).
func (m Membership) Covers(subUnitID *int64) bool {
	if m.SubUnitID == nil {
		return true
	}
	if subUnitID == nil {
		return false
	}
	return *m.SubUnitID == *subUnitID
}

// CompanyRef is the slim company projection used in resolved scopes.
type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubUnitRef is the slim sub-unit projection used in resolved scopes.
type SubUnitRef struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
}

// Scope is the resolved visibility for one user: the companies and
// sub-units they may read, plus their current selection.
type Scope struct {
	UserID            int64
	Superuser         bool
	Companies         []CompanyRef
	SubUnits          []SubUnitRef
	SelectedCompanyID int64
	SelectedSubUnitID int64
}
