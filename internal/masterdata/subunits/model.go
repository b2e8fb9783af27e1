package subunits

import "time"

// SubUnit is an operating unit inside a company. Names are unique
// within the owning company; inactive units stay on record but drop out
// of scope resolution and new movement capture.
type SubUnit struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
