package subunits

import (
	"errors"
	"strings"
)

var (
	ErrNameRequired    = errors.New("sub-unit name is required")
	ErrCompanyRequired = errors.New("sub-unit company is required")
)

func (s *Service) validate(su SubUnit) error {
	if su.CompanyID <= 0 {
		return ErrCompanyRequired
	}
	if strings.TrimSpace(su.Name) == "" {
		return ErrNameRequired
	}
	return nil
}
