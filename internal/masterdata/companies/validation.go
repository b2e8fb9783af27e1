package companies

import (
	"errors"
	"strings"
)

var (
	ErrNameRequired    = errors.New("company name is required")
	ErrNegativeCapital = errors.New("starting capital cannot be negative")
)

func (s *Service) validate(c Company) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if c.StartingCapital != nil && c.StartingCapital.IsNegative() {
		return ErrNegativeCapital
	}
	return nil
}
