package movements

import "errors"

var (
	// ErrNotFound indicates the movement or installment does not exist.
	ErrNotFound = errors.New("movements: not found")
	// ErrUnknownFrequency indicates an unsupported payment frequency.
	ErrUnknownFrequency = errors.New("movements: unknown payment frequency")
	// ErrInvalidType indicates an unknown movement type.
	ErrInvalidType = errors.New("movements: invalid movement type")
	// ErrInvalidAmount indicates a missing or non-positive total amount.
	ErrInvalidAmount = errors.New("movements: total amount must be positive")
	// ErrMissingStartDate indicates the first-installment anchor date is absent.
	ErrMissingStartDate = errors.New("movements: start date required")
	// ErrMissingConcept indicates an empty concept name.
	ErrMissingConcept = errors.New("movements: concept name required")
)
