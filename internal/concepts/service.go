package concepts

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates the concept does not exist.
	ErrNotFound = errors.New("concepts: not found")
	// ErrNameRequired indicates an empty concept name.
	ErrNameRequired = errors.New("concepts: name required")
	// ErrInUse indicates the concept is still referenced by movements and
	// cannot be deleted.
	ErrInUse = errors.New("concepts: concept is referenced by movements")
)

// RepositoryPort defines data access for concepts.
type RepositoryPort interface {
	FindByName(ctx context.Context, name string) (*Concept, error)
	Insert(ctx context.Context, concept Concept) (*Concept, error)
	List(ctx context.Context) ([]Concept, error)
	Delete(ctx context.Context, id int64) error
}

// Service resolves and manages concepts.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ResolveOrCreate looks a concept up by name and creates it when missing.
// The insert races against concurrent creators of the same name; on a
// duplicate-name conflict the lookup is retried once so both callers end up
// with the same row.
func (s *Service) ResolveOrCreate(ctx context.Context, name string, suggested SuggestedType) (Concept, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Concept{}, ErrNameRequired
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return *existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Concept{}, err
	}

	created, err := s.repo.Insert(ctx, Concept{Name: name, SuggestedType: suggested})
	if err == nil {
		return *created, nil
	}
	if !errors.Is(err, ErrDuplicateName) {
		return Concept{}, err
	}

	// Lost the creation race; the winner's row is authoritative.
	winner, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return Concept{}, err
	}
	return *winner, nil
}

// List returns all concepts ordered by name.
func (s *Service) List(ctx context.Context) ([]Concept, error) {
	return s.repo.List(ctx)
}

// Delete removes an unused concept. Concepts referenced by movements are
// protected and refuse deletion.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
