package concepts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memRepo struct {
	byName   map[string]Concept
	nextID   int64
	missOnce bool
	inserts  int
}

func newMemRepo() *memRepo {
	return &memRepo{byName: make(map[string]Concept)}
}

func (r *memRepo) FindByName(_ context.Context, name string) (*Concept, error) {
	if r.missOnce {
		r.missOnce = false
		return nil, ErrNotFound
	}
	if c, ok := r.byName[name]; ok {
		return &c, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) Insert(_ context.Context, concept Concept) (*Concept, error) {
	r.inserts++
	if _, ok := r.byName[concept.Name]; ok {
		return nil, ErrDuplicateName
	}
	r.nextID++
	concept.ID = r.nextID
	r.byName[concept.Name] = concept
	return &concept, nil
}

func (r *memRepo) List(context.Context) ([]Concept, error) {
	out := make([]Concept, 0, len(r.byName))
	for _, c := range r.byName {
		out = append(out, c)
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	for name, c := range r.byName {
		if c.ID == id {
			delete(r.byName, name)
			return nil
		}
	}
	return ErrNotFound
}

func TestResolveOrCreateCreatesOnce(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.ResolveOrCreate(ctx, "Rent", SuggestedLiability)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := svc.ResolveOrCreate(ctx, "Rent", SuggestedLiability)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, repo.inserts)
}

func TestResolveOrCreateTrimsName(t *testing.T) {
	svc := NewService(newMemRepo())

	created, err := svc.ResolveOrCreate(context.Background(), "  Rent  ", SuggestedNone)
	require.NoError(t, err)
	require.Equal(t, "Rent", created.Name)

	_, err = svc.ResolveOrCreate(context.Background(), "   ", SuggestedNone)
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestResolveOrCreateRetriesLookupAfterLostRace(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// Simulate another caller winning the insert between our lookup and
	// insert: the first lookup misses, the insert reports a duplicate,
	// and the retry lookup sees the winner's row.
	repo.byName["Rent"] = Concept{ID: 99, Name: "Rent"}
	repo.missOnce = true

	resolved, err := svc.ResolveOrCreate(ctx, "Rent", SuggestedNone)
	require.NoError(t, err)
	require.Equal(t, int64(99), resolved.ID)
}
