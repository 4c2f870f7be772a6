package pets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test tx (in-memory, con hooks para simular carreras)
// -------------------------

type fakeTx struct {
	groups map[string]Group // NameKey -> group
	traits map[string]Trait

	// onCreateGroup/onCreateTrait corren antes del insert; si devuelven error
	// el insert falla con ese error.
	onCreateGroup func(g Group) error
	onCreateTrait func(t Trait) error

	findErr   error
	findCalls int
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		groups: map[string]Group{},
		traits: map[string]Trait{},
	}
}

func (f *fakeTx) FindGroupByName(ctx context.Context, name string) (Group, error) {
	f.findCalls++
	if f.findErr != nil {
		return Group{}, f.findErr
	}
	g, ok := f.groups[NameKey(name)]
	if !ok {
		return Group{}, ErrNotFound
	}
	return g, nil
}

func (f *fakeTx) CreateGroup(ctx context.Context, g Group) error {
	if f.onCreateGroup != nil {
		if err := f.onCreateGroup(g); err != nil {
			return err
		}
	}
	if _, ok := f.groups[NameKey(g.ScientificName)]; ok {
		return ErrDuplicate
	}
	f.groups[NameKey(g.ScientificName)] = g
	return nil
}

func (f *fakeTx) FindTraitByName(ctx context.Context, name string) (Trait, error) {
	f.findCalls++
	if f.findErr != nil {
		return Trait{}, f.findErr
	}
	t, ok := f.traits[NameKey(name)]
	if !ok {
		return Trait{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeTx) CreateTrait(ctx context.Context, t Trait) error {
	if f.onCreateTrait != nil {
		if err := f.onCreateTrait(t); err != nil {
			return err
		}
	}
	if _, ok := f.traits[NameKey(t.Name)]; ok {
		return ErrDuplicate
	}
	f.traits[NameKey(t.Name)] = t
	return nil
}

func (f *fakeTx) GetPet(ctx context.Context, id string) (Pet, error) { return Pet{}, ErrNotFound }
func (f *fakeTx) CreatePet(ctx context.Context, p Pet) error          { return nil }
func (f *fakeTx) UpdatePet(ctx context.Context, p Pet) error          { return nil }
func (f *fakeTx) DeletePet(ctx context.Context, id string) error      { return ErrNotFound }

func (f *fakeTx) AddPetTrait(ctx context.Context, petID, traitID string) error {
	return nil
}

func (f *fakeTx) ReplacePetTraits(ctx context.Context, petID string, traitIDs []string) error {
	return nil
}

type outcomeLog struct {
	got []string
}

func (o *outcomeLog) observe(entity, outcome string) {
	o.got = append(o.got, entity+":"+outcome)
}

func newTestResolver(obs *outcomeLog) *Resolver {
	n := 0
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	return NewResolver(
		func() string { n++; return fmt.Sprintf("id-%d", n) },
		func() time.Time { return now },
		obs.observe,
	)
}

// -------------------------
// Tests
// -------------------------

func TestResolver_ResolveGroup_CreatesWhenMissing(t *testing.T) {
	obs := &outcomeLog{}
	r := newTestResolver(obs)
	tx := newFakeTx()

	g, err := r.ResolveGroup(context.Background(), tx, Group{ScientificName: "  Canis lupus familiaris "})
	require.NoError(t, err)

	assert.Equal(t, "id-1", g.ID)
	assert.Equal(t, "Canis lupus familiaris", g.ScientificName)
	assert.False(t, g.CreatedAt.IsZero())
	assert.Equal(t, []string{"group:created"}, obs.got)
}

func TestResolver_ResolveGroup_ReturnsExistingUnmodified(t *testing.T) {
	obs := &outcomeLog{}
	r := newTestResolver(obs)
	tx := newFakeTx()

	existing := Group{ID: "g-1", ScientificName: "Canis lupus familiaris", CreatedAt: time.Unix(0, 0).UTC()}
	tx.groups[NameKey(existing.ScientificName)] = existing

	g, err := r.ResolveGroup(context.Background(), tx, Group{ScientificName: "CANIS LUPUS FAMILIARIS"})
	require.NoError(t, err)

	assert.Equal(t, existing, g, "first write wins: candidate fields are discarded")
	assert.Len(t, tx.groups, 1)
	assert.Equal(t, []string{"group:found"}, obs.got)
}

func TestResolver_ResolveTrait_RetriesLookupAfterDuplicate(t *testing.T) {
	obs := &outcomeLog{}
	r := newTestResolver(obs)
	tx := newFakeTx()

	// Otro request inserta "Friendly" justo entre el lookup y nuestro insert.
	winner := Trait{ID: "other", Name: "Friendly"}
	tx.onCreateTrait = func(Trait) error {
		tx.traits[NameKey(winner.Name)] = winner
		return ErrDuplicate
	}

	got, err := r.ResolveTrait(context.Background(), tx, Trait{Name: "friendly"})
	require.NoError(t, err)

	assert.Equal(t, winner, got)
	assert.Equal(t, 2, tx.findCalls, "exactly one retry of the lookup")
	assert.Equal(t, []string{"trait:raced"}, obs.got)
}

func TestResolver_ResolveGroup_ConflictWhenRetryStillMissing(t *testing.T) {
	obs := &outcomeLog{}
	r := newTestResolver(obs)
	tx := newFakeTx()
	tx.onCreateGroup = func(Group) error { return ErrDuplicate }

	_, err := r.ResolveGroup(context.Background(), tx, Group{ScientificName: "Felis catus"})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 2, tx.findCalls)
	assert.Equal(t, []string{"group:conflict"}, obs.got)
}

func TestResolver_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("lookup", func(t *testing.T) {
		tx := newFakeTx()
		tx.findErr = boom

		_, err := newTestResolver(&outcomeLog{}).ResolveTrait(context.Background(), tx, Trait{Name: "calm"})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrConflict)
	})

	t.Run("create", func(t *testing.T) {
		tx := newFakeTx()
		tx.onCreateGroup = func(Group) error { return boom }

		_, err := newTestResolver(&outcomeLog{}).ResolveGroup(context.Background(), tx, Group{ScientificName: "Felis catus"})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, tx.findCalls, "no retry on non-duplicate errors")
	})
}
