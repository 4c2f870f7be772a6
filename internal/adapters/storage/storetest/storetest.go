// Package storetest tiene el contrato compartido por todos los adapters de pets.Repository.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pets-api/internal/domain/pets"
)

var base = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

// Factory devuelve un repositorio vacío; se llama una vez por subtest.
type Factory func(t *testing.T) pets.Repository

// Run ejecuta el contrato completo contra newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("group lookup is case insensitive", func(t *testing.T) { testGroupLookup(t, newRepo(t)) })
	t.Run("duplicate names keep tx usable", func(t *testing.T) { testDuplicates(t, newRepo(t)) })
	t.Run("pet round trip", func(t *testing.T) { testPetRoundTrip(t, newRepo(t)) })
	t.Run("pet traits", func(t *testing.T) { testPetTraits(t, newRepo(t)) })
	t.Run("update and delete", func(t *testing.T) { testUpdateDelete(t, newRepo(t)) })
	t.Run("rollback on error", func(t *testing.T) { testRollback(t, newRepo(t)) })
	t.Run("list order and filter", func(t *testing.T) { testList(t, newRepo(t)) })
	t.Run("concurrent creates share one group", func(t *testing.T) { testConcurrentCreate(t, newRepo(t)) })
	t.Run("ping", func(t *testing.T) { require.NoError(t, newRepo(t).Ping(context.Background())) })
}

func group(id, name string) pets.Group {
	return pets.Group{ID: id, ScientificName: name, CreatedAt: base}
}

func trait(id, name string) pets.Trait {
	return pets.Trait{ID: id, Name: name, CreatedAt: base}
}

func pet(id, groupID string, createdAt time.Time) pets.Pet {
	return pets.Pet{
		ID:        id,
		Name:      "pet " + id,
		Age:       2,
		Weight:    7.25,
		Sex:       pets.SexFemale,
		GroupID:   groupID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func inTx(t *testing.T, repo pets.Repository, fn func(ctx context.Context, tx pets.Tx) error) {
	t.Helper()
	require.NoError(t, repo.RunInTx(context.Background(), fn))
}

func testGroupLookup(t *testing.T, repo pets.Repository) {
	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		_, err := tx.FindGroupByName(ctx, "Canis lupus familiaris")
		assert.ErrorIs(t, err, pets.ErrNotFound)

		require.NoError(t, tx.CreateGroup(ctx, group("g1", "Canis lupus familiaris")))

		got, err := tx.FindGroupByName(ctx, "CANIS LUPUS FAMILIARIS")
		require.NoError(t, err)
		assert.Equal(t, "g1", got.ID)
		assert.Equal(t, "Canis lupus familiaris", got.ScientificName)
		assert.True(t, base.Equal(got.CreatedAt))

		// El plegado de mayúsculas no se limita a ASCII.
		require.NoError(t, tx.CreateGroup(ctx, group("g2", "Ñandú común")))
		got, err = tx.FindGroupByName(ctx, "ÑANDÚ COMÚN")
		require.NoError(t, err)
		assert.Equal(t, "g2", got.ID)
		return nil
	})

	// Visible después del commit.
	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		got, err := tx.FindGroupByName(ctx, "canis lupus familiaris")
		require.NoError(t, err)
		assert.Equal(t, "g1", got.ID)
		return nil
	})
}

func testDuplicates(t *testing.T, repo pets.Repository) {
	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		require.NoError(t, tx.CreateGroup(ctx, group("g1", "Felis catus")))
		require.NoError(t, tx.CreateTrait(ctx, trait("t1", "calm")))
		require.NoError(t, tx.CreateGroup(ctx, group("g3", "Ñandú común")))
		require.NoError(t, tx.CreateTrait(ctx, trait("t4", "dócil")))
		return nil
	})

	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		assert.ErrorIs(t, tx.CreateGroup(ctx, group("g2", "FELIS CATUS")), pets.ErrDuplicate)
		assert.ErrorIs(t, tx.CreateTrait(ctx, trait("t2", "Calm")), pets.ErrDuplicate)
		assert.ErrorIs(t, tx.CreateGroup(ctx, group("g4", "ÑANDÚ COMÚN")), pets.ErrDuplicate)
		assert.ErrorIs(t, tx.CreateTrait(ctx, trait("t5", "DÓCIL")), pets.ErrDuplicate)

		tr, err := tx.FindTraitByName(ctx, "Dócil")
		require.NoError(t, err)
		assert.Equal(t, "t4", tr.ID)

		// La transacción sigue sirviendo después del duplicado.
		g, err := tx.FindGroupByName(ctx, "felis catus")
		require.NoError(t, err)
		assert.Equal(t, "g1", g.ID)

		require.NoError(t, tx.CreateTrait(ctx, trait("t3", "shy")))
		return nil
	})

	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		tr, err := tx.FindTraitByName(ctx, "SHY")
		require.NoError(t, err)
		assert.Equal(t, "t3", tr.ID)
		return nil
	})
}

func testPetRoundTrip(t *testing.T, repo pets.Repository) {
	ctx := context.Background()

	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		require.NoError(t, tx.CreateGroup(ctx, group("g1", "Felis catus")))
		return tx.CreatePet(ctx, pet("p1", "g1", base))
	})

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, "pet p1", got.Name)
	assert.Equal(t, 2, got.Age)
	assert.Equal(t, 7.25, got.Weight)
	assert.Equal(t, pets.SexFemale, got.Sex)
	assert.Equal(t, "g1", got.GroupID)
	require.NotNil(t, got.Group)
	assert.Equal(t, "Felis catus", got.Group.ScientificName)
	assert.NotNil(t, got.Traits)
	assert.Empty(t, got.Traits)
	assert.True(t, base.Equal(got.CreatedAt))
	assert.True(t, base.Equal(got.UpdatedAt))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pets.ErrNotFound)
}

func testPetTraits(t *testing.T, repo pets.Repository) {
	ctx := context.Background()

	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		require.NoError(t, tx.CreateGroup(ctx, group("g1", "Felis catus")))
		require.NoError(t, tx.CreatePet(ctx, pet("p1", "g1", base)))
		for _, tr := range []pets.Trait{trait("t1", "shy"), trait("t2", "calm"), trait("t3", "lazy")} {
			require.NoError(t, tx.CreateTrait(ctx, tr))
		}
		require.NoError(t, tx.AddPetTrait(ctx, "p1", "t1"))
		require.NoError(t, tx.AddPetTrait(ctx, "p1", "t2"))
		// idempotente
		require.NoError(t, tx.AddPetTrait(ctx, "p1", "t2"))
		return nil
	})

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"calm", "shy"}, names(got.Traits))

	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		return tx.ReplacePetTraits(ctx, "p1", []string{"t3"})
	})

	got, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"lazy"}, names(got.Traits))
}

func testUpdateDelete(t *testing.T, repo pets.Repository) {
	ctx := context.Background()

	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		require.NoError(t, tx.CreateGroup(ctx, group("g1", "Felis catus")))
		require.NoError(t, tx.CreateGroup(ctx, group("g2", "Canis lupus familiaris")))
		require.NoError(t, tx.CreateTrait(ctx, trait("t1", "calm")))
		require.NoError(t, tx.CreatePet(ctx, pet("p1", "g1", base)))
		return tx.AddPetTrait(ctx, "p1", "t1")
	})

	later := base.Add(time.Hour)
	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		p, err := tx.GetPet(ctx, "p1")
		require.NoError(t, err)
		p.Name = "renamed"
		p.Age = 9
		p.GroupID = "g2"
		p.UpdatedAt = later
		return tx.UpdatePet(ctx, p)
	})

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, 9, got.Age)
	require.NotNil(t, got.Group)
	assert.Equal(t, "g2", got.Group.ID)
	assert.True(t, base.Equal(got.CreatedAt))
	assert.True(t, later.Equal(got.UpdatedAt))

	err = repo.RunInTx(ctx, func(ctx context.Context, tx pets.Tx) error {
		return tx.UpdatePet(ctx, pet("missing", "g1", base))
	})
	assert.ErrorIs(t, err, pets.ErrNotFound)

	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		return tx.DeletePet(ctx, "p1")
	})
	_, err = repo.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, pets.ErrNotFound)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx pets.Tx) error {
		return tx.DeletePet(ctx, "p1")
	})
	assert.ErrorIs(t, err, pets.ErrNotFound)

	// El trait sobrevive al borrado de la mascota.
	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		tr, err := tx.FindTraitByName(ctx, "calm")
		require.NoError(t, err)
		assert.Equal(t, "t1", tr.ID)
		return nil
	})
}

func testRollback(t *testing.T, repo pets.Repository) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.RunInTx(ctx, func(ctx context.Context, tx pets.Tx) error {
		require.NoError(t, tx.CreateGroup(ctx, group("g1", "Felis catus")))
		require.NoError(t, tx.CreateTrait(ctx, trait("t1", "calm")))
		require.NoError(t, tx.CreatePet(ctx, pet("p1", "g1", base)))
		require.NoError(t, tx.AddPetTrait(ctx, "p1", "t1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, pets.ErrNotFound)

	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		_, err := tx.FindGroupByName(ctx, "Felis catus")
		assert.ErrorIs(t, err, pets.ErrNotFound)
		_, err = tx.FindTraitByName(ctx, "calm")
		assert.ErrorIs(t, err, pets.ErrNotFound)
		return nil
	})
}

func testList(t *testing.T, repo pets.Repository) {
	ctx := context.Background()

	// p3 se crea primero pero con created_at más tardío: el orden es por created_at.
	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		require.NoError(t, tx.CreateGroup(ctx, group("g1", "Felis catus")))
		require.NoError(t, tx.CreateTrait(ctx, trait("t1", "Calm")))
		require.NoError(t, tx.CreateTrait(ctx, trait("t2", "shy")))
		require.NoError(t, tx.CreateTrait(ctx, trait("t3", "dócil")))

		require.NoError(t, tx.CreatePet(ctx, pet("p3", "g1", base.Add(3*time.Minute))))
		require.NoError(t, tx.CreatePet(ctx, pet("p1", "g1", base.Add(1*time.Minute))))
		require.NoError(t, tx.CreatePet(ctx, pet("p2", "g1", base.Add(2*time.Minute))))
		require.NoError(t, tx.CreatePet(ctx, pet("p4", "g1", base.Add(3*time.Minute))))

		require.NoError(t, tx.AddPetTrait(ctx, "p1", "t1"))
		require.NoError(t, tx.AddPetTrait(ctx, "p3", "t1"))
		require.NoError(t, tx.AddPetTrait(ctx, "p3", "t2"))
		require.NoError(t, tx.AddPetTrait(ctx, "p4", "t3"))
		return tx.AddPetTrait(ctx, "p2", "t2")
	})

	t.Run("all", func(t *testing.T) {
		items, total, err := repo.List(ctx, pets.ListQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(items))
		require.NotNil(t, items[2].Group)
		assert.Equal(t, []string{"Calm", "shy"}, names(items[2].Traits))
	})

	t.Run("page", func(t *testing.T) {
		items, total, err := repo.List(ctx, pets.ListQuery{Offset: 2, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Equal(t, []string{"p3"}, ids(items))
	})

	t.Run("past the end", func(t *testing.T) {
		items, total, err := repo.List(ctx, pets.ListQuery{Offset: 10, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Empty(t, items)
	})

	t.Run("trait filter ignores case", func(t *testing.T) {
		items, total, err := repo.List(ctx, pets.ListQuery{Trait: "CALM", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, []string{"p1", "p3"}, ids(items))
	})

	t.Run("trait filter folds non-ascii case", func(t *testing.T) {
		items, total, err := repo.List(ctx, pets.ListQuery{Trait: "DÓCIL", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, []string{"p4"}, ids(items))
	})

	t.Run("unknown trait", func(t *testing.T) {
		items, total, err := repo.List(ctx, pets.ListQuery{Trait: "loud", Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})
}

// GroupVariants son el mismo nombre científico con distintas mayúsculas.
var GroupVariants = []string{"Ñandú común", "ÑANDÚ COMÚN", "ñandú común", "Ñandú Común"}

// CreateConcurrently crea n mascotas en paralelo a través del Service, rotando
// GroupVariants y el trait "Dócil"/"DÓCIL", y devuelve las mascotas creadas.
func CreateConcurrently(t *testing.T, repo pets.Repository, n int) []pets.Pet {
	t.Helper()

	svc := pets.NewService(repo)
	age, weight := 1, 1.5

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		out  []pets.Pet
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			traitName := "Dócil"
			if i%2 == 1 {
				traitName = "DÓCIL"
			}
			p, err := svc.Create(context.Background(), pets.CreateInput{
				Name:   fmt.Sprintf("pet %d", i),
				Age:    &age,
				Weight: &weight,
				Group:  &pets.GroupInput{ScientificName: GroupVariants[i%len(GroupVariants)]},
				Traits: []pets.TraitInput{{Name: traitName}},
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			out = append(out, p)
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, out, n)
	return out
}

func testConcurrentCreate(t *testing.T, repo pets.Repository) {
	created := CreateConcurrently(t, repo, 8)

	groupIDs := map[string]struct{}{}
	traitIDs := map[string]struct{}{}
	for _, p := range created {
		require.NotNil(t, p.Group)
		groupIDs[p.Group.ID] = struct{}{}
		require.Len(t, p.Traits, 1)
		traitIDs[p.Traits[0].ID] = struct{}{}
	}
	assert.Len(t, groupIDs, 1)
	assert.Len(t, traitIDs, 1)

	_, total, err := repo.List(context.Background(), pets.ListQuery{Trait: "dócil"})
	require.NoError(t, err)
	assert.Equal(t, len(created), total)
}

func ids(ps []pets.Pet) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func names(ts []pets.Trait) []string {
	out := make([]string, 0, len(ts))
	for _, tr := range ts {
		out = append(out, tr.Name)
	}
	return out
}

// SeedPets crea n mascotas con created_at creciente, útil para tests de paginación.
func SeedPets(t *testing.T, repo pets.Repository, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	inTx(t, repo, func(ctx context.Context, tx pets.Tx) error {
		if err := tx.CreateGroup(ctx, group("seed-group", "Seed group")); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("seed-%02d", i)
			if err := tx.CreatePet(ctx, pet(id, "seed-group", base.Add(time.Duration(i)*time.Second))); err != nil {
				return err
			}
			out = append(out, id)
		}
		return nil
	})
	return out
}
