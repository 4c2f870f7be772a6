package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Entidades y resultados que reporta el Resolver al observer (métricas).
const (
	EntityGroup = "group"
	EntityTrait = "trait"

	OutcomeFound    = "found"
	OutcomeCreated  = "created"
	OutcomeRaced    = "raced"
	OutcomeConflict = "conflict"
)

// ResolutionObserver recibe cada resultado de resolución.
type ResolutionObserver func(entity, outcome string)

// Resolver busca un Group/Trait por nombre (case-insensitive) y lo crea si no existe.
//
// Si ya existe se devuelve la fila tal cual: el resto de los campos del candidato
// se descarta (gana la primera escritura).
type Resolver struct {
	newID   func() string
	now     func() time.Time
	observe ResolutionObserver
}

func NewResolver(newID func() string, now func() time.Time, observe ResolutionObserver) *Resolver {
	if observe == nil {
		observe = func(string, string) {}
	}
	return &Resolver{
		newID:   newID,
		now:     now,
		observe: observe,
	}
}

func (r *Resolver) ResolveGroup(ctx context.Context, tx Tx, candidate Group) (Group, error) {
	name := strings.TrimSpace(candidate.ScientificName)

	return resolveOrCreate(ctx, r, EntityGroup, name,
		func(ctx context.Context) (Group, error) {
			return tx.FindGroupByName(ctx, name)
		},
		func(ctx context.Context) (Group, error) {
			g := candidate
			g.ID = r.newID()
			g.ScientificName = name
			g.CreatedAt = r.now()
			return g, tx.CreateGroup(ctx, g)
		},
	)
}

func (r *Resolver) ResolveTrait(ctx context.Context, tx Tx, candidate Trait) (Trait, error) {
	name := strings.TrimSpace(candidate.Name)

	return resolveOrCreate(ctx, r, EntityTrait, name,
		func(ctx context.Context) (Trait, error) {
			return tx.FindTraitByName(ctx, name)
		},
		func(ctx context.Context) (Trait, error) {
			t := candidate
			t.ID = r.newID()
			t.Name = name
			t.CreatedAt = r.now()
			return t, tx.CreateTrait(ctx, t)
		},
	)
}

// resolveOrCreate: lookup -> create -> (ErrDuplicate) un único re-lookup -> ErrConflict.
func resolveOrCreate[T any](
	ctx context.Context,
	r *Resolver,
	entity, name string,
	find func(context.Context) (T, error),
	create func(context.Context) (T, error),
) (T, error) {
	var zero T

	found, err := find(ctx)
	if err == nil {
		r.observe(entity, OutcomeFound)
		return found, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return zero, fmt.Errorf("find %s %q: %w", entity, name, err)
	}

	created, err := create(ctx)
	if err == nil {
		r.observe(entity, OutcomeCreated)
		return created, nil
	}
	if !errors.Is(err, ErrDuplicate) {
		return zero, fmt.Errorf("create %s %q: %w", entity, name, err)
	}

	// Otro request lo creó entre el lookup y el insert.
	found, err = find(ctx)
	if err == nil {
		r.observe(entity, OutcomeRaced)
		return found, nil
	}
	if errors.Is(err, ErrNotFound) {
		r.observe(entity, OutcomeConflict)
		return zero, fmt.Errorf("%w: %s %q", ErrConflict, entity, name)
	}
	return zero, fmt.Errorf("find %s %q: %w", entity, name, err)
}
