package pets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo     Repository
	resolver *Resolver
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

// WithResolutionObserver conecta las métricas del Resolver.
func WithResolutionObserver(obs ResolutionObserver) Option {
	return func(s *Service) {
		s.resolver.observe = obs
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	// El resolver lee reloj e IDs a través del service para que los tests
	// puedan reemplazarlos en un solo lugar.
	s.resolver = NewResolver(
		func() string { return s.newID() },
		func() time.Time { return s.now().UTC() },
		nil,
	)
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver.observe == nil {
		s.resolver.observe = func(string, string) {}
	}
	return s
}

type GroupInput struct {
	ScientificName string
}

type TraitInput struct {
	Name string
}

// CreateInput: punteros para distinguir "no enviado" de cero.
// Traits nil = no enviado; vacío = enviado sin traits.
type CreateInput struct {
	Name   string
	Age    *int
	Weight *float64
	Sex    string
	Group  *GroupInput
	Traits []TraitInput
}

// PatchInput: nil = no tocar.
type PatchInput struct {
	Name   *string
	Age    *int
	Weight *float64
	Sex    *string
	Group  *GroupInput
	Traits []TraitInput
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if err := validateCreate(in); err != nil {
		return Pet{}, err
	}

	sex := SexNotInformed
	if v := strings.TrimSpace(in.Sex); v != "" {
		sex = Sex(v)
	}

	var out Pet
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		g, err := s.resolver.ResolveGroup(ctx, tx, Group{ScientificName: in.Group.ScientificName})
		if err != nil {
			return err
		}

		now := s.now().UTC()
		p := Pet{
			ID:        s.newID(),
			Name:      strings.TrimSpace(in.Name),
			Age:       *in.Age,
			Weight:    *in.Weight,
			Sex:       sex,
			GroupID:   g.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreatePet(ctx, p); err != nil {
			return err
		}

		for _, ti := range in.Traits {
			t, err := s.resolver.ResolveTrait(ctx, tx, Trait{Name: ti.Name})
			if err != nil {
				return err
			}
			if err := tx.AddPetTrait(ctx, p.ID, t.ID); err != nil {
				return err
			}
		}

		out, err = tx.GetPet(ctx, p.ID)
		return err
	})
	if err != nil {
		return Pet{}, err
	}
	return out, nil
}

// Patch aplica un update parcial.
//
// Traits: cada entrada se resuelve (creándola si falta) y reemplaza el set completo,
// así que sólo queda asociado el último trait de la lista. Una lista vacía no cambia nada.
func (s *Service) Patch(ctx context.Context, id string, in PatchInput) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}

	var out Pet
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.GetPet(ctx, id)
		if err != nil {
			return err
		}
		if err := validatePatch(in); err != nil {
			return err
		}

		if in.Group != nil {
			g, err := s.resolver.ResolveGroup(ctx, tx, Group{ScientificName: in.Group.ScientificName})
			if err != nil {
				return err
			}
			// Siempre se cumple tras la resolución; se mantiene como guarda.
			if strings.EqualFold(g.ScientificName, strings.TrimSpace(in.Group.ScientificName)) {
				p.GroupID = g.ID
				p.Group = &g
			}
		}

		for _, ti := range in.Traits {
			t, err := s.resolver.ResolveTrait(ctx, tx, Trait{Name: ti.Name})
			if err != nil {
				return err
			}
			if err := tx.ReplacePetTraits(ctx, p.ID, []string{t.ID}); err != nil {
				return err
			}
		}

		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Age != nil {
			p.Age = *in.Age
		}
		if in.Weight != nil {
			p.Weight = *in.Weight
		}
		if in.Sex != nil {
			p.Sex = Sex(strings.TrimSpace(*in.Sex))
		}
		p.UpdatedAt = s.now().UTC()

		if err := tx.UpdatePet(ctx, p); err != nil {
			return err
		}

		out, err = tx.GetPet(ctx, p.ID)
		return err
	})
	if err != nil {
		return Pet{}, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeletePet(ctx, id)
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Ping verifica que el store responda (health check).
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
