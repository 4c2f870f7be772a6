package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pets-api/internal/domain/pets"
)

// state es todo lo que guarda el store; cada transacción trabaja sobre una copia.
type state struct {
	groups      map[string]pets.Group
	groupByName map[string]string // NameKey -> id

	traits      map[string]pets.Trait
	traitByName map[string]string

	pets      map[string]pets.Pet // sin Group/Traits poblados
	petTraits map[string]map[string]struct{}
}

func newState() *state {
	return &state{
		groups:      make(map[string]pets.Group),
		groupByName: make(map[string]string),
		traits:      make(map[string]pets.Trait),
		traitByName: make(map[string]string),
		pets:        make(map[string]pets.Pet),
		petTraits:   make(map[string]map[string]struct{}),
	}
}

func (s *state) clone() *state {
	c := &state{
		groups:      make(map[string]pets.Group, len(s.groups)),
		groupByName: make(map[string]string, len(s.groupByName)),
		traits:      make(map[string]pets.Trait, len(s.traits)),
		traitByName: make(map[string]string, len(s.traitByName)),
		pets:        make(map[string]pets.Pet, len(s.pets)),
		petTraits:   make(map[string]map[string]struct{}, len(s.petTraits)),
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.groupByName {
		c.groupByName[k] = v
	}
	for k, v := range s.traits {
		c.traits[k] = v
	}
	for k, v := range s.traitByName {
		c.traitByName[k] = v
	}
	for k, v := range s.pets {
		c.pets[k] = v
	}
	for petID, set := range s.petTraits {
		cs := make(map[string]struct{}, len(set))
		for traitID := range set {
			cs[traitID] = struct{}{}
		}
		c.petTraits[petID] = cs
	}
	return c
}

// PetRepo es el store in-memory (dev y tests). Las transacciones se serializan
// con un lock y se confirman reemplazando el estado.
type PetRepo struct {
	mu sync.RWMutex
	st *state
}

var _ pets.Repository = (*PetRepo)(nil)

func NewPetRepo() *PetRepo {
	return &PetRepo{st: newState()}
}

func (r *PetRepo) RunInTx(ctx context.Context, fn func(ctx context.Context, tx pets.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.st.clone()
	if err := fn(ctx, &petTx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.st = work
	return nil
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.st.getPet(id)
}

func (r *PetRepo) List(ctx context.Context, q pets.ListQuery) ([]pets.Pet, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]pets.Pet, 0, len(r.st.pets))
	for id := range r.st.pets {
		p, err := r.st.getPet(id)
		if err != nil {
			return nil, 0, err
		}
		if q.Trait != "" && !p.HasTrait(q.Trait) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *PetRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *state) getPet(id string) (pets.Pet, error) {
	p, ok := s.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}

	if g, ok := s.groups[p.GroupID]; ok {
		p.Group = &g
	}

	p.Traits = make([]pets.Trait, 0, len(s.petTraits[id]))
	for traitID := range s.petTraits[id] {
		if t, ok := s.traits[traitID]; ok {
			p.Traits = append(p.Traits, t)
		}
	}
	sort.Slice(p.Traits, func(i, j int) bool {
		return p.Traits[i].Name < p.Traits[j].Name
	})
	return p, nil
}

type petTx struct {
	st *state
}

func (t *petTx) FindGroupByName(ctx context.Context, scientificName string) (pets.Group, error) {
	id, ok := t.st.groupByName[pets.NameKey(scientificName)]
	if !ok {
		return pets.Group{}, pets.ErrNotFound
	}
	return t.st.groups[id], nil
}

func (t *petTx) CreateGroup(ctx context.Context, g pets.Group) error {
	if strings.TrimSpace(g.ID) == "" {
		return errors.New("group id required")
	}
	key := pets.NameKey(g.ScientificName)
	if _, exists := t.st.groupByName[key]; exists {
		return pets.ErrDuplicate
	}
	if _, exists := t.st.groups[g.ID]; exists {
		return pets.ErrDuplicate
	}
	t.st.groups[g.ID] = g
	t.st.groupByName[key] = g.ID
	return nil
}

func (t *petTx) FindTraitByName(ctx context.Context, name string) (pets.Trait, error) {
	id, ok := t.st.traitByName[pets.NameKey(name)]
	if !ok {
		return pets.Trait{}, pets.ErrNotFound
	}
	return t.st.traits[id], nil
}

func (t *petTx) CreateTrait(ctx context.Context, tr pets.Trait) error {
	if strings.TrimSpace(tr.ID) == "" {
		return errors.New("trait id required")
	}
	key := pets.NameKey(tr.Name)
	if _, exists := t.st.traitByName[key]; exists {
		return pets.ErrDuplicate
	}
	if _, exists := t.st.traits[tr.ID]; exists {
		return pets.ErrDuplicate
	}
	t.st.traits[tr.ID] = tr
	t.st.traitByName[key] = tr.ID
	return nil
}

func (t *petTx) GetPet(ctx context.Context, id string) (pets.Pet, error) {
	return t.st.getPet(id)
}

func (t *petTx) CreatePet(ctx context.Context, p pets.Pet) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := t.st.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	if err := t.checkGroup(p.GroupID); err != nil {
		return err
	}
	t.st.pets[p.ID] = stripRelations(p)
	return nil
}

func (t *petTx) UpdatePet(ctx context.Context, p pets.Pet) error {
	if _, exists := t.st.pets[p.ID]; !exists {
		return pets.ErrNotFound
	}
	if err := t.checkGroup(p.GroupID); err != nil {
		return err
	}
	prev := t.st.pets[p.ID]
	p.CreatedAt = prev.CreatedAt
	t.st.pets[p.ID] = stripRelations(p)
	return nil
}

func (t *petTx) DeletePet(ctx context.Context, id string) error {
	if _, exists := t.st.pets[id]; !exists {
		return pets.ErrNotFound
	}
	delete(t.st.pets, id)
	delete(t.st.petTraits, id)
	return nil
}

func (t *petTx) AddPetTrait(ctx context.Context, petID, traitID string) error {
	if err := t.checkLink(petID, traitID); err != nil {
		return err
	}
	set, ok := t.st.petTraits[petID]
	if !ok {
		set = make(map[string]struct{})
		t.st.petTraits[petID] = set
	}
	set[traitID] = struct{}{}
	return nil
}

func (t *petTx) ReplacePetTraits(ctx context.Context, petID string, traitIDs []string) error {
	if _, exists := t.st.pets[petID]; !exists {
		return pets.ErrNotFound
	}
	set := make(map[string]struct{}, len(traitIDs))
	for _, traitID := range traitIDs {
		if err := t.checkLink(petID, traitID); err != nil {
			return err
		}
		set[traitID] = struct{}{}
	}
	t.st.petTraits[petID] = set
	return nil
}

// checkGroup emula la FK pets.group_id -> groups.id.
func (t *petTx) checkGroup(groupID string) error {
	if groupID == "" {
		return nil
	}
	if _, ok := t.st.groups[groupID]; !ok {
		return errors.New("group does not exist")
	}
	return nil
}

func (t *petTx) checkLink(petID, traitID string) error {
	if _, ok := t.st.pets[petID]; !ok {
		return pets.ErrNotFound
	}
	if _, ok := t.st.traits[traitID]; !ok {
		return errors.New("trait does not exist")
	}
	return nil
}

func stripRelations(p pets.Pet) pets.Pet {
	p.Group = nil
	p.Traits = nil
	return p
}
