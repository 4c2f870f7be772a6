package pets

import (
	"context"
	"strings"
)

// Repository es el Entity Store. Toda escritura pasa por RunInTx: si fn
// devuelve error no queda nada aplicado.
type Repository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetByID(ctx context.Context, id string) (Pet, error)
	// List devuelve la página pedida y el total de mascotas que cumplen el filtro.
	List(ctx context.Context, q ListQuery) ([]Pet, int, error)

	Ping(ctx context.Context) error
}

// Tx son las operaciones disponibles dentro de una transacción.
//
// Las búsquedas por nombre son case-insensitive y devuelven ErrNotFound si no hay fila.
// CreateGroup/CreateTrait devuelven ErrDuplicate si el nombre ya existe (con cualquier
// combinación de mayúsculas) y dejan la transacción usable.
type Tx interface {
	FindGroupByName(ctx context.Context, scientificName string) (Group, error)
	CreateGroup(ctx context.Context, g Group) error

	FindTraitByName(ctx context.Context, name string) (Trait, error)
	CreateTrait(ctx context.Context, t Trait) error

	GetPet(ctx context.Context, id string) (Pet, error)
	CreatePet(ctx context.Context, p Pet) error
	UpdatePet(ctx context.Context, p Pet) error
	DeletePet(ctx context.Context, id string) error

	// AddPetTrait es idempotente: agregar un trait ya asociado no hace nada.
	AddPetTrait(ctx context.Context, petID, traitID string) error
	// ReplacePetTraits deja a la mascota exactamente con traitIDs.
	ReplacePetTraits(ctx context.Context, petID string, traitIDs []string) error
}

// ListQuery filtra y pagina el listado. Orden: created_at ASC, id ASC.
type ListQuery struct {
	Trait  string // vacío = sin filtro
	Offset int
	Limit  int
}

// NameKey normaliza un nombre único para comparar sin distinguir mayúsculas.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
