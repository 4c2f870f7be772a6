package pets

import "time"

// Sex define el sexo de la mascota.
// @Enum Male, Female, Not Informed
type Sex string

const (
	SexMale        Sex = "Male"
	SexFemale      Sex = "Female"
	SexNotInformed Sex = "Not Informed"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexNotInformed:
		return true
	default:
		return false
	}
}

// Límites de longitud de los campos de texto.
const (
	MaxPetNameLen        = 50
	MaxScientificNameLen = 50
	MaxTraitNameLen      = 20
)

// Group es la clasificación taxonómica de una mascota.
// ScientificName es único sin distinguir mayúsculas.
type Group struct {
	ID             string
	ScientificName string
	CreatedAt      time.Time
}

// Trait es una característica descriptiva que se comparte entre mascotas.
// Name es único sin distinguir mayúsculas.
type Trait struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Pet representa una mascota con su grupo y sus traits.
type Pet struct {
	ID string

	Name   string
	Age    int
	Weight float64
	Sex    Sex

	// GroupID es la FK; Group viene poblado al leer desde el store.
	GroupID string
	Group   *Group

	// Traits sin duplicados, ordenados por nombre al leer.
	Traits []Trait

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTrait indica si la mascota tiene un trait con ese nombre (case-insensitive).
func (p Pet) HasTrait(name string) bool {
	key := NameKey(name)
	for _, t := range p.Traits {
		if NameKey(t.Name) == key {
			return true
		}
	}
	return false
}
