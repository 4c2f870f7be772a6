package pets

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound: la mascota (o el registro buscado en el store) no existe.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate lo devuelven los stores cuando un insert choca con un índice único.
	ErrDuplicate = errors.New("duplicate")

	// ErrConflict: la carrera por un nombre único no se resolvió tras un reintento.
	ErrConflict = errors.New("conflict")
)

// ValidationError agrupa errores de input por campo.
// Las claves usan notación de path: "group.scientific_name", "traits[2].name".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid input"
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Add registra el primer error de un campo; los siguientes se ignoran.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// Err devuelve nil si no se registró ningún campo.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidation reporta si err es (o envuelve) un *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
