package pets

import (
	"context"
	"strings"

	"pets-api/internal/platform/pagination"
)

// List devuelve una página de mascotas, opcionalmente filtrada por nombre de trait
// (case-insensitive). Orden estable: created_at ASC, id ASC.
func (s *Service) List(ctx context.Context, trait string, p pagination.Params) ([]Pet, int, error) {
	items, total, err := s.repo.List(ctx, ListQuery{
		Trait:  strings.TrimSpace(trait),
		Offset: p.Offset(),
		Limit:  p.Limit(),
	})
	if err != nil {
		return nil, 0, err
	}
	if err := p.Check(total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
