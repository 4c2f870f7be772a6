// Package sqlstore implementa pets.Repository sobre database/sql.
// Postgres y SQLite comparten el SQL; el Dialect resuelve placeholders y la
// detección de violaciones de unicidad de cada driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"pets-api/internal/domain/pets"
)

type Dialect struct {
	Name string
	// Rebind convierte los "?" al formato del driver; nil = sin cambios.
	Rebind func(query string) string
	// IsUniqueViolation reconoce el error del driver para un índice único.
	IsUniqueViolation func(err error) bool
}

func (d Dialect) bind(query string) string {
	if d.Rebind == nil {
		return query
	}
	return d.Rebind(query)
}

// RebindDollar: "? , ?" -> "$1 , $2" (Postgres).
func RebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// queryer lo cumplen *sql.DB y *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	d  Dialect
}

var _ pets.Repository = (*Store)(nil)

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx pets.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", s.d.Name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, &petTx{q: tx, d: s.d}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", s.d.Name, err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, s.db, s.d, id)
}

func (s *Store) List(ctx context.Context, q pets.ListQuery) ([]pets.Pet, int, error) {
	where := ""
	args := []any{}
	if strings.TrimSpace(q.Trait) != "" {
		where = `
		WHERE EXISTS (
			SELECT 1
			FROM pet_traits pt
			JOIN traits t ON t.id = pt.trait_id
			WHERE pt.pet_id = p.id AND t.name_key = ?
		)`
		args = append(args, pets.NameKey(q.Trait))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, s.d.bind(`SELECT COUNT(*) FROM pets p`+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count pets: %w", s.d.Name, err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = total
	}
	pageArgs := append(append([]any{}, args...), limit, max(q.Offset, 0))

	rows, err := s.db.QueryContext(ctx, s.d.bind(selectPet+where+`
		ORDER BY p.created_at ASC, p.id ASC
		LIMIT ? OFFSET ?
	`), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: list pets: %w", s.d.Name, err)
	}

	out := make([]pets.Pet, 0, limit)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, err
	}
	// Cerrar antes de cargar traits: SQLite corre con una sola conexión.
	rows.Close()

	for i := range out {
		traits, err := loadTraits(ctx, s.db, s.d, out[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i].Traits = traits
	}

	return out, total, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB expone el pool (migraciones y tests).
func (s *Store) DB() *sql.DB { return s.db }
