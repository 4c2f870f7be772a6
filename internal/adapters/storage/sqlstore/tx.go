package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pets-api/internal/domain/pets"
)

const selectPet = `
	SELECT
		p.id, p.name, p.age, p.weight, p.sex, p.group_id,
		p.created_at, p.updated_at,
		g.id, g.scientific_name, g.created_at
	FROM pets p
	LEFT JOIN pet_groups g ON g.id = p.group_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p         pets.Pet
		sex       string
		groupFK   sql.NullString
		gID       sql.NullString
		gName     sql.NullString
		gCreated  sql.NullTime
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Age,
		&p.Weight,
		&sex,
		&groupFK,
		&createdAt,
		&updatedAt,
		&gID,
		&gName,
		&gCreated,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Sex = pets.Sex(sex)
	p.GroupID = groupFK.String
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	if gID.Valid {
		p.Group = &pets.Group{
			ID:             gID.String,
			ScientificName: gName.String,
			CreatedAt:      gCreated.Time.UTC(),
		}
	}
	p.Traits = []pets.Trait{}
	return p, nil
}

func getPet(ctx context.Context, q queryer, d Dialect, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	p, err := scanPet(q.QueryRowContext(ctx, d.bind(selectPet+` WHERE p.id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, fmt.Errorf("%s: get pet: %w", d.Name, err)
	}

	traits, err := loadTraits(ctx, q, d, p.ID)
	if err != nil {
		return pets.Pet{}, err
	}
	p.Traits = traits
	return p, nil
}

func loadTraits(ctx context.Context, q queryer, d Dialect, petID string) ([]pets.Trait, error) {
	rows, err := q.QueryContext(ctx, d.bind(`
		SELECT t.id, t.name, t.created_at
		FROM pet_traits pt
		JOIN traits t ON t.id = pt.trait_id
		WHERE pt.pet_id = ?
		ORDER BY t.name ASC
	`), petID)
	if err != nil {
		return nil, fmt.Errorf("%s: load traits: %w", d.Name, err)
	}
	defer rows.Close()

	out := make([]pets.Trait, 0)
	for rows.Next() {
		var t pets.Trait
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

type petTx struct {
	q *sql.Tx
	d Dialect
}

func (t *petTx) FindGroupByName(ctx context.Context, scientificName string) (pets.Group, error) {
	var g pets.Group
	err := t.q.QueryRowContext(ctx, t.d.bind(`
		SELECT id, scientific_name, created_at
		FROM pet_groups
		WHERE scientific_name_key = ?
	`), pets.NameKey(scientificName)).Scan(&g.ID, &g.ScientificName, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Group{}, pets.ErrNotFound
		}
		return pets.Group{}, fmt.Errorf("%s: find group: %w", t.d.Name, err)
	}
	g.CreatedAt = g.CreatedAt.UTC()
	return g, nil
}

func (t *petTx) CreateGroup(ctx context.Context, g pets.Group) error {
	return t.insertUnique(ctx, `
		INSERT INTO pet_groups (id, scientific_name, scientific_name_key, created_at)
		VALUES (?, ?, ?, ?)
	`, g.ID, g.ScientificName, pets.NameKey(g.ScientificName), g.CreatedAt.UTC())
}

func (t *petTx) FindTraitByName(ctx context.Context, name string) (pets.Trait, error) {
	var tr pets.Trait
	err := t.q.QueryRowContext(ctx, t.d.bind(`
		SELECT id, name, created_at
		FROM traits
		WHERE name_key = ?
	`), pets.NameKey(name)).Scan(&tr.ID, &tr.Name, &tr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Trait{}, pets.ErrNotFound
		}
		return pets.Trait{}, fmt.Errorf("%s: find trait: %w", t.d.Name, err)
	}
	tr.CreatedAt = tr.CreatedAt.UTC()
	return tr, nil
}

func (t *petTx) CreateTrait(ctx context.Context, tr pets.Trait) error {
	return t.insertUnique(ctx, `
		INSERT INTO traits (id, name, name_key, created_at)
		VALUES (?, ?, ?, ?)
	`, tr.ID, tr.Name, pets.NameKey(tr.Name), tr.CreatedAt.UTC())
}

// insertUnique corre el insert dentro de un SAVEPOINT: en Postgres un error
// aborta la transacción entera, y el resolver necesita seguir usándola.
func (t *petTx) insertUnique(ctx context.Context, query string, args ...any) error {
	if _, err := t.q.ExecContext(ctx, `SAVEPOINT unique_insert`); err != nil {
		return fmt.Errorf("%s: savepoint: %w", t.d.Name, err)
	}

	if _, err := t.q.ExecContext(ctx, t.d.bind(query), args...); err != nil {
		if _, rbErr := t.q.ExecContext(ctx, `ROLLBACK TO SAVEPOINT unique_insert`); rbErr != nil {
			return fmt.Errorf("%s: rollback to savepoint: %w", t.d.Name, rbErr)
		}
		if t.d.IsUniqueViolation != nil && t.d.IsUniqueViolation(err) {
			return pets.ErrDuplicate
		}
		return fmt.Errorf("%s: insert: %w", t.d.Name, err)
	}

	if _, err := t.q.ExecContext(ctx, `RELEASE SAVEPOINT unique_insert`); err != nil {
		return fmt.Errorf("%s: release savepoint: %w", t.d.Name, err)
	}
	return nil
}

func (t *petTx) GetPet(ctx context.Context, id string) (pets.Pet, error) {
	return getPet(ctx, t.q, t.d, id)
}

func (t *petTx) CreatePet(ctx context.Context, p pets.Pet) error {
	_, err := t.q.ExecContext(ctx, t.d.bind(`
		INSERT INTO pets (
			id, name, age, weight, sex, group_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`),
		p.ID,
		p.Name,
		p.Age,
		p.Weight,
		string(p.Sex),
		nullString(p.GroupID),
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: create pet: %w", t.d.Name, err)
	}
	return nil
}

func (t *petTx) UpdatePet(ctx context.Context, p pets.Pet) error {
	res, err := t.q.ExecContext(ctx, t.d.bind(`
		UPDATE pets
		SET
			name = ?,
			age = ?,
			weight = ?,
			sex = ?,
			group_id = ?,
			updated_at = ?
		WHERE id = ?
	`),
		p.Name,
		p.Age,
		p.Weight,
		string(p.Sex),
		nullString(p.GroupID),
		p.UpdatedAt.UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: update pet: %w", t.d.Name, err)
	}
	return expectAffected(res)
}

func (t *petTx) DeletePet(ctx context.Context, id string) error {
	if _, err := t.q.ExecContext(ctx, t.d.bind(`DELETE FROM pet_traits WHERE pet_id = ?`), id); err != nil {
		return fmt.Errorf("%s: delete pet traits: %w", t.d.Name, err)
	}
	res, err := t.q.ExecContext(ctx, t.d.bind(`DELETE FROM pets WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("%s: delete pet: %w", t.d.Name, err)
	}
	return expectAffected(res)
}

func (t *petTx) AddPetTrait(ctx context.Context, petID, traitID string) error {
	_, err := t.q.ExecContext(ctx, t.d.bind(`
		INSERT INTO pet_traits (pet_id, trait_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`), petID, traitID)
	if err != nil {
		return fmt.Errorf("%s: add pet trait: %w", t.d.Name, err)
	}
	return nil
}

func (t *petTx) ReplacePetTraits(ctx context.Context, petID string, traitIDs []string) error {
	if _, err := t.q.ExecContext(ctx, t.d.bind(`DELETE FROM pet_traits WHERE pet_id = ?`), petID); err != nil {
		return fmt.Errorf("%s: clear pet traits: %w", t.d.Name, err)
	}
	for _, traitID := range traitIDs {
		if err := t.AddPetTrait(ctx, petID, traitID); err != nil {
			return err
		}
	}
	return nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
