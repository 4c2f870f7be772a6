// Package storage elige el adapter del Entity Store según la config.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"pets-api/internal/adapters/storage/memory"
	pg "pets-api/internal/adapters/storage/postgres"
	lite "pets-api/internal/adapters/storage/sqlite"
	"pets-api/internal/domain/pets"
	"pets-api/internal/platform/config"
)

// Store agrupa el repositorio con el cierre de recursos.
type Store struct {
	Repo pets.Repository
	db   *sql.DB
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Open abre el store. Con migrate=true aplica el schema antes de devolverlo.
func Open(ctx context.Context, driver, dsn string, migrate bool) (*Store, error) {
	switch driver {
	case config.DriverMemory, "":
		return &Store{Repo: memory.NewPetRepo()}, nil

	case config.DriverPostgres:
		db, err := pg.Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if migrate {
			if err := pg.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Store{Repo: pg.NewPetsRepo(db), db: db}, nil

	case config.DriverSQLite:
		db, err := lite.Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if migrate {
			if err := lite.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Store{Repo: lite.NewPetsRepo(db), db: db}, nil

	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}
