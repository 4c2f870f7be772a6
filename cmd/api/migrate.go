package main

import (
	"github.com/spf13/cobra"

	"pets-api/internal/adapters/storage"
	"pets-api/internal/platform/config"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema al store configurado (postgres o sqlite)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.DBDriver == config.DriverMemory {
				log.Warn("memory store has no schema; nothing to migrate", nil)
				return nil
			}

			store, err := storage.Open(cmd.Context(), cfg.DBDriver, cfg.DBDSN, true)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			log.Info("schema applied", map[string]any{"db_driver": cfg.DBDriver})
			return nil
		},
	}
}
