package main

import (
	"github.com/spf13/cobra"

	"pets-api/internal/platform/config"
	"pets-api/internal/platform/logger"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pets-api",
		Short:         "API de mascotas con grupos y traits",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Sin subcomando se levanta el server.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "archivo de config (yaml/json/toml); la env tiene prioridad")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newHealthcheckCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	return cfg, log, nil
}
