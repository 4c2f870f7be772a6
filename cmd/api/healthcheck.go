package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"pets-api/internal/platform/httpclient"
)

// healthcheck pensado para HEALTHCHECK de contenedores sin curl.
func newHealthcheckCmd(opts *rootOptions) *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Consulta GET /health y sale con error si no responde ok",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if baseURL == "" {
				cfg, _, err := opts.load()
				if err != nil {
					return err
				}
				baseURL = "http://127.0.0.1" + cfg.Addr()
			}

			c, err := httpclient.New(baseURL, timeout)
			if err != nil {
				return err
			}

			var out struct {
				Status string `json:"status"`
			}
			if err := c.DoJSON(cmd.Context(), http.MethodGet, "/health", nil, &out); err != nil {
				return err
			}
			if out.Status != "ok" {
				return fmt.Errorf("unhealthy: status=%q", out.Status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "URL base del server (default http://127.0.0.1:$PORT)")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "timeout del request")
	return cmd
}
