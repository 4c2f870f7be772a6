package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHealthcheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		}))
		defer srv.Close()

		out, err := execute(t, "healthcheck", "--url", srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok\n", out)
	})

	t.Run("unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		}))
		defer srv.Close()

		_, err := execute(t, "healthcheck", "--url", srv.URL)
		assert.Error(t, err)
	})
}

func TestMigrate_MemoryIsNoop(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("DB_DSN", "")

	_, err := execute(t, "migrate")
	assert.NoError(t, err)
}

func TestMigrate_SQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", t.TempDir()+"/pets.db")

	_, err := execute(t, "migrate")
	assert.NoError(t, err)
}
