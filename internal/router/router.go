package router

import (
	"encoding/json"
	"net/http"

	mem "pets-api/internal/adapters/storage/memory"
	"pets-api/internal/domain/pets"
	"pets-api/internal/middleware"
	"pets-api/internal/platform/config"
	"pets-api/internal/platform/logger"
	"pets-api/internal/platform/metrics"
	"pets-api/internal/platform/pagination"

	_ "pets-api/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si no viene, store in-memory.
	Repo pets.Repository

	// Opcionales: zero value => config.Default(), logger nop, métricas nuevas.
	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

type healthResponse struct {
	Status string `json:"status"`
}

func NewRouter(opts Options) http.Handler {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	repo := opts.Repo
	if repo == nil {
		repo = mem.NewPetRepo()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestIDHeader)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Recover(log))
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	petsSvc := pets.NewService(repo, pets.WithResolutionObserver(m.ObserveResolution))

	// health check
	// @Summary Health check (incluye ping al store)
	// @Tags health
	// @Produce json
	// @Success 200 {object} healthResponse
	// @Failure 503 {object} healthResponse
	// @Router /health [get]
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := petsSvc.Ping(r.Context()); err != nil {
			log.Warn("health check failed", map[string]any{"error": err})
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(healthResponse{Status: "unavailable"})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
	})

	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, pagination.Config{
		PageSize:    cfg.PageSize,
		MaxPageSize: cfg.MaxPageSize,
	}, log)

	return r
}
