// Package api exposes the analysis engine over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tabscope/domain/analysis"
	"tabscope/internal"
	"tabscope/internal/report"
	"tabscope/ports"
)

// App represents the API application
type App struct {
	router    *chi.Mux
	analyzer  ports.AnalyzerPort
	reader    ports.DatasetReader
	store     ports.ResultStore
	generator *report.Generator
	engineCfg analysis.Config
	log       *internal.Logger
}

// Config holds API application configuration
type Config struct {
	Port      string
	EngineCfg analysis.Config
}

// NewApp creates the API application. The store may be nil when no
// database is configured; result lookup then serves from cache only.
func NewApp(cfg Config, analyzer ports.AnalyzerPort, reader ports.DatasetReader, store ports.ResultStore) *App {
	app := &App{
		router:    chi.NewRouter(),
		analyzer:  analyzer,
		reader:    reader,
		store:     store,
		generator: report.NewGenerator(),
		engineCfg: cfg.EngineCfg,
		log:       internal.NewDefaultLogger(),
	}

	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Post("/api/analyze", a.handleAnalyze)
	a.router.Get("/api/results/{fingerprint}", a.handleGetResult)
	a.router.Get("/api/results/{fingerprint}/report", a.handleGetReport)
}

// Router exposes the configured handler, primarily for tests
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(port string) error {
	a.log.Info("starting analysis API server on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}
