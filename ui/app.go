package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"helioscope/internal/config"
	"helioscope/internal/session"
)

//go:embed templates/* about.md
var embeddedFiles embed.FS

// App represents the dashboard web application.
type App struct {
	router    *chi.Mux
	sessions  *session.Manager
	cfg       *config.Config
	templates *template.Template
}

// NewApp creates the dashboard application. The session manager owns the
// loaded dataset; handlers read the current snapshot per request.
func NewApp(cfg *config.Config, sessions *session.Manager) (*App, error) {
	templates, err := template.ParseFS(embeddedFiles,
		"templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		sessions:  sessions,
		cfg:       cfg,
		templates: templates,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Main page
	a.router.Get("/", a.handleIndex)

	// JSON API
	a.router.Get("/api/metrics", a.handleMetricsList)
	a.router.Get("/api/summary", a.handleSummary)
	a.router.Get("/api/rankings", a.handleRankings)
	a.router.Get("/api/timeseries", a.handleTimeseries)
	a.router.Get("/api/correlations", a.handleCorrelations)
	a.router.Get("/api/scatter", a.handleScatter)
	a.router.Get("/api/about", a.handleAbout)
	a.router.Post("/api/reload", a.handleReload)

	// HTMX fragment endpoints
	a.router.Get("/api/fragments/summary", a.handleFragmentSummary)
	a.router.Get("/api/fragments/rankings", a.handleFragmentRankings)
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.cfg.Server.Port
	log.Printf("Starting Helioscope dashboard on http://localhost%s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the handler for tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// HTMX helpers
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
