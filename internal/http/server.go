package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries everything the server depends on. Metrics, Limiter,
// CORSOrigins and FlashKey are optional.
type Options struct {
	Addr           string
	Logger         *slog.Logger
	Store          Pinger
	Authenticator  *auth.PasswordAuthenticator
	Sessions       *auth.Manager
	Transactions   *services.TransactionService
	Dashboard      *services.DashboardService
	Metrics        *metrics.Metrics
	Limiter        *ratelimit.Limiter
	Categories     core.Categories
	CurrencySymbol string
	CORSOrigins    []string
	FlashKey       []byte
	SecureCookies  bool
}

type Server struct {
	http.Server

	templates    map[string]*template.Template
	store        Pinger
	auth         *auth.PasswordAuthenticator
	sessions     *auth.Manager
	transactions *services.TransactionService
	dashboard    *services.DashboardService
	metrics      *metrics.Metrics
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	flashes      *sessions.CookieStore
	categories   core.Categories
	currency     string
	started      time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and configures every route,
// returning a ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Categories == nil {
		opts.Categories = core.DefaultCategories()
	}

	templates, err := parseTemplates(appweb.TemplatesFS, opts.CurrencySymbol)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	s := &Server{
		templates:    templates,
		store:        opts.Store,
		auth:         opts.Authenticator,
		sessions:     opts.Sessions,
		transactions: opts.Transactions,
		dashboard:    opts.Dashboard,
		metrics:      opts.Metrics,
		limiter:      opts.Limiter,
		detector:     security.NewDetector(),
		flashes:      newFlashStore(opts.FlashKey, opts.SecureCookies),
		categories:   opts.Categories,
		currency:     opts.CurrencySymbol,
		started:      time.Now(),
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts.Logger, opts.CORSOrigins, static),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(logger *slog.Logger, origins []string, static fs.FS) http.Handler {
	r := chi.NewRouter()

	r.Use(trace.NewMiddleware(s.detector.ExtractClientIP, s.metrics).Middleware)
	r.Use(applog.Middleware(logger, trace.GetRequestID))
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Accept", "Content-Type", trace.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if s.limiter != nil {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, nil))
	}
	r.Use(s.sessions.LoadSession)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	for _, path := range []string{"/", "/register"} {
		r.Get(path, s.handleRegisterForm)
		r.Post(path, s.handleRegister)
	}
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.redirectToLogin))

		r.Get("/logout", s.handleLogout)
		r.Get("/home", s.handleHome)
		r.Get("/dashboard", s.handleDashboard)

		for _, kind := range core.Kinds() {
			r.Get("/add_"+kind.String(), s.handleAddForm(kind))
			r.Post("/add_"+kind.String(), s.handleAdd(kind))
			r.Get("/edit_"+kind.String()+"/{id}", s.handleEditForm(kind))
			r.Post("/edit_"+kind.String()+"/{id}", s.handleEdit(kind))
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.jsonUnauthorized))

		for _, kind := range core.Kinds() {
			r.Post("/delete_"+kind.String()+"/{id}", s.handleDelete(kind))
		}
	})

	return r
}

// redirectToLogin is the denial handler for pages.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	s.redirect(w, r, "/login", Flash{Category: FlashInfo, Message: "Please log in to access this page."})
}

// jsonUnauthorized is the denial handler for the JSON delete routes.
func (s *Server) jsonUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, services.DeleteResult{Error: "Not authenticated"})
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}
