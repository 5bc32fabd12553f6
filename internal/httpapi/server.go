// Package httpapi exposes recipes, gear, identity and live brews over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/gear"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/metrics"
	"github.com/hammamikhairi/ottobrew/internal/recipe"
)

// Option configures the server.
type Option func(*Server)

// WithGenerator enables POST /recipes/generate.
func WithGenerator(g domain.RecipeGenerator) Option {
	return func(s *Server) {
		s.generator = g
	}
}

// WithMetrics records generation metrics and serves /metrics from g.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithHeartbeat sets the keep-alive interval of event streams.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) {
		s.heartbeat = d
	}
}

// Server holds the API dependencies.
type Server struct {
	recipes   *recipe.Library
	gear      *gear.Catalog
	brews     *brew.Manager
	identity  domain.IdentityProvider
	generator domain.RecipeGenerator
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	heartbeat time.Duration
	log       *logger.Logger
}

// New creates the API server.
func New(recipes *recipe.Library, catalog *gear.Catalog, brews *brew.Manager, identity domain.IdentityProvider, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		recipes:   recipes,
		gear:      catalog,
		brews:     brews,
		identity:  identity,
		heartbeat: 15 * time.Second,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-in", s.signIn)
		r.With(s.requireUser).Post("/sign-out", s.signOut)
		r.With(s.requireUser).Get("/me", s.me)
	})

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", s.listRecipes)
		r.With(s.requireUser).Post("/generate", s.generateRecipe)
		mountCRUD(r, s, crud[domain.Recipe, *domain.Recipe]{
			kind:  "recipe",
			repo:  s.recipes,
			owner: func(rec *domain.Recipe) *string { return &rec.OwnerID },
		}, false)
	})

	r.Route("/grinders", func(r chi.Router) {
		mountCRUD(r, s, crud[domain.Grinder, *domain.Grinder]{
			kind:  "grinder",
			repo:  s.gear.Grinders(),
			owner: func(g *domain.Grinder) *string { return &g.OwnerID },
		}, true)
	})

	r.Route("/brewers", func(r chi.Router) {
		mountCRUD(r, s, crud[domain.Brewer, *domain.Brewer]{
			kind:  "brewer",
			repo:  s.gear.Brewers(),
			owner: func(b *domain.Brewer) *string { return &b.OwnerID },
		}, true)
	})

	r.Route("/brews", func(r chi.Router) {
		r.Get("/", s.listBrews)
		r.With(s.requireUser).Post("/", s.openBrew)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getBrew)
			r.Get("/events", s.brewEvents)
			r.With(s.requireUser).Delete("/", s.closeBrew)
			r.With(s.requireUser).Post("/{action}", s.controlBrew)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"brews":  len(s.brews.List()),
	})
}

// requestLog logs one line per request at debug level.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http: %s %s -> %d (%s, req=%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}
