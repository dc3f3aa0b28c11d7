// Package server exposes the scored repository over HTTP.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/validation"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxBodyBytes          = 1 << 20
)

// Options configures the HTTP surface. Zero rate-limit values disable
// limiting.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	// DefaultProfile is used by the rank endpoint when the body is empty.
	DefaultProfile model.ArbitrageProfile
}

// Server serves one immutable repository.
type Server struct {
	repo       *dataset.Repository
	opts       Options
	validation func() validation.Report
}

// New creates a Server for repo.
func New(repo *dataset.Repository, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	return &Server{
		repo: repo,
		opts: opts,
		validation: sync.OnceValue(func() validation.Report {
			return validation.Run(repo)
		}),
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.opts.RequestTimeout))

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if s.opts.RateLimitRPS > 0 {
		burst := s.opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.opts.RateLimitRPS), burst)))
	}

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/opportunities", s.listOpportunities)
		r.Post("/opportunities/rank", s.rankOpportunities)
		r.Get("/opportunities/{id}", s.getOpportunity)
		r.Get("/opportunities/{id}/diligence", s.getDiligence)
		r.Get("/validation", s.getValidation)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
