package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures the HTTP surface
type RouterOptions struct {
	APIToken     string
	CORSOrigins  []string
	RateLimitRPS float64
	RateBurst    int
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil
	Gatherer prometheus.Gatherer
}

// NewRouter wires the reward network HTTP API
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	limiter := NewRateLimiter(opts.RateLimitRPS, opts.RateBurst)
	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(TokenAuth(opts.APIToken))

		r.Post("/rewards", h.RewardAccountFor)
		r.Get("/rewards/{confirmationNumber}", h.GetReward)
		r.Get("/accounts/{creditCard}/summary", h.GetAccountSummary)
	})

	return r
}

// TokenAuth requires "Authorization: Bearer <token>" on every request
func TokenAuth(validToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "Missing authorization header", nil)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if subtle.ConstantTimeCompare([]byte(token), []byte(validToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "Invalid token", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
