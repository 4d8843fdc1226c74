package api

import (
	"net/http"
	"time"
	"trip-planner-service/internal/api/handlers"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"

	"github.com/rs/cors"
)

// Deps are the collaborators the HTTP API needs.
type Deps struct {
	Planner  *services.Planner
	Repo     ports.LocationRepository
	Geocoder ports.Geocoder
	Timezone *time.Location

	// RateLimitRPS <= 0 disables rate limiting of /plans.
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	locHandler := &handlers.LocationHandler{Repo: d.Repo}
	planHandler := &handlers.PlanHandler{
		Planner:  d.Planner,
		Repo:     d.Repo,
		Geocoder: d.Geocoder,
		Timezone: d.Timezone,
	}

	var plans http.Handler = http.HandlerFunc(planHandler.Plan)
	if d.RateLimitRPS > 0 {
		plans = newClientLimiter(d.RateLimitRPS, d.RateLimitBurst).limit(plans)
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/locations", locHandler.List)
	mux.Handle("/plans", plans)

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	return requestIDMiddleware(loggingMiddleware(c.Handler(mux)))
}
