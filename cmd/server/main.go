package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"
	"trip-planner-service/internal/adapters/cache"
	"trip-planner-service/internal/adapters/distance"
	"trip-planner-service/internal/adapters/repositories"
	"trip-planner-service/internal/api"
	"trip-planner-service/internal/config"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, dialect, err := db.OpenFromEnv(cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	repo := repositories.NewSQLLocationRepository(conn, dialect)

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(context.Background(), conn, repo, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	travelCache, closeCache, err := newTravelCache(cfg, conn, dialect)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	provider, geocoder, err := newProvider(cfg, travelCache, cache.NewSQLGeocodeCache(conn, dialect))
	if err != nil {
		log.Fatal(err)
	}

	estimator := services.NewTravelEstimator(provider, cfg.EstimatorTimeout, cfg.EstimatorConcurrency)
	planner := services.NewPlanner(estimator, cfg.Planner)

	router := api.NewRouter(api.Deps{
		Planner:        planner,
		Repo:           repo,
		Geocoder:       geocoder,
		Timezone:       cfg.Timezone,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSOrigins,
	})

	// Timeouts are tuned for cold-cache planning (external API latency per step).
	log.Printf("Server listening addr=:%s db=%s", cfg.Port, dialect)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// newTravelCache prefers Redis when configured and falls back to the SQL table.
func newTravelCache(cfg config.Server, conn *sql.DB, dialect db.Dialect) (ports.TravelCache, func(), error) {
	if cfg.RedisURL == "" {
		return cache.NewSQLTravelCache(conn, dialect), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return cache.NewRedisTravelCache(client, cfg.RedisTTL), func() { client.Close() }, nil
}

// newProvider returns the ORS provider when a key is configured. Without one
// both results are nil: the estimator then flags every leg as a straight-line
// estimate and address waypoints are rejected.
func newProvider(cfg config.Server, travelCache ports.TravelCache, geocodeCache ports.GeocodeCache) (ports.TravelTimeProvider, ports.Geocoder, error) {
	if cfg.ORSAPIKey == "" {
		log.Println("ORS_API_KEY not set; travel times use straight-line estimates")
		return nil, nil, nil
	}

	var opts []distance.ORSOption
	if cfg.ORSCountry != "" {
		opts = append(opts, distance.WithCountry(cfg.ORSCountry))
	}
	ors, err := distance.NewORSProvider(cfg.ORSAPIKey, travelCache, geocodeCache, opts...)
	if err != nil {
		return nil, nil, err
	}
	return ors, ors, nil
}

func initAndSeed(ctx context.Context, conn *sql.DB, repo *repositories.SQLLocationRepository, seedPath string) error {
	if err := db.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	n, err := repositories.SeedFromJSON(ctx, repo, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Printf("catalog seeded locations=%d path=%s", n, seedPath)
	return nil
}
