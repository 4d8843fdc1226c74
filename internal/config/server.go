package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
	"trip-planner-service/internal/services"
)

// Server is the runtime configuration of cmd/server.
type Server struct {
	Port          string
	DBPath        string
	DatabaseURL   string
	RedisURL      string
	RedisPassword string
	RedisTTL      time.Duration
	SeedPath      string
	ORSAPIKey     string
	ORSCountry    string

	Timezone             *time.Location
	Planner              services.PlannerConfig
	EstimatorTimeout     time.Duration
	EstimatorConcurrency int

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

// Load reads the server configuration from the environment. Every planner
// tunable defaults to services.DefaultPlannerConfig.
func Load() (Server, error) {
	cfg := Server{
		Port:          Get("PORT", "8080"),
		DBPath:        Get("DB_PATH", "data/app.db"),
		DatabaseURL:   Get("DATABASE_URL", ""),
		RedisURL:      Get("REDIS_URL", ""),
		RedisPassword: Get("REDIS_PASSWORD", ""),
		SeedPath:      Get("SEED_PATH", "data/seeds/locations.json"),
		ORSAPIKey:     Get("ORS_API_KEY", ""),
		ORSCountry:    Get("ORS_COUNTRY", ""),
		CORSOrigins:   List("CORS_ORIGINS", []string{"*"}),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	tz, err := time.LoadLocation(Get("PLANNER_TIMEZONE", "Asia/Taipei"))
	if err != nil {
		collect(fmt.Errorf("config PLANNER_TIMEZONE: %w", err))
		tz = time.UTC
	}
	cfg.Timezone = tz

	cfg.RedisTTL, err = Duration("REDIS_TTL", 24*time.Hour)
	collect(err)
	cfg.EstimatorTimeout, err = Duration("ESTIMATOR_TIMEOUT", 5*time.Second)
	collect(err)
	cfg.EstimatorConcurrency, err = Int("ESTIMATOR_CONCURRENCY", 5)
	collect(err)
	cfg.RateLimitRPS, err = Float("RATE_LIMIT_RPS", 2)
	collect(err)
	cfg.RateLimitBurst, err = Int("RATE_LIMIT_BURST", 5)
	collect(err)

	p := services.DefaultPlannerConfig()
	w := &p.Scoring.Weights
	w.Rating, err = Float("PLANNER_WEIGHT_RATING", w.Rating)
	collect(err)
	w.Distance, err = Float("PLANNER_WEIGHT_DISTANCE", w.Distance)
	collect(err)
	w.Time, err = Float("PLANNER_WEIGHT_TIME", w.Time)
	collect(err)
	p.Scoring.PeriodFitWeight, err = Float("PLANNER_WEIGHT_PERIOD", p.Scoring.PeriodFitWeight)
	collect(err)
	p.Scoring.MealBonus, err = Float("PLANNER_MEAL_BONUS", p.Scoring.MealBonus)
	collect(err)
	p.Scoring.MealLabels = List("PLANNER_MEAL_LABELS", p.Scoring.MealLabels)
	p.DefaultDistanceThresholdKm, err = Float("PLANNER_DISTANCE_THRESHOLD_KM", p.DefaultDistanceThresholdKm)
	collect(err)
	p.DefaultEfficiencyThreshold, err = Float("PLANNER_EFFICIENCY_THRESHOLD", p.DefaultEfficiencyThreshold)
	collect(err)

	lunch, err := services.ParseMealWindow("lunch", Get("PLANNER_LUNCH_WINDOW", "11:30-13:30"))
	collect(err)
	dinner, err := services.ParseMealWindow("dinner", Get("PLANNER_DINNER_WINDOW", "17:30-19:30"))
	collect(err)
	p.MealWindows = []services.MealWindow{lunch, dinner}
	cfg.Planner = p

	if w.Rating < 0 || w.Distance < 0 || w.Time < 0 || p.Scoring.PeriodFitWeight < 0 {
		collect(errors.New("config PLANNER_WEIGHT_*: weights must not be negative"))
	}
	if p.DefaultDistanceThresholdKm <= 0 {
		collect(errors.New("config PLANNER_DISTANCE_THRESHOLD_KM: must be positive"))
	}

	if len(errs) > 0 {
		return Server{}, errors.Join(errs...)
	}
	return cfg, nil
}
