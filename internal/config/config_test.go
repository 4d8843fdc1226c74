package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "PLANNER_WEIGHT_RATING", "PLANNER_LUNCH_WINDOW", "PLANNER_TIMEZONE", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.Planner.Scoring.Weights.Rating != 0.4 {
		t.Fatalf("expected default rating weight, got %v", cfg.Planner.Scoring.Weights.Rating)
	}
	if len(cfg.Planner.MealWindows) != 2 || cfg.Planner.MealWindows[0].Start != 11*60+30 {
		t.Fatalf("unexpected meal windows: %+v", cfg.Planner.MealWindows)
	}
	if cfg.Timezone.String() != "Asia/Taipei" {
		t.Fatalf("unexpected timezone %v", cfg.Timezone)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PLANNER_WEIGHT_DISTANCE", "0.5")
	t.Setenv("PLANNER_WEIGHT_PERIOD", "0.1")
	t.Setenv("PLANNER_DINNER_WINDOW", "18:00-20:00")
	t.Setenv("ESTIMATOR_TIMEOUT", "2s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Planner.Scoring.Weights.Distance != 0.5 {
		t.Fatalf("expected distance weight override, got %v", cfg.Planner.Scoring.Weights.Distance)
	}
	if cfg.Planner.Scoring.PeriodFitWeight != 0.1 {
		t.Fatalf("expected period weight override, got %v", cfg.Planner.Scoring.PeriodFitWeight)
	}
	if cfg.Planner.MealWindows[1].Start != 18*60 {
		t.Fatalf("expected dinner override, got %+v", cfg.Planner.MealWindows[1])
	}
	if cfg.EstimatorTimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %v", cfg.EstimatorTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PLANNER_MEAL_BONUS", "lots")
	t.Setenv("PLANNER_LUNCH_WINDOW", "13:00-12:00")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed values")
	}
}
