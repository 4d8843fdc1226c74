package services

import (
	"context"
	"fmt"
	"math"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// Leg is the travel cost of reaching a candidate from the current position.
type Leg struct {
	DistanceKm float64
	Duration   time.Duration
	// Estimated is set when the provider failed and the leg was derived
	// from great-circle distance and an assumed speed.
	Estimated bool
}

const (
	defaultEstimatorTimeout     = 5 * time.Second
	defaultEstimatorConcurrency = 5
)

// TravelEstimator batches per-step travel lookups and degrades to a
// straight-line estimate when the provider fails or times out.
// A nil provider always yields estimates.
type TravelEstimator struct {
	provider    ports.TravelTimeProvider
	timeout     time.Duration
	concurrency int
}

func NewTravelEstimator(provider ports.TravelTimeProvider, timeout time.Duration, concurrency int) *TravelEstimator {
	if timeout <= 0 {
		timeout = defaultEstimatorTimeout
	}
	if concurrency <= 0 {
		concurrency = defaultEstimatorConcurrency
	}
	return &TravelEstimator{provider: provider, timeout: timeout, concurrency: concurrency}
}

// EstimateMany returns one Leg per destination, in order. Provider failures
// never fail the call; only cancellation of ctx does.
func (e *TravelEstimator) EstimateMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
	mode domain.TravelMode,
) ([]Leg, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("estimate travel: %w", err)
	}

	legs := make([]Leg, len(destinations))
	if len(destinations) == 0 {
		return legs, nil
	}

	// Only positions that differ from the origin need a lookup.
	pending := make([]int, 0, len(destinations))
	for i, d := range destinations {
		if d == origin {
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return legs, nil
	}

	if e.provider == nil {
		for _, i := range pending {
			legs[i] = FallbackLeg(origin, destinations[i], mode)
		}
		return legs, nil
	}

	stepCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Prefer one origin->many request when supported to bound latency to a single round trip.
	if mp, ok := e.provider.(ports.TravelMatrixProvider); ok {
		targets := make([]domain.Coordinates, 0, len(pending))
		for _, i := range pending {
			targets = append(targets, destinations[i])
		}

		results, err := mp.GetTravelTimes(stepCtx, origin, targets, mode)
		if err == nil && len(results) != len(targets) {
			err = fmt.Errorf("matrix returned %d results for %d destinations", len(results), len(targets))
		}
		if err != nil {
			obs.Warn(ctx, "estimator.GetTravelTimes", "from=%s mode=%s fallback=great_circle err=%v", origin.Key(), mode, err)
			for _, i := range pending {
				legs[i] = FallbackLeg(origin, destinations[i], mode)
			}
			return legs, nil
		}

		for k, i := range pending {
			legs[i] = legFromResult(results[k])
		}
		return legs, nil
	}

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for _, i := range pending {
		i := i
		g.Go(func() error {
			r, err := e.provider.GetTravelTime(stepCtx, origin, destinations[i], mode)
			if err != nil {
				obs.Warn(ctx, "estimator.GetTravelTime", "from=%s to=%s mode=%s fallback=great_circle err=%v",
					origin.Key(), destinations[i].Key(), mode, err)
				legs[i] = FallbackLeg(origin, destinations[i], mode)
				return nil
			}
			legs[i] = legFromResult(r)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("estimate travel: %w", err)
	}
	return legs, nil
}

// Estimate is the single-pair form of EstimateMany.
func (e *TravelEstimator) Estimate(ctx context.Context, origin, destination domain.Coordinates, mode domain.TravelMode) (Leg, error) {
	legs, err := e.EstimateMany(ctx, origin, []domain.Coordinates{destination}, mode)
	if err != nil {
		return Leg{}, err
	}
	return legs[0], nil
}

// FallbackLeg derives a leg from great-circle distance and the mode's assumed speed.
func FallbackLeg(origin, destination domain.Coordinates, mode domain.TravelMode) Leg {
	km := origin.DistanceKm(destination)
	minutes := math.Ceil(km / mode.FallbackSpeedKmh() * 60)
	return Leg{
		DistanceKm: km,
		Duration:   time.Duration(minutes) * time.Minute,
		Estimated:  true,
	}
}

// Durations are rounded up to whole minutes so simulated time stays on minute boundaries.
func legFromResult(r ports.DistanceResult) Leg {
	minutes := (r.DurationSeconds + 59) / 60
	return Leg{
		DistanceKm: float64(r.DistanceMeters) / 1000,
		Duration:   time.Duration(minutes) * time.Minute,
	}
}
