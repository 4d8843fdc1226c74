package services

import (
	"math"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
)

// Weights of the three normalized scoring terms.
type Weights struct {
	Rating   float64
	Distance float64
	Time     float64
}

// ScoringConfig is the tunable surface of the Scoring Engine.
type ScoringConfig struct {
	Weights Weights
	// PeriodWeights overrides Weights for specific periods of the day.
	PeriodWeights map[domain.DayPeriod]Weights
	// PeriodFitWeight scales how well the current period matches a location's
	// suggested period. Locations without one get no period term.
	PeriodFitWeight float64
	// MealBonus is added to meal-labeled candidates while a meal window is active.
	MealBonus  float64
	MealLabels []string
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: Weights{Rating: 0.4, Distance: 0.3, Time: 0.3},
		PeriodWeights: map[domain.DayPeriod]Weights{
			domain.PeriodNight: {Rating: 0.25, Distance: 0.5, Time: 0.25},
		},
		PeriodFitWeight: 0.3,
		MealBonus:       1.0,
		MealLabels: []string{
			"food", "restaurant", "cafe", "snack", "night_market",
			"餐廳", "小吃", "夜市",
		},
	}
}

// WeightsAt returns the weights in effect during period p.
func (c ScoringConfig) WeightsAt(p domain.DayPeriod) Weights {
	if w, ok := c.PeriodWeights[p]; ok {
		return w
	}
	return c.Weights
}

func (c ScoringConfig) IsMealLabel(label string) bool {
	label = strings.TrimSpace(label)
	for _, m := range c.MealLabels {
		if strings.EqualFold(label, m) {
			return true
		}
	}
	return false
}

// ScoringContext is the per-step state the score depends on.
type ScoringContext struct {
	Period              domain.DayPeriod
	MealWindowActive    bool
	DistanceThresholdKm float64
}

// Score is the breakdown of one candidate evaluation.
type Score struct {
	Value        float64
	Efficiency   float64
	RatingNorm   float64
	DistanceNorm float64
	TimeFit      float64
	PeriodFit    float64
	MealBonus    float64
}

// Score evaluates loc reached from the current position via leg, leaving at now.
func (c ScoringConfig) Score(loc *domain.Location, now time.Time, leg Leg, sc ScoringContext) Score {
	w := c.WeightsAt(sc.Period)
	arrival := now.Add(leg.Duration)

	s := Score{
		RatingNorm:   clamp01(loc.Rating / domain.MaxRating),
		DistanceNorm: distanceNorm(leg.DistanceKm, sc.DistanceThresholdKm),
		TimeFit:      TimeFit(loc, arrival),
		PeriodFit:    PeriodFit(loc.Period, sc.Period),
	}
	if sc.MealWindowActive && c.IsMealLabel(loc.Label) {
		s.MealBonus = c.MealBonus
	}

	s.Value = w.Rating*s.RatingNorm + w.Distance*s.DistanceNorm + w.Time*s.TimeFit +
		c.PeriodFitWeight*s.PeriodFit + s.MealBonus

	minutes := (leg.Duration + loc.VisitDuration()).Minutes()
	s.Efficiency = s.Value / math.Max(minutes, 1)
	return s
}

// TimeFit is 1 when the whole visit fits in the segment open at arrival, the
// fraction of the visit inside that segment when it closes mid-visit, and 0
// when closed at arrival.
func TimeFit(loc *domain.Location, arrival time.Time) float64 {
	seg, ok := loc.Hours.SegmentAt(arrival)
	if !ok {
		return 0
	}

	remaining := float64(seg.Close - domain.ClockOf(arrival))
	if remaining >= float64(loc.Duration) {
		return 1
	}
	return clamp01(remaining / float64(loc.Duration))
}

const periodFitFloor = 0.3

// PeriodFit is 1 when current is the suggested period, loses 0.2 per period
// of distance down to 0.3, and is 0 when nothing is suggested.
func PeriodFit(suggested, current domain.DayPeriod) float64 {
	si, ci := suggested.Index(), current.Index()
	if si < 0 || ci < 0 {
		return 0
	}
	diff := si - ci
	if diff < 0 {
		diff = -diff
	}
	return math.Max(periodFitFloor, 1-0.2*float64(diff))
}

func distanceNorm(km, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	return 1 - math.Min(km, threshold)/threshold
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
