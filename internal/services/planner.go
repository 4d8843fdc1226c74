package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"
)

// PlannerConfig holds the tunables of a Planner. Request fields left at zero
// fall back to the defaults here.
type PlannerConfig struct {
	Scoring                    ScoringConfig
	MealWindows                []MealWindow
	DefaultDistanceThresholdKm float64
	DefaultEfficiencyThreshold float64
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		Scoring:                    DefaultScoringConfig(),
		MealWindows:                DefaultMealWindows(),
		DefaultDistanceThresholdKm: 30,
		DefaultEfficiencyThreshold: 0.0005,
	}
}

// Planner builds single-day itineraries. It holds no per-run state and is
// safe for concurrent use.
type Planner struct {
	estimator *TravelEstimator
	cfg       PlannerConfig
}

func NewPlanner(estimator *TravelEstimator, cfg PlannerConfig) *Planner {
	if estimator == nil {
		estimator = NewTravelEstimator(nil, 0, 0)
	}
	return &Planner{estimator: estimator, cfg: cfg}
}

// candidate is a survivor of one selection step.
type candidate struct {
	loc       *domain.Location
	leg       Leg
	arrival   time.Time
	departure time.Time
	score     Score
}

// better orders candidates by efficiency, then raw score, then rating, then name.
func (c *candidate) better(o *candidate) bool {
	if o == nil {
		return true
	}
	if c.score.Efficiency != o.score.Efficiency {
		return c.score.Efficiency > o.score.Efficiency
	}
	if c.score.Value != o.score.Value {
		return c.score.Value > o.score.Value
	}
	if c.loc.Rating != o.loc.Rating {
		return c.loc.Rating > o.loc.Rating
	}
	return c.loc.Name < o.loc.Name
}

// run is the state owned by one Plan invocation.
type run struct {
	req                 domain.PlanningRequest
	start, end          time.Time
	distanceThresholdKm float64
	efficiencyThreshold float64

	it          *domain.Itinerary
	visited     map[string]bool
	unvisited   []*domain.Location
	currentTime time.Time
	currentPos  domain.Coordinates
	meals       *MealPolicy
	warnedEst   bool
}

// Plan runs the greedy scheduler for req.
//
// Each step filters unvisited locations by opening hours at arrival, distance
// and the remaining time budget, scores the survivors, and commits the most
// efficient one. There is no backtracking or lookahead; the result is a
// heuristic, not an optimal schedule.
func (p *Planner) Plan(ctx context.Context, req domain.PlanningRequest) (_ *domain.Itinerary, err error) {
	defer obs.Time(ctx, "planner.Plan")(&err)

	r, err := p.init(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	reason, err := p.selectLoop(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	if req.CustomEnd != nil {
		appended, err := p.appendCustomEnd(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("plan: %w", err)
		}
		if appended {
			reason = domain.TerminationCustomEndReached
		}
	}

	r.it.Freeze(reason)
	return r.it, nil
}

func (p *Planner) init(ctx context.Context, req domain.PlanningRequest) (*run, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start, end, err := req.Window()
	if err != nil {
		return nil, err
	}

	r := &run{
		req:                 req,
		start:               start,
		end:                 end,
		distanceThresholdKm: req.DistanceThresholdKm,
		efficiencyThreshold: req.EfficiencyThreshold,
		it:                  domain.NewItinerary(),
		visited:             make(map[string]bool, len(req.Locations)),
		currentTime:         start,
		meals:               NewMealPolicy(start, p.cfg.MealWindows),
	}
	if r.distanceThresholdKm == 0 {
		r.distanceThresholdKm = p.cfg.DefaultDistanceThresholdKm
	}
	if r.efficiencyThreshold == 0 {
		r.efficiencyThreshold = p.cfg.DefaultEfficiencyThreshold
	}

	// Seed with the custom start, or use the first location as the origin.
	origin := domain.VisitRecord{Kind: domain.RecordStart, ArrivalTime: start, DepartureTime: start}
	if req.CustomStart != nil {
		origin.Name = req.CustomStart.Name
		origin.Position = req.CustomStart.Position
	} else {
		first := req.Locations[0]
		origin.Name = first.Name
		origin.Location = first
		origin.Position = first.Position
		r.visited[first.Name] = true
	}
	if err := r.it.Append(origin); err != nil {
		return nil, err
	}
	r.currentPos = origin.Position

	for _, loc := range req.Locations {
		if r.visited[loc.Name] {
			continue
		}
		if err := loc.Validate(); err != nil {
			obs.Warn(ctx, "planner.Plan", "location=%q excluded: %v", loc.Name, err)
			r.it.Warn(loc.Name, fmt.Sprintf("excluded: %v", err))
			continue
		}
		// Places that never open inside the day can be dropped up front.
		next, ok := loc.NextOpenTime(start)
		if !ok || next.After(end) {
			continue
		}
		r.unvisited = append(r.unvisited, loc)
	}

	return r, nil
}

func (p *Planner) selectLoop(ctx context.Context, r *run) (domain.TerminationReason, error) {
	for {
		if len(r.unvisited) == 0 {
			if r.allVisited() {
				return domain.TerminationAllVisited, nil
			}
			// The rest were excluded or never open during the day.
			return domain.TerminationNoEligibleCandidate, nil
		}
		if !r.currentTime.Before(r.end) {
			return domain.TerminationTimeExhausted, nil
		}

		r.meals.Advance(r.currentTime)
		_, mealActive := r.meals.Active(r.currentTime)
		sc := ScoringContext{
			Period:              PeriodDuring(r.currentTime, r.start, p.cfg.MealWindows),
			MealWindowActive:    mealActive,
			DistanceThresholdKm: r.distanceThresholdKm,
		}

		positions := make([]domain.Coordinates, len(r.unvisited))
		for i, loc := range r.unvisited {
			positions[i] = loc.Position
		}
		legs, err := p.estimator.EstimateMany(ctx, r.currentPos, positions, r.req.TravelMode)
		if err != nil {
			return "", err
		}

		var best *candidate
		budgetBound := false
		for i, loc := range r.unvisited {
			leg := legs[i]
			arrival := r.currentTime.Add(leg.Duration)
			departure := arrival.Add(loc.VisitDuration())

			if !loc.IsOpenAt(arrival) {
				continue
			}
			if leg.DistanceKm > r.distanceThresholdKm {
				continue
			}
			if departure.After(r.end) {
				budgetBound = true
				continue
			}

			c := &candidate{
				loc:       loc,
				leg:       leg,
				arrival:   arrival,
				departure: departure,
				score:     p.cfg.Scoring.Score(loc, r.currentTime, leg, sc),
			}
			if c.score.Efficiency < r.efficiencyThreshold {
				continue
			}
			if c.better(best) {
				best = c
			}
		}

		if best == nil {
			if budgetBound {
				return domain.TerminationTimeExhausted, nil
			}
			return domain.TerminationNoEligibleCandidate, nil
		}

		if err := p.commit(r, best, mealActive); err != nil {
			return "", err
		}
	}
}

func (r *run) allVisited() bool {
	for _, loc := range r.req.Locations {
		if !r.visited[loc.Name] {
			return false
		}
	}
	return true
}

func (p *Planner) commit(r *run, c *candidate, mealActive bool) error {
	isMeal := p.cfg.Scoring.IsMealLabel(c.loc.Label)
	rec := domain.VisitRecord{
		Kind:             domain.RecordVisit,
		Name:             c.loc.Name,
		Location:         c.loc,
		Position:         c.loc.Position,
		ArrivalTime:      c.arrival,
		DepartureTime:    c.departure,
		TravelDistanceKm: c.leg.DistanceKm,
		TravelDuration:   c.leg.Duration,
		Estimated:        c.leg.Estimated,
		IsMeal:           isMeal,
	}
	if err := r.it.Append(rec); err != nil {
		return fmt.Errorf("commit %q: %w", c.loc.Name, err)
	}
	if c.leg.Estimated {
		r.noteEstimate()
	}

	if isMeal && mealActive {
		r.meals.RecordMeal(r.currentTime)
	}

	r.visited[c.loc.Name] = true
	remaining := r.unvisited[:0]
	for _, loc := range r.unvisited {
		if loc != c.loc {
			remaining = append(remaining, loc)
		}
	}
	r.unvisited = remaining
	r.currentTime = c.departure
	r.currentPos = c.loc.Position
	return nil
}

func (p *Planner) appendCustomEnd(ctx context.Context, r *run) (bool, error) {
	end := r.req.CustomEnd
	leg, err := p.estimator.Estimate(ctx, r.currentPos, end.Position, r.req.TravelMode)
	if err != nil {
		return false, err
	}

	arrival := r.currentTime.Add(leg.Duration)
	if leg.DistanceKm > r.distanceThresholdKm || arrival.After(r.end) {
		r.it.Warn(end.Name, "custom end not reachable within time and distance limits")
		return false, nil
	}

	rec := domain.VisitRecord{
		Kind:             domain.RecordEnd,
		Name:             end.Name,
		Position:         end.Position,
		ArrivalTime:      arrival,
		DepartureTime:    arrival,
		TravelDistanceKm: leg.DistanceKm,
		TravelDuration:   leg.Duration,
		Estimated:        leg.Estimated,
	}
	if err := r.it.Append(rec); err != nil {
		return false, fmt.Errorf("append custom end: %w", err)
	}
	if leg.Estimated {
		r.noteEstimate()
	}
	r.currentTime = arrival
	r.currentPos = end.Position
	return true, nil
}

func (r *run) noteEstimate() {
	if r.warnedEst {
		return
	}
	r.warnedEst = true
	r.it.Warn("", "travel times include straight-line estimates")
}

func validateRequest(req domain.PlanningRequest) error {
	if len(req.Locations) == 0 && req.CustomStart == nil {
		return fmt.Errorf("%w: locations or a custom start are required", domain.ErrInvalidRequest)
	}
	if _, err := domain.ParseTravelMode(string(req.TravelMode)); err != nil {
		return err
	}
	if req.DistanceThresholdKm < 0 {
		return fmt.Errorf("%w: distance threshold must not be negative", domain.ErrInvalidRequest)
	}
	if req.EfficiencyThreshold < 0 {
		return fmt.Errorf("%w: efficiency threshold must not be negative", domain.ErrInvalidRequest)
	}

	seen := make(map[string]struct{}, len(req.Locations))
	for i, loc := range req.Locations {
		if loc == nil {
			return fmt.Errorf("%w: location #%d is nil", domain.ErrInvalidRequest, i+1)
		}
		name := strings.TrimSpace(loc.Name)
		if name == "" {
			return fmt.Errorf("%w: location #%d has no name", domain.ErrInvalidRequest, i+1)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate location %q", domain.ErrInvalidRequest, name)
		}
		seen[name] = struct{}{}
	}

	for _, wp := range []*domain.Waypoint{req.CustomStart, req.CustomEnd} {
		if wp != nil && !wp.Position.Valid() {
			return fmt.Errorf("%w: waypoint %q has invalid position", domain.ErrInvalidRequest, wp.Name)
		}
	}
	return nil
}
