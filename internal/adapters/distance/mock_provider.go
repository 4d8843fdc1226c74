package distance

import (
	"context"
	"fmt"
	"sync"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   int
	Seconds  int
}

// MockProvider serves fixed pair results. Unknown pairs fail, which lets
// tests exercise the estimator fallback. It ignores travel mode.
type MockProvider struct {
	m     map[string]ports.DistanceResult
	Err   error
	Delay time.Duration

	mu    sync.Mutex
	calls int
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockProvider{m: m}
}

func (p *MockProvider) GetTravelTime(
	ctx context.Context,
	origin, destination domain.Coordinates,
	mode domain.TravelMode,
) (ports.DistanceResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if err := p.wait(ctx); err != nil {
		return ports.DistanceResult{}, err
	}
	return p.lookup(origin, destination)
}

// Calls returns how many provider requests were made.
func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *MockProvider) wait(ctx context.Context) error {
	if p.Err != nil {
		return p.Err
	}
	if p.Delay <= 0 {
		return nil
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *MockProvider) lookup(origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	r, ok := p.m[origin.Key()+"|"+destination.Key()]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %s -> %s", origin.Key(), destination.Key())
	}
	return r, nil
}

// MockMatrixProvider adds the batched lookup; one GetTravelTimes call counts once.
type MockMatrixProvider struct {
	*MockProvider
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	return &MockMatrixProvider{MockProvider: NewMockProvider(pairs)}
}

func (p *MockMatrixProvider) GetTravelTimes(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
	mode domain.TravelMode,
) ([]ports.DistanceResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	out := make([]ports.DistanceResult, 0, len(destinations))
	for _, d := range destinations {
		r, err := p.lookup(origin, d)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
