package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"
)

// ErrUnsupportedMode is returned for travel modes OpenRouteService cannot route.
var ErrUnsupportedMode = errors.New("ors: travel mode not supported")

// ORSProvider implements TravelMatrixProvider and Geocoder using OpenRouteService.
//
// It coordinates:
//   - Persistent travel-time caching keyed by mode and rounded coordinates
//   - Persistent geocode caching keyed by normalized address
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	country      string
	travelCache  ports.TravelCache
	geocodeCache ports.GeocodeCache
	retry        retryPolicy
}

type ORSOption func(*ORSProvider)

func WithBaseURL(u string) ORSOption {
	return func(o *ORSProvider) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithCountry restricts geocoding to an ISO 3166 country code.
func WithCountry(code string) ORSOption {
	return func(o *ORSProvider) { o.country = code }
}

func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSProvider) { o.session = c }
}

func NewORSProvider(
	apiKey string,
	travelCache ports.TravelCache,
	geocodeCache ports.GeocodeCache,
	opts ...ORSOption,
) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSProvider{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      "https://api.openrouteservice.org",
		travelCache:  travelCache,
		geocodeCache: geocodeCache,
		retry:        retryPolicy{attempts: 4, backoff: 200 * time.Millisecond},
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

func orsProfile(mode domain.TravelMode) (string, error) {
	switch mode {
	case domain.TravelModeDriving:
		return "driving-car", nil
	case domain.TravelModeWalking:
		return "foot-walking", nil
	default:
		// ORS has no public-transit routing.
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}

// normalize ensures consistent cache keys by collapsing whitespace and case.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Delegate to batched path to reuse caching and matrix logic.
func (o *ORSProvider) GetTravelTime(
	ctx context.Context,
	origin, destination domain.Coordinates,
	mode domain.TravelMode,
) (ports.DistanceResult, error) {
	results, err := o.GetTravelTimes(ctx, origin, []domain.Coordinates{destination}, mode)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get travel time %s -> %s: %w", origin.Key(), destination.Key(), err)
	}
	return results[0], nil
}

// Compute travel results from a single origin to many destinations.
// Results are aligned with destinations.
func (o *ORSProvider) GetTravelTimes(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
	mode domain.TravelMode,
) (_ []ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetTravelTimes")(&err)

	profile, err := orsProfile(mode)
	if err != nil {
		return nil, err
	}

	if len(destinations) == 0 {
		return []ports.DistanceResult{}, nil
	}

	originKey := string(mode) + "|" + origin.Key()

	seen := make(map[string]struct{}, len(destinations))
	destKeys := make([]string, 0, len(destinations))
	coordsByKey := make(map[string]domain.Coordinates, len(destinations))
	for _, d := range destinations {
		k := d.Key()
		if k == origin.Key() {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		destKeys = append(destKeys, k)
		coordsByKey[k] = d
	}

	hits := make(map[string]ports.DistanceResult)
	// Check persistent cache before issuing external API calls.
	if o.travelCache != nil && len(destKeys) > 0 {
		hits, err = o.travelCache.GetMany(ctx, originKey, destKeys)
		if err != nil {
			return nil, fmt.Errorf("ORS get travel cache: %w", err)
		}
	}

	misses := make([]string, 0, len(destKeys))
	for _, k := range destKeys {
		if _, ok := hits[k]; !ok {
			misses = append(misses, k)
		}
	}

	fetched := map[string]ports.DistanceResult{}
	if len(misses) > 0 {
		missCoords := make([]domain.Coordinates, 0, len(misses))
		for _, k := range misses {
			missCoords = append(missCoords, coordsByKey[k])
		}

		// Fetch a single origin->many matrix row for all cache misses.
		fetched, err = o.fetchMatrixRow(ctx, profile, origin, misses, missCoords)
		if err != nil {
			return nil, fmt.Errorf("fetching matrix row: %w", err)
		}

		if o.travelCache != nil {
			if err := o.travelCache.PutMany(ctx, originKey, fetched); err != nil {
				log.Printf("req_id=%s travel cache write failed: %v", obs.RequestID(ctx), err)
			}
		}
	}

	out := make([]ports.DistanceResult, 0, len(destinations))
	for _, d := range destinations {
		k := d.Key()
		if k == origin.Key() {
			out = append(out, ports.DistanceResult{})
			continue
		}
		if r, ok := hits[k]; ok {
			out = append(out, r)
			continue
		}
		r, ok := fetched[k]
		if !ok {
			return nil, fmt.Errorf("ORS matrix service did not return destination %s", k)
		}
		out = append(out, r)
	}

	return out, nil
}

// Geocode resolves an address, consulting the geocode cache first.
func (o *ORSProvider) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, []string{norm})
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("ORS get geocode cache: %w", err)
		}
		if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	coords, err := o.geocodeOne(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("retrieving coordinates: %w", err)
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{norm: coords}); err != nil {
			log.Printf("req_id=%s geocode cache write failed: %v", obs.RequestID(ctx), err)
		}
	}

	return coords, nil
}
