package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"trip-planner-service/internal/domain"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// geocodeOne resolves a normalized address via /geocode/search.
func (o *ORSProvider) geocodeOne(ctx context.Context, address string) (domain.Coordinates, error) {
	q := url.Values{}
	q.Set("text", address)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}
	endpoint := o.baseURL + "/geocode/search?" + q.Encode()

	resp, err := o.send(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	pt := decoded.Features[0].Geometry.Coordinates
	if len(pt) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}
	c := domain.Coordinates{Lon: pt[0], Lat: pt[1]}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("geocode result out of range for %q", address)
	}
	return c, nil
}
