package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Units        string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchMatrixRow asks the matrix endpoint for one origin row. keys and coords
// are parallel; the result is keyed by keys.
func (o *ORSProvider) fetchMatrixRow(
	ctx context.Context,
	profile string,
	origin domain.Coordinates,
	keys []string,
	coords []domain.Coordinates,
) (map[string]ports.DistanceResult, error) {
	if len(keys) != len(coords) {
		return nil, fmt.Errorf("matrix row: %d keys for %d coordinates", len(keys), len(coords))
	}
	if len(keys) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	body := matrixRequest{
		Locations:    make([][]float64, 0, len(coords)+1),
		Sources:      []int{0},
		Destinations: make([]int, 0, len(coords)),
		Metrics:      []string{"distance", "duration"},
		Units:        "m",
	}
	body.Locations = append(body.Locations, origin.CoordsToList())
	for i, c := range coords {
		body.Locations = append(body.Locations, c.CoordsToList())
		body.Destinations = append(body.Destinations, i+1)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, profile)
	resp, err := o.send(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}
	if len(mr.Distances) != 1 || len(mr.Durations) != 1 {
		return nil, fmt.Errorf("expected 1 source row; got distances=%d durations=%d", len(mr.Distances), len(mr.Durations))
	}

	dists, durs := mr.Distances[0], mr.Durations[0]
	if len(dists) != len(keys) || len(durs) != len(keys) {
		return nil, fmt.Errorf("row length mismatch: distances=%d durations=%d destinations=%d", len(dists), len(durs), len(keys))
	}

	out := make(map[string]ports.DistanceResult, len(keys))
	for i, k := range keys {
		// Unroutable pairs come back as null.
		if dists[i] == nil || durs[i] == nil {
			return nil, fmt.Errorf("no route to %s", k)
		}
		out[k] = ports.DistanceResult{
			DistanceMeters:  int(math.Round(*dists[i])),
			DurationSeconds: int(math.Round(*durs[i])),
		}
	}
	return out, nil
}
