package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/ports"
	"math"
	"net/http"
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

// fetchMatrixRow asks /v2/matrix/{profile} for a single source row with
// the origin at index 0. Null cells mean ORS found no truck route.
func (o *ORSProvider) fetchMatrixRow(
	ctx context.Context,
	originCoord domain.Coordinates,
	destinations []string,
	destinationCoords []domain.Coordinates,
) (_ map[string]ports.DistanceResult, err error) {
	if len(destinations) != len(destinationCoords) {
		return nil, errors.New("destinations and destinationCoords must have the same length")
	}
	if len(destinations) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}
	defer obs.Time(ctx, "ors.fetchMatrixRow")(&err)

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, 1+len(destinationCoords))
	locations = append(locations, originCoord.CoordsToList())
	destIdx := make([]int, 0, len(destinationCoords))
	for i, c := range destinationCoords {
		locations = append(locations, c.CoordsToList())
		destIdx = append(destIdx, i+1)
	}

	payload, err := json.Marshal(matrixRequest{
		Locations:    locations,
		Sources:      []int{0},
		Destinations: destIdx,
		Metrics:      []string{"distance", "duration"},
		Units:        "m",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
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
		return nil, fmt.Errorf("expected 1 source row; got distances=%d durations=%d",
			len(mr.Distances), len(mr.Durations))
	}

	rowDistances, rowDurations := mr.Distances[0], mr.Durations[0]
	if len(rowDistances) != len(destinations) || len(rowDurations) != len(destinations) {
		return nil, fmt.Errorf("row lengths do not match destinations: distances=%d durations=%d destinations=%d",
			len(rowDistances), len(rowDurations), len(destinations))
	}

	out := make(map[string]ports.DistanceResult, len(destinations))
	for i, dest := range destinations {
		meters, seconds := rowDistances[i], rowDurations[i]
		if meters == nil || seconds == nil {
			return nil, fmt.Errorf("no truck route to %q", dest)
		}
		out[dest] = ports.DistanceResult{
			DistanceMeters:  int(math.Round(*meters)),
			DurationSeconds: int(math.Round(*seconds)),
		}
	}

	return out, nil
}
