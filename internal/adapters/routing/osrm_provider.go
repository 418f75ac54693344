package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/platform/obs"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

// OSRMRouteProvider resolves road geometry through an OSRM-compatible
// routing service. Requests are rate limited and retried on transient
// failures. The provider is safe for concurrent use.
type OSRMRouteProvider struct {
	session *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewOSRMRouteProvider(baseURL string) (*OSRMRouteProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("OSRM base URL is empty")
	}

	return &OSRMRouteProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		// Public OSRM instances throttle aggressively; keep bursts small.
		limiter: rate.NewLimiter(rate.Limit(10), 5),
	}, nil
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// FetchRoute requests one driving route through the given points, in order.
func (o *OSRMRouteProvider) FetchRoute(ctx context.Context, points []domain.Coordinates) (_ ports.RoadRoute, err error) {
	defer obs.Time(ctx, "osrm.FetchRoute")(&err)

	if len(points) < 2 {
		return ports.RoadRoute{}, errors.New("route needs at least two points")
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return ports.RoadRoute{}, err
	}

	tokens := make([]string, 0, len(points))
	for _, p := range points {
		tokens = append(tokens, p.PathToken())
	}
	url := fmt.Sprintf(
		"%s/route/v1/driving/%s?overview=full&geometries=geojson",
		o.baseURL, strings.Join(tokens, ";"),
	)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, url)
	})
	if err != nil {
		return ports.RoadRoute{}, fmt.Errorf("OSRM route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RoadRoute{}, fmt.Errorf("decode OSRM response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return ports.RoadRoute{}, fmt.Errorf("OSRM returned no routes (code %q)", decoded.Code)
	}

	best := decoded.Routes[0]
	geometry := make([]domain.Coordinates, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		// GeoJSON orders coordinates lng first.
		lng, lat := pair[0], pair[1]
		if math.IsNaN(lat) || math.IsNaN(lng) {
			continue
		}
		geometry = append(geometry, domain.Coordinates{Lat: lat, Lng: lng})
	}

	if len(geometry) < 2 {
		return ports.RoadRoute{}, errors.New("OSRM route has no usable geometry")
	}

	return ports.RoadRoute{
		Geometry:        geometry,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
	}, nil
}
