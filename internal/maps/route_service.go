// README: Google Maps distance matrix and directions client.
package maps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"googlemaps.github.io/maps"

	"wheels/internal/types"
)

var (
	ErrNoRoute     = errors.New("no route found")
	ErrTooFewStops = errors.New("directions need at least an origin and a destination")
)

// Directions summarises a driving route across all of its legs.
type Directions struct {
	DistanceMeters  int     `json:"distance_meters"`
	DistanceKm      float64 `json:"distance_km"`
	DurationSeconds int     `json:"duration_seconds"`
	DurationMinutes int     `json:"duration_minutes"`
	Polyline        string  `json:"polyline"`
	WaypointOrder   []int   `json:"waypoint_order,omitempty"`
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key. Extra
// options are passed to the underlying client (base URL, HTTP client).
func NewRouteService(apiKey string, opts ...maps.ClientOption) (*RouteService, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// DistanceKm returns the driving distance between two points using the
// Distance Matrix API.
func (s *RouteService) DistanceKm(ctx context.Context, a, b types.Point) (float64, error) {
	r := &maps.DistanceMatrixRequest{
		Origins:      []string{latLng(a)},
		Destinations: []string{latLng(b)},
		Mode:         maps.TravelModeDriving,
	}

	resp, err := s.client.DistanceMatrix(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("distance matrix api error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 || resp.Rows[0].Elements[0] == nil {
		return 0, ErrNoRoute
	}

	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, fmt.Errorf("distance matrix element status %s", el.Status)
	}
	return float64(el.Distance.Meters) / 1000, nil
}

// Directions requests a driving route from the first waypoint to the last,
// letting Google optimise the order of the intermediate stops.
func (s *RouteService) Directions(ctx context.Context, waypoints []types.Point) (*Directions, error) {
	if len(waypoints) < 2 {
		return nil, ErrTooFewStops
	}

	r := &maps.DirectionsRequest{
		Origin:      latLng(waypoints[0]),
		Destination: latLng(waypoints[len(waypoints)-1]),
		Mode:        maps.TravelModeDriving,
	}
	if len(waypoints) > 2 {
		for _, w := range waypoints[1 : len(waypoints)-1] {
			r.Waypoints = append(r.Waypoints, latLng(w))
		}
		r.Optimize = true
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, ErrNoRoute
	}

	route := routes[0]
	var meters int
	var duration time.Duration
	for _, leg := range route.Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
	}

	seconds := int(duration / time.Second)
	return &Directions{
		DistanceMeters:  meters,
		DistanceKm:      math.Round(float64(meters)/10) / 100,
		DurationSeconds: seconds,
		DurationMinutes: int(math.Round(float64(seconds) / 60)),
		Polyline:        route.OverviewPolyline.Points,
		WaypointOrder:   route.WaypointOrder,
	}, nil
}

func latLng(p types.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
