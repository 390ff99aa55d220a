// README: Route service sequences pickups and optionally attaches Google directions.
package route

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wheels/internal/config"
	"wheels/internal/maps"
	"wheels/internal/types"
)

type Estimator interface {
	Distance(a, b types.Point) float64
}

// DirectionsOracle returns a driving route through waypoints in order.
type DirectionsOracle interface {
	Directions(ctx context.Context, waypoints []types.Point) (*maps.Directions, error)
}

type OptimizeCommand struct {
	Start         types.Point
	Destination   types.Point
	Pickups       []PickupRequest
	UseDirections bool
}

type Service struct {
	est        Estimator
	directions DirectionsOracle
	cfg        config.RouteConfig
	timeout    time.Duration
	log        *zap.Logger
}

// NewService builds a route Service. directions may be nil when no oracle is
// configured.
func NewService(est Estimator, directions DirectionsOracle, cfg config.RouteConfig, timeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.AvgSpeedKmh <= 0 {
		cfg.AvgSpeedKmh = config.DefaultAvgSpeedKmh
	}
	return &Service{est: est, directions: directions, cfg: cfg, timeout: timeout, log: log}
}

// Optimize sequences the pickups. When requested and available, Google
// directions for the computed order are attached; a directions failure leaves
// the result as plain nearest-neighbor.
func (s *Service) Optimize(ctx context.Context, cmd OptimizeCommand) Result {
	res := Sequence(cmd.Start, cmd.Destination, cmd.Pickups, s.est.Distance, s.cfg.AvgSpeedKmh)
	if !cmd.UseDirections || s.directions == nil || len(res.Stops) == 0 {
		return res
	}

	waypoints := make([]types.Point, 0, len(res.Stops)+2)
	waypoints = append(waypoints, cmd.Start)
	for _, st := range res.Stops {
		waypoints = append(waypoints, st.Pickup)
	}
	waypoints = append(waypoints, cmd.Destination)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	d, err := s.directions.Directions(ctx, waypoints)
	if err != nil {
		s.log.Warn("google directions unavailable", zap.Int("waypoints", len(waypoints)), zap.Error(err))
		return res
	}
	res.Directions = d
	res.Method = MethodWithDirections
	return res
}

func (s *Service) CalculateDetour(current, dest, pickup types.Point) Detour {
	return CalculateDetour(current, dest, pickup, s.est.Distance)
}

func (s *Service) Capabilities() Capabilities {
	return Capabilities{
		Service:           "pickup_optimization",
		GoogleMapsEnabled: s.directions != nil,
		Algorithms:        []string{MethodNearestNeighbor},
	}
}
