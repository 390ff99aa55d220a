// README: Matching service reads the searching pool and ranks counterparts for a requester.
package matching

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wheels/internal/config"
	"wheels/internal/types"
)

// PoolReader lists users currently searching in a given role.
type PoolReader interface {
	Searching(ctx context.Context, role Role) ([]TripRequest, error)
}

type Estimator interface {
	Distance(a, b types.Point) float64
	DrivingDistance(ctx context.Context, a, b types.Point) float64
}

type Service struct {
	pool PoolReader
	est  Estimator
	cfg  config.MatchingConfig
	log  *zap.Logger
	now  func() time.Time
}

func NewService(pool PoolReader, est Estimator, cfg config.MatchingConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxDetourKm <= 0 {
		cfg.MaxDetourKm = config.DefaultMaxDetourKm
	}
	return &Service{pool: pool, est: est, cfg: cfg, log: log, now: time.Now}
}

// Match returns the opposite-role users compatible with requester, best
// score first. A pool read failure yields an empty result.
func (s *Service) Match(ctx context.Context, requester TripRequest, role Role) []Candidate {
	pool := s.searching(ctx, role.Opposite())

	dist := DistanceFunc(s.est.Distance)
	if s.cfg.UseDrivingDistance {
		dist = func(a, b types.Point) float64 { return s.est.DrivingDistance(ctx, a, b) }
	}

	matches := Rank(requester, role, pool, s.cfg.MaxDetourKm, dist)
	s.log.Info("matchmaking completed",
		zap.String("role", string(role)),
		zap.Int("pool_size", len(pool)),
		zap.Int("matches", len(matches)),
	)
	return matches
}

// Status counts searching users per role.
func (s *Service) Status(ctx context.Context) PoolStatus {
	return PoolStatus{
		ActiveDrivers:    len(s.searching(ctx, RoleDriver)),
		ActivePassengers: len(s.searching(ctx, RolePassenger)),
		CheckedAt:        s.now(),
	}
}

func (s *Service) searching(ctx context.Context, role Role) []TripRequest {
	users, err := s.pool.Searching(ctx, role)
	if err != nil {
		s.log.Warn("searching pool unavailable", zap.String("role", string(role)), zap.Error(err))
		return nil
	}
	return users
}
