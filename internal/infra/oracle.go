// README: Google Maps oracle wiring; optional Redis caching in front of the distance matrix.
package infra

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wheels/internal/config"
	"wheels/internal/maps"
	"wheels/internal/modules/distance"
)

// Oracles holds the external road-distance collaborators. Both fields are
// nil interfaces when no API key is configured.
type Oracles struct {
	Routes   *maps.RouteService
	Distance distance.Oracle
}

func NewOracles(cfg config.MapsConfig, rdb *redis.Client, log *zap.Logger) (Oracles, error) {
	if cfg.APIKey == "" {
		return Oracles{}, nil
	}
	rs, err := maps.NewRouteService(cfg.APIKey)
	if err != nil {
		return Oracles{}, fmt.Errorf("maps.NewRouteService: %w", err)
	}

	o := Oracles{Routes: rs, Distance: rs}
	if rdb != nil {
		o.Distance = distance.NewCachedOracle(rs, rdb, cfg.CacheTTL, log)
	}
	return o, nil
}
