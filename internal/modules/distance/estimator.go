// README: Distance estimator; geodesic baseline with an optional driving-distance oracle.
package distance

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"wheels/internal/types"
)

// Oracle computes real road distances. Any returned error makes the caller
// fall back to the geodesic estimate.
type Oracle interface {
	DistanceKm(ctx context.Context, a, b types.Point) (float64, error)
}

type Estimator struct {
	oracle  Oracle
	timeout time.Duration
	log     *zap.Logger
}

// NewEstimator builds an Estimator. oracle may be nil, in which case
// DrivingDistance always answers with the geodesic value.
func NewEstimator(oracle Oracle, timeout time.Duration, log *zap.Logger) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Estimator{oracle: oracle, timeout: timeout, log: log}
}

// Distance returns the great-circle distance in km, or +Inf when either point
// is not a valid coordinate.
func (e *Estimator) Distance(a, b types.Point) float64 {
	if !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}
	return Haversine(a, b)
}

// DrivingDistance asks the oracle for the road distance. Failures are logged
// and answered with Distance(a, b); the caller never sees them.
func (e *Estimator) DrivingDistance(ctx context.Context, a, b types.Point) float64 {
	geodesic := e.Distance(a, b)
	if e.oracle == nil || math.IsInf(geodesic, 1) {
		return geodesic
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	km, err := e.oracle.DistanceKm(ctx, a, b)
	if err == nil && (math.IsNaN(km) || math.IsInf(km, 0) || km < 0) {
		err = errBadOracleValue
	}
	if err != nil {
		e.log.Warn("driving distance unavailable, using geodesic",
			zap.Error(err),
			zap.Float64("geodesic_km", geodesic),
		)
		return geodesic
	}
	return km
}

// HasOracle reports whether a driving-distance oracle is configured.
func (e *Estimator) HasOracle() bool {
	return e.oracle != nil
}
