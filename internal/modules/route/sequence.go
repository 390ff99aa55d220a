// README: Greedy nearest-neighbor pickup sequencing and detour arithmetic.
package route

import (
	"math"

	"wheels/internal/modules/distance"
	"wheels/internal/types"
)

// DistanceFunc measures the distance between two points in km.
type DistanceFunc func(a, b types.Point) float64

// Sequence orders pickups by repeatedly driving to the closest unvisited one,
// starting at start, and closes the route at dest.
//
// The scan is O(n²) in the number of pickups, which is fine for the handful a
// single driver serves. On an exact distance tie the pickup that came first in
// the input wins; that rule is arbitrary but callers rely on it.
func Sequence(start, dest types.Point, pickups []PickupRequest, dist DistanceFunc, avgSpeedKmh float64) Result {
	stops := make([]PickupStop, 0, len(pickups))
	visited := make([]bool, len(pickups))
	current := start
	var total float64

	for len(stops) < len(pickups) {
		best, bestKm := -1, math.Inf(1)
		for i, p := range pickups {
			if visited[i] {
				continue
			}
			if d := dist(current, p.Pickup); best == -1 || d < bestKm {
				best, bestKm = i, d
			}
		}

		visited[best] = true
		total += bestKm
		stops = append(stops, PickupStop{
			PickupRequest:          pickups[best],
			Order:                  len(stops) + 1,
			DistanceFromPreviousKm: distance.Round2(bestKm),
		})
		current = pickups[best].Pickup
	}
	total += dist(current, dest)

	totalKm := distance.Round2(total)
	return Result{
		Stops:            stops,
		TotalDistanceKm:  totalKm,
		EstimatedMinutes: ETA(totalKm, avgSpeedKmh),
		Method:           MethodNearestNeighbor,
	}
}

// ETA converts a distance to whole minutes at avgSpeedKmh, truncating.
func ETA(distanceKm, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = 40
	}
	return int(distanceKm / avgSpeedKmh * 60)
}

// CalculateDetour compares driving straight from current to dest against
// stopping at pickup on the way.
func CalculateDetour(current, dest, pickup types.Point, dist DistanceFunc) Detour {
	original := dist(current, dest)
	via := dist(current, pickup) + dist(pickup, dest)
	detour := via - original

	d := Detour{
		OriginalKm: distance.Round2(original),
		NewKm:      distance.Round2(via),
		DetourKm:   distance.Round2(detour),
	}
	if original > 0 {
		d.DetourPercent = distance.Round2(detour / original * 100)
	}
	return d
}
