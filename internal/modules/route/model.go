// README: Pickup requests, sequenced stops and optimisation results.
package route

import (
	"wheels/internal/maps"
	"wheels/internal/types"
)

const (
	MethodNearestNeighbor = "nearest_neighbor"
	MethodWithDirections  = "nearest_neighbor + google_maps"
)

type PickupRequest struct {
	ID            string
	Name          string
	PickupAddress string
	Pickup        types.Point
}

// PickupStop is a PickupRequest placed in the route.
type PickupStop struct {
	PickupRequest
	Order                  int
	DistanceFromPreviousKm float64
}

type Result struct {
	Stops            []PickupStop
	TotalDistanceKm  float64
	EstimatedMinutes int
	Method           string
	// Directions is supplementary; it never changes Stops.
	Directions *maps.Directions
}

type Detour struct {
	OriginalKm    float64
	NewKm         float64
	DetourKm      float64
	DetourPercent float64
}

type Capabilities struct {
	Service           string
	GoogleMapsEnabled bool
	Algorithms        []string
}
