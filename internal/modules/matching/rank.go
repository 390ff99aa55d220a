// README: Compatibility scoring and ranking of searching-pool candidates.
package matching

import (
	"sort"

	"wheels/internal/modules/distance"
	"wheels/internal/types"
)

// DistanceFunc measures the detour between two points in km.
type DistanceFunc func(a, b types.Point) float64

// Rank filters pool against requester and orders the survivors by
// compatibility score, highest first. Candidates with equal scores keep their
// pool order. role is the requester's role; pool is expected to hold the
// opposite role.
func Rank(requester TripRequest, role Role, pool []TripRequest, defaultDetourKm float64, dist DistanceFunc) []Candidate {
	matches := make([]Candidate, 0)
	if len(pool) == 0 {
		return matches
	}

	reqPickup, reqDropoff, ok := requester.Endpoints()
	if !ok {
		return matches
	}

	for _, c := range pool {
		pickup, dropoff, ok := c.Endpoints()
		if !ok {
			continue
		}

		pickupDetour := dist(reqPickup, pickup)
		dropoffDetour := dist(reqDropoff, dropoff)

		threshold := defaultDetourKm
		if c.MaxDetourKm != nil {
			threshold = *c.MaxDetourKm
		}
		if pickupDetour > threshold || dropoffDetour > threshold {
			continue
		}
		if role == RolePassenger && c.seats() <= 0 {
			continue
		}

		match := Candidate{
			ID:              c.ID,
			UserID:          c.UserID,
			Role:            role.Opposite(),
			PickupAddress:   c.PickupAddress,
			DropoffAddress:  c.DropoffAddress,
			Pickup:          pickup,
			Dropoff:         dropoff,
			PickupDetourKm:  distance.Round2(pickupDetour),
			DropoffDetourKm: distance.Round2(dropoffDetour),
			Score:           Score(pickupDetour, dropoffDetour),
		}
		if role == RolePassenger {
			match.AvailableSeats = c.seats()
			match.PricePerSeat = c.price()
		}
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Score is the linear detour penalty, rounded to two decimals.
func Score(pickupDetourKm, dropoffDetourKm float64) float64 {
	return distance.Round2(100 - (pickupDetourKm+dropoffDetourKm)*10)
}
