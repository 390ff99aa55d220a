// README: Searching-pool trip requests and ranked match candidates.
package matching

import (
	"errors"
	"time"

	"wheels/internal/types"
)

type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

var ErrInvalidRole = errors.New("invalid user_type")

// ParseRole accepts exactly "driver" or "passenger".
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDriver, RolePassenger:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// Opposite returns the role a requester of r is matched against.
func (r Role) Opposite() Role {
	if r == RoleDriver {
		return RolePassenger
	}
	return RoleDriver
}

// TripRequest is a searching user's intent as read from the pool (or as
// submitted by the requester). Coordinates are optional so partial rows can be
// represented and skipped.
type TripRequest struct {
	ID             types.ID
	UserID         types.ID
	Role           Role
	PickupAddress  string
	DropoffAddress string
	PickupLat      *float64
	PickupLng      *float64
	DropoffLat     *float64
	DropoffLng     *float64
	MaxDetourKm    *float64
	AvailableSeats *int
	PricePerSeat   *float64
}

// Endpoints returns the pickup and dropoff points; ok is false when any of
// the four coordinates is missing or out of range.
func (t TripRequest) Endpoints() (pickup, dropoff types.Point, ok bool) {
	pickup, okP := types.ParsePoint(t.PickupLat, t.PickupLng)
	dropoff, okD := types.ParsePoint(t.DropoffLat, t.DropoffLng)
	return pickup, dropoff, okP && okD
}

func (t TripRequest) seats() int {
	if t.AvailableSeats == nil {
		return 0
	}
	return *t.AvailableSeats
}

func (t TripRequest) price() float64 {
	if t.PricePerSeat == nil {
		return 0
	}
	return *t.PricePerSeat
}

// Candidate is one ranked counterpart. It lives only for the duration of a
// single Match call.
type Candidate struct {
	ID              types.ID
	UserID          types.ID
	Role            Role
	PickupAddress   string
	DropoffAddress  string
	Pickup          types.Point
	Dropoff         types.Point
	AvailableSeats  int
	PricePerSeat    float64
	PickupDetourKm  float64
	DropoffDetourKm float64
	// Score is 100 minus ten points per km of combined detour. It is not
	// clamped and goes negative once the combined detour exceeds 10 km.
	Score float64
}

type PoolStatus struct {
	ActiveDrivers    int
	ActivePassengers int
	CheckedAt        time.Time
}
