// README: Matchmaking handlers (match, pool status).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wheels/internal/modules/matching"
	"wheels/internal/types"
)

type Matcher interface {
	Match(ctx context.Context, requester matching.TripRequest, role matching.Role) []matching.Candidate
	Status(ctx context.Context) matching.PoolStatus
}

type MatchmakingHandler struct {
	matcher Matcher
}

func NewMatchmakingHandler(m Matcher) *MatchmakingHandler {
	return &MatchmakingHandler{matcher: m}
}

type matchReq struct {
	UserType       string   `json:"user_type"`
	UserID         string   `json:"user_id"`
	PickupAddress  string   `json:"pickup_address"`
	DropoffAddress string   `json:"dropoff_address"`
	PickupLat      *float64 `json:"pickup_lat"`
	PickupLng      *float64 `json:"pickup_lng"`
	DropoffLat     *float64 `json:"dropoff_lat"`
	DropoffLng     *float64 `json:"dropoff_lng"`
	MaxDetourKm    *float64 `json:"max_detour_km"`
	AvailableSeats *int     `json:"available_seats"`
	PricePerSeat   *float64 `json:"price_per_seat"`
}

// matchView is one entry of the matches array. Exactly one of the passenger
// or driver identity pairs is set, depending on who was matched.
type matchView struct {
	PassengerID       string   `json:"passenger_id,omitempty"`
	PassengerUserID   string   `json:"passenger_user_id,omitempty"`
	DriverID          string   `json:"driver_id,omitempty"`
	DriverUserID      string   `json:"driver_user_id,omitempty"`
	PickupAddress     string   `json:"pickup_address"`
	DropoffAddress    string   `json:"dropoff_address"`
	PickupLat         float64  `json:"pickup_lat"`
	PickupLng         float64  `json:"pickup_lng"`
	DropoffLat        float64  `json:"dropoff_lat"`
	DropoffLng        float64  `json:"dropoff_lng"`
	AvailableSeats    *int     `json:"available_seats,omitempty"`
	PricePerSeat      *float64 `json:"price_per_seat,omitempty"`
	PickupDistanceKm  float64  `json:"pickup_distance_km"`
	DropoffDistanceKm float64  `json:"dropoff_distance_km"`
	Score             float64  `json:"compatibility_score"`
}

type matchResp struct {
	Success bool        `json:"success"`
	Matches []matchView `json:"matches"`
	Count   int         `json:"count"`
}

type statusResp struct {
	Status           string `json:"status"`
	ActiveDrivers    int    `json:"active_drivers"`
	ActivePassengers int    `json:"active_passengers"`
	Timestamp        string `json:"timestamp"`
}

func (h *MatchmakingHandler) Match(c *gin.Context) {
	var req matchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if req.UserType == "" {
		writeError(c, http.StatusBadRequest, msgUserTypeNeeded)
		return
	}
	role, err := matching.ParseRole(req.UserType)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	requester := matching.TripRequest{
		UserID:         types.ID(req.UserID),
		Role:           role,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		MaxDetourKm:    req.MaxDetourKm,
		AvailableSeats: req.AvailableSeats,
		PricePerSeat:   req.PricePerSeat,
	}
	candidates := h.matcher.Match(c.Request.Context(), requester, role)

	views := make([]matchView, 0, len(candidates))
	for _, cand := range candidates {
		views = append(views, toMatchView(cand))
	}
	writeJSON(c, http.StatusOK, matchResp{Success: true, Matches: views, Count: len(views)})
}

func (h *MatchmakingHandler) Status(c *gin.Context) {
	st := h.matcher.Status(c.Request.Context())
	writeJSON(c, http.StatusOK, statusResp{
		Status:           "online",
		ActiveDrivers:    st.ActiveDrivers,
		ActivePassengers: st.ActivePassengers,
		Timestamp:        st.CheckedAt.Format(time.RFC3339Nano),
	})
}

func toMatchView(c matching.Candidate) matchView {
	v := matchView{
		PickupAddress:     c.PickupAddress,
		DropoffAddress:    c.DropoffAddress,
		PickupLat:         c.Pickup.Lat,
		PickupLng:         c.Pickup.Lng,
		DropoffLat:        c.Dropoff.Lat,
		DropoffLng:        c.Dropoff.Lng,
		PickupDistanceKm:  c.PickupDetourKm,
		DropoffDistanceKm: c.DropoffDetourKm,
		Score:             c.Score,
	}
	if c.Role == matching.RoleDriver {
		seats, price := c.AvailableSeats, c.PricePerSeat
		v.DriverID, v.DriverUserID = string(c.ID), string(c.UserID)
		v.AvailableSeats, v.PricePerSeat = &seats, &price
		return v
	}
	v.PassengerID, v.PassengerUserID = string(c.ID), string(c.UserID)
	return v
}
