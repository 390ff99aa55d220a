// README: Route optimisation handlers (optimize, detour, capabilities).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"wheels/internal/maps"
	"wheels/internal/modules/route"
	"wheels/internal/types"
)

type RouteOptimizer interface {
	Optimize(ctx context.Context, cmd route.OptimizeCommand) route.Result
	CalculateDetour(current, dest, pickup types.Point) route.Detour
	Capabilities() route.Capabilities
}

type RouteHandler struct {
	routes RouteOptimizer
}

func NewRouteHandler(r RouteOptimizer) *RouteHandler {
	return &RouteHandler{routes: r}
}

type passengerReq struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PickupAddress string   `json:"pickup_address"`
	PickupLat     *float64 `json:"pickup_lat"`
	PickupLng     *float64 `json:"pickup_lng"`
}

type optimizeReq struct {
	StartPoint    *pointReq      `json:"start_point"`
	Destination   *pointReq      `json:"destination"`
	Passengers    []passengerReq `json:"passengers"`
	UseGoogleMaps bool           `json:"use_google_maps"`
}

type stopView struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name,omitempty"`
	PickupAddress        string  `json:"pickup_address"`
	PickupLat            float64 `json:"pickup_lat"`
	PickupLng            float64 `json:"pickup_lng"`
	DistanceFromPrevious float64 `json:"distance_from_previous"`
	PickupOrder          int     `json:"pickup_order"`
}

type optimizeResp struct {
	Success            bool             `json:"success"`
	OptimizedRoute     []stopView       `json:"optimized_route"`
	TotalDistanceKm    float64          `json:"total_distance_km"`
	EstimatedMinutes   int              `json:"estimated_time_minutes"`
	NumberOfPassengers int              `json:"number_of_passengers"`
	OptimizationMethod string           `json:"optimization_method"`
	GoogleMapsData     *maps.Directions `json:"google_maps_data,omitempty"`
	Message            string           `json:"message,omitempty"`
}

type detourReq struct {
	OriginalRoute *pointReq `json:"original_route"`
	Destination   *pointReq `json:"destination"`
	NewPassenger  *struct {
		PickupLat *float64 `json:"pickup_lat"`
		PickupLng *float64 `json:"pickup_lng"`
	} `json:"new_passenger"`
}

type detourResp struct {
	Success          bool    `json:"success"`
	OriginalKm       float64 `json:"original_distance_km"`
	NewKm            float64 `json:"new_distance_km"`
	DetourKm         float64 `json:"detour_km"`
	DetourPercentage float64 `json:"detour_percentage"`
}

type capabilitiesResp struct {
	Status            string   `json:"status"`
	Service           string   `json:"service"`
	GoogleMapsEnabled bool     `json:"google_maps_enabled"`
	Algorithms        []string `json:"algorithms"`
}

func (h *RouteHandler) Optimize(c *gin.Context) {
	var req optimizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if req.StartPoint == nil || req.Destination == nil || req.Passengers == nil {
		writeError(c, http.StatusBadRequest, msgMissingFields)
		return
	}
	start, okS := req.StartPoint.point()
	dest, okD := req.Destination.point()
	if !okS || !okD {
		writeError(c, http.StatusBadRequest, msgInvalidPoint)
		return
	}

	pickups := make([]route.PickupRequest, 0, len(req.Passengers))
	for _, p := range req.Passengers {
		pt, ok := types.ParsePoint(p.PickupLat, p.PickupLng)
		if !ok {
			writeError(c, http.StatusBadRequest, "invalid passenger coordinates")
			return
		}
		pickups = append(pickups, route.PickupRequest{ID: p.ID, Name: p.Name, PickupAddress: p.PickupAddress, Pickup: pt})
	}

	res := h.routes.Optimize(c.Request.Context(), route.OptimizeCommand{
		Start:         start,
		Destination:   dest,
		Pickups:       pickups,
		UseDirections: req.UseGoogleMaps,
	})

	resp := optimizeResp{
		Success:            true,
		OptimizedRoute:     make([]stopView, 0, len(res.Stops)),
		TotalDistanceKm:    res.TotalDistanceKm,
		EstimatedMinutes:   res.EstimatedMinutes,
		NumberOfPassengers: len(res.Stops),
		OptimizationMethod: res.Method,
		GoogleMapsData:     res.Directions,
	}
	for _, s := range res.Stops {
		resp.OptimizedRoute = append(resp.OptimizedRoute, stopView{
			ID:                   s.ID,
			Name:                 s.Name,
			PickupAddress:        s.PickupAddress,
			PickupLat:            s.Pickup.Lat,
			PickupLng:            s.Pickup.Lng,
			DistanceFromPrevious: s.DistanceFromPreviousKm,
			PickupOrder:          s.Order,
		})
	}
	if len(pickups) == 0 {
		resp.Message = "no passengers to optimize"
	}
	writeJSON(c, http.StatusOK, resp)
}

func (h *RouteHandler) CalculateDetour(c *gin.Context) {
	var req detourReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if req.OriginalRoute == nil || req.Destination == nil || req.NewPassenger == nil {
		writeError(c, http.StatusBadRequest, msgMissingFields)
		return
	}
	current, okC := req.OriginalRoute.point()
	dest, okD := req.Destination.point()
	pickup, okP := types.ParsePoint(req.NewPassenger.PickupLat, req.NewPassenger.PickupLng)
	if !okC || !okD || !okP {
		writeError(c, http.StatusBadRequest, msgInvalidPoint)
		return
	}

	d := h.routes.CalculateDetour(current, dest, pickup)
	writeJSON(c, http.StatusOK, detourResp{
		Success:          true,
		OriginalKm:       d.OriginalKm,
		NewKm:            d.NewKm,
		DetourKm:         d.DetourKm,
		DetourPercentage: d.DetourPercent,
	})
}

func (h *RouteHandler) Status(c *gin.Context) {
	caps := h.routes.Capabilities()
	writeJSON(c, http.StatusOK, capabilitiesResp{
		Status:            "online",
		Service:           caps.Service,
		GoogleMapsEnabled: caps.GoogleMapsEnabled,
		Algorithms:        caps.Algorithms,
	})
}
