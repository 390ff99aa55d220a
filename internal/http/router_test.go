package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheels/internal/config"
	wheelshttp "wheels/internal/http"
	"wheels/internal/maps"
	"wheels/internal/modules/distance"
	"wheels/internal/modules/matching"
	"wheels/internal/modules/route"
	"wheels/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePool struct {
	users map[matching.Role][]matching.TripRequest
	err   error
}

func (f *fakePool) Searching(_ context.Context, role matching.Role) ([]matching.TripRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[role], nil
}

type fakeDirections struct {
	result *maps.Directions
	err    error
}

func (f *fakeDirections) Directions(context.Context, []types.Point) (*maps.Directions, error) {
	return f.result, f.err
}

func ptr[T any](v T) *T { return &v }

func searching(id string, role matching.Role, lat, lng float64, seats *int) matching.TripRequest {
	return matching.TripRequest{
		ID:             types.ID(id),
		UserID:         types.ID("u-" + id),
		Role:           role,
		PickupAddress:  id + " pickup",
		DropoffAddress: id + " dropoff",
		PickupLat:      ptr(lat),
		PickupLng:      ptr(lng),
		DropoffLat:     ptr(lat + 0.01),
		DropoffLng:     ptr(lng),
		AvailableSeats: seats,
		PricePerSeat:   ptr(1500.0),
	}
}

func matchmakingRouter(pool *fakePool) http.Handler {
	est := distance.NewEstimator(nil, 0, nil)
	svc := matching.NewService(pool, est, config.MatchingConfig{MaxDetourKm: 3}, nil)
	return wheelshttp.NewMatchmakingRouter(svc, nil)
}

func optimizationRouter(dirs route.DirectionsOracle) http.Handler {
	est := distance.NewEstimator(nil, 0, nil)
	svc := route.NewService(est, dirs, config.RouteConfig{AvgSpeedKmh: 40}, 0, nil)
	return wheelshttp.NewOptimizationRouter(svc, nil)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

const passengerBody = `{"user_type":"passenger","pickup_lat":-33.4489,"pickup_lng":-70.6693,"dropoff_lat":-33.4389,"dropoff_lng":-70.6693}`

func TestHealth(t *testing.T) {
	for _, h := range []http.Handler{matchmakingRouter(&fakePool{}), optimizationRouter(nil)} {
		w := do(h, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	}
}

func TestMatchmaking_Validation(t *testing.T) {
	h := matchmakingRouter(&fakePool{})

	cases := []struct {
		name, body, want string
	}{
		{"missing user_type", `{"pickup_lat":1}`, `{"error":"user_type is required"}`},
		{"unknown user_type", `{"user_type":"admin"}`, `{"error":"invalid user_type"}`},
		{"malformed json", `{"user_type":`, `{"error":"invalid json"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/matchmaking", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tc.want, w.Body.String())
		})
	}
}

func TestMatchmaking_PassengerSeesDrivers(t *testing.T) {
	pool := &fakePool{users: map[matching.Role][]matching.TripRequest{
		matching.RoleDriver: {
			searching("full", matching.RoleDriver, -33.4489, -70.6693, ptr(0)),
			searching("d1", matching.RoleDriver, -33.4490, -70.6694, ptr(3)),
			searching("far", matching.RoleDriver, -33.0, -71.0, ptr(3)),
		},
	}}
	w := do(matchmakingRouter(pool), http.MethodPost, "/api/matchmaking", passengerBody)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["count"])

	matches := body["matches"].([]any)
	require.Len(t, matches, 1)
	m := matches[0].(map[string]any)
	assert.Equal(t, "d1", m["driver_id"])
	assert.Equal(t, "u-d1", m["driver_user_id"])
	assert.EqualValues(t, 3, m["available_seats"])
	assert.EqualValues(t, 1500, m["price_per_seat"])
	assert.NotContains(t, m, "passenger_id")
	assert.Contains(t, m, "pickup_distance_km")
	assert.Contains(t, m, "dropoff_distance_km")
	assert.Greater(t, m["compatibility_score"].(float64), 99.0)
}

func TestMatchmaking_DriverSeesPassengers(t *testing.T) {
	pool := &fakePool{users: map[matching.Role][]matching.TripRequest{
		matching.RolePassenger: {searching("p1", matching.RolePassenger, -33.4490, -70.6694, nil)},
	}}
	body := `{"user_type":"driver","pickup_lat":-33.4489,"pickup_lng":-70.6693,"dropoff_lat":-33.4389,"dropoff_lng":-70.6693,"available_seats":2}`
	w := do(matchmakingRouter(pool), http.MethodPost, "/api/matchmaking", body)
	require.Equal(t, http.StatusOK, w.Code)

	m := decode(t, w)["matches"].([]any)[0].(map[string]any)
	assert.Equal(t, "p1", m["passenger_id"])
	assert.Equal(t, "u-p1", m["passenger_user_id"])
	assert.NotContains(t, m, "available_seats")
	assert.NotContains(t, m, "driver_id")
}

func TestMatchmaking_PoolFailureIsEmpty(t *testing.T) {
	w := do(matchmakingRouter(&fakePool{err: errors.New("connection refused")}), http.MethodPost, "/api/matchmaking", passengerBody)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"matches":[],"count":0}`, w.Body.String())
}

func TestMatchmaking_Idempotent(t *testing.T) {
	pool := &fakePool{users: map[matching.Role][]matching.TripRequest{
		matching.RoleDriver: {
			searching("a", matching.RoleDriver, -33.4495, -70.6690, ptr(1)),
			searching("b", matching.RoleDriver, -33.4480, -70.6700, ptr(2)),
			searching("c", matching.RoleDriver, -33.4520, -70.6650, ptr(4)),
		},
	}}
	h := matchmakingRouter(pool)
	first := do(h, http.MethodPost, "/api/matchmaking", passengerBody)
	second := do(h, http.MethodPost, "/api/matchmaking", passengerBody)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestMatchmaking_Status(t *testing.T) {
	pool := &fakePool{users: map[matching.Role][]matching.TripRequest{
		matching.RoleDriver:    {searching("d1", matching.RoleDriver, 0, 0, ptr(1)), searching("d2", matching.RoleDriver, 0, 0, ptr(1))},
		matching.RolePassenger: {searching("p1", matching.RolePassenger, 0, 0, nil)},
	}}
	w := do(matchmakingRouter(pool), http.MethodGet, "/api/matchmaking/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "online", body["status"])
	assert.EqualValues(t, 2, body["active_drivers"])
	assert.EqualValues(t, 1, body["active_passengers"])
	assert.NotEmpty(t, body["timestamp"])
}

const optimizeBody = `{
	"start_point": {"lat": 0, "lng": 0},
	"destination": {"lat": 0, "lng": 5},
	"passengers": [
		{"id": "far", "name": "Ana", "pickup_address": "Av. 3", "pickup_lat": 0, "pickup_lng": 3},
		{"id": "near", "pickup_address": "Av. 1", "pickup_lat": 0, "pickup_lng": 1}
	],
	"use_google_maps": true
}`

func TestOptimize_Validation(t *testing.T) {
	h := optimizationRouter(nil)

	cases := []struct {
		name, body string
	}{
		{"no passengers field", `{"start_point":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1}}`},
		{"no destination", `{"start_point":{"lat":0,"lng":0},"passengers":[]}`},
		{"no start", `{"destination":{"lat":0,"lng":0},"passengers":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/optimize-route", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"missing required fields"}`, w.Body.String())
		})
	}

	w := do(h, http.MethodPost, "/api/optimize-route", `{"start_point":{"lat":95,"lng":0},"destination":{"lat":0,"lng":1},"passengers":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodPost, "/api/optimize-route", `{"start_point":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1},"passengers":[{"id":"x"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodPost, "/api/optimize-route", `not json`)
	assert.JSONEq(t, `{"error":"invalid json"}`, w.Body.String())
}

func TestOptimize_NearestNeighborOrder(t *testing.T) {
	w := do(optimizationRouter(nil), http.MethodPost, "/api/optimize-route", optimizeBody)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["number_of_passengers"])
	assert.Equal(t, route.MethodNearestNeighbor, body["optimization_method"])
	assert.NotContains(t, body, "google_maps_data")
	assert.NotContains(t, body, "message")

	stops := body["optimized_route"].([]any)
	require.Len(t, stops, 2)
	first, second := stops[0].(map[string]any), stops[1].(map[string]any)
	assert.Equal(t, "near", first["id"])
	assert.EqualValues(t, 1, first["pickup_order"])
	assert.Equal(t, "Av. 1", first["pickup_address"])
	assert.Equal(t, "far", second["id"])
	assert.Equal(t, "Ana", second["name"])
	assert.EqualValues(t, 2, second["pickup_order"])
	assert.EqualValues(t, 3, second["pickup_lng"])

	leg := distance.Haversine(types.Point{}, types.Point{Lng: 1})
	assert.Equal(t, distance.Round2(leg), first["distance_from_previous"])
	assert.Equal(t, distance.Round2(5*leg), body["total_distance_km"])
}

func TestOptimize_AttachesGoogleDirections(t *testing.T) {
	dirs := &fakeDirections{result: &maps.Directions{DistanceMeters: 556000, DistanceKm: 556, DurationSeconds: 21600, DurationMinutes: 360, Polyline: "_p~iF"}}
	w := do(optimizationRouter(dirs), http.MethodPost, "/api/optimize-route", optimizeBody)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, route.MethodWithDirections, body["optimization_method"])
	data := body["google_maps_data"].(map[string]any)
	assert.Equal(t, "_p~iF", data["polyline"])
	assert.EqualValues(t, 556, data["distance_km"])
	assert.Equal(t, "near", body["optimized_route"].([]any)[0].(map[string]any)["id"])
}

func TestOptimize_DirectionsFailureKeepsResult(t *testing.T) {
	w := do(optimizationRouter(&fakeDirections{err: errors.New("OVER_QUERY_LIMIT")}), http.MethodPost, "/api/optimize-route", optimizeBody)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, route.MethodNearestNeighbor, body["optimization_method"])
	assert.NotContains(t, body, "google_maps_data")
}

func TestOptimize_NoPassengers(t *testing.T) {
	w := do(optimizationRouter(nil), http.MethodPost, "/api/optimize-route",
		`{"start_point":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1},"passengers":[]}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	total := distance.Round2(distance.Haversine(types.Point{}, types.Point{Lng: 1}))
	assert.Equal(t, []any{}, body["optimized_route"])
	assert.Equal(t, total, body["total_distance_km"])
	assert.EqualValues(t, int(total/40*60), body["estimated_time_minutes"])
	assert.EqualValues(t, 0, body["number_of_passengers"])
	assert.Equal(t, "no passengers to optimize", body["message"])
}

func TestOptimize_Idempotent(t *testing.T) {
	h := optimizationRouter(nil)
	first := do(h, http.MethodPost, "/api/optimize-route", optimizeBody)
	second := do(h, http.MethodPost, "/api/optimize-route", optimizeBody)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestCalculateDetour(t *testing.T) {
	h := optimizationRouter(nil)

	w := do(h, http.MethodPost, "/api/optimize-route/calculate-detour",
		`{"original_route":{"lat":0,"lng":0},"destination":{"lat":0,"lng":2},"new_passenger":{"pickup_lat":0,"pickup_lng":2}}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 0, body["detour_km"])
	assert.EqualValues(t, 0, body["detour_percentage"])
	assert.Equal(t, body["original_distance_km"], body["new_distance_km"])

	w = do(h, http.MethodPost, "/api/optimize-route/calculate-detour", `{"original_route":{"lat":0,"lng":0}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodPost, "/api/optimize-route/calculate-detour",
		`{"original_route":{"lat":0,"lng":0},"destination":{"lat":0,"lng":2},"new_passenger":{"pickup_lat":0}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizationStatus(t *testing.T) {
	w := do(optimizationRouter(&fakeDirections{}), http.MethodGet, "/api/optimize-route/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"online","service":"pickup_optimization","google_maps_enabled":true,"algorithms":["nearest_neighbor"]}`, w.Body.String())

	w = do(optimizationRouter(nil), http.MethodGet, "/api/optimize-route/status", "")
	assert.Equal(t, false, decode(t, w)["google_maps_enabled"])
}
