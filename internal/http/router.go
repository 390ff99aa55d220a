// README: HTTP router registration for the matchmaking and optimisation services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wheels/internal/http/handlers"
	"wheels/internal/http/middleware"
)

func newEngine(log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS())
	r.GET("/health", handlers.Health)
	return r
}

func NewMatchmakingRouter(matcher handlers.Matcher, log *zap.Logger) http.Handler {
	r := newEngine(log)

	h := handlers.NewMatchmakingHandler(matcher)
	api := r.Group("/api/matchmaking")
	api.POST("", h.Match)
	api.GET("/status", h.Status)

	return r
}

func NewOptimizationRouter(routes handlers.RouteOptimizer, log *zap.Logger) http.Handler {
	r := newEngine(log)

	h := handlers.NewRouteHandler(routes)
	api := r.Group("/api/optimize-route")
	api.POST("", h.Optimize)
	api.POST("/calculate-detour", h.CalculateDetour)
	api.GET("/status", h.Status)

	return r
}
