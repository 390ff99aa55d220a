// README: Base handler utilities (JSON helpers, request point parsing).
package handlers

import (
	"github.com/gin-gonic/gin"

	"wheels/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

const (
	msgInvalidJSON    = "invalid json"
	msgMissingFields  = "missing required fields"
	msgInvalidPoint   = "invalid coordinates"
	msgUserTypeNeeded = "user_type is required"
)

// pointReq is a {lat, lng} body field. Both coordinates are pointers so an
// absent value can be told apart from 0.
type pointReq struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (p *pointReq) point() (types.Point, bool) {
	if p == nil {
		return types.Point{}, false
	}
	return types.ParsePoint(p.Lat, p.Lng)
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}
