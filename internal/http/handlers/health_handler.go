package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "healthy"})
}
