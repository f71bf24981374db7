package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthHandler struct {
	pool        *pgxpool.Pool
	environment string
}

// NewHealthHandler takes a nil pool when the operation journal is disabled.
// The gateway itself is not probed: Netaxept has no side-effect-free ping.
func NewHealthHandler(pool *pgxpool.Pool, environment string) *HealthHandler {
	return &HealthHandler{pool: pool, environment: environment}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.pool == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "disabled",
			"gateway":  h.environment,
		})
		return
	}

	dbStatus := "connected"
	if err := h.pool.Ping(c.Request.Context()); err != nil {
		dbStatus = "disconnected"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": dbStatus,
			"gateway":  h.environment,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbStatus,
		"gateway":  h.environment,
	})
}
