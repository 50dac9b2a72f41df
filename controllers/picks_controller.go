package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"props_edge_backend/models"
	"props_edge_backend/services/scan"
)

// PicksController serves the ranked top-picks view.
type PicksController struct {
	scanner *scan.Scanner
}

// NewPicksController creates a picks controller.
func NewPicksController(scanner *scan.Scanner) *PicksController {
	return &PicksController{scanner: scanner}
}

// GetTopPicks returns the ranked positive-edge candidates for a league.
// GET /api/v1/picks/:league?limit=&min_edge=&min_trend=&events=
func (pc *PicksController) GetTopPicks(c *gin.Context) {
	league := c.Param("league")
	if !models.KnownLeague(league) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown league"})
		return
	}

	filters := scan.Filters{
		Limit:    clampInt(queryInt(c, "limit", 12), 1, 24),
		MinEdge:  queryFloat(c, "min_edge", 0.02),
		MinTrend: queryFloat(c, "min_trend", 0.55),
		Events:   clampInt(queryInt(c, "events", 8), 1, 50),
	}

	picks, err := pc.scanner.Scan(c.Request.Context(), league, filters)
	if err != nil {
		if errors.Is(err, models.ErrDataUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not warmed for today"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if picks == nil {
		picks = []models.Pick{}
	}

	c.JSON(http.StatusOK, gin.H{
		"league": league,
		"count":  len(picks),
		"data":   picks,
	})
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func queryFloat(c *gin.Context, key string, defaultValue float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
