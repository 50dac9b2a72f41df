package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"props_edge_backend/models"
	"props_edge_backend/services/scan"
)

// EvaluateController serves single-prop evaluations.
type EvaluateController struct {
	scanner *scan.Scanner
}

// NewEvaluateController creates an evaluate controller.
func NewEvaluateController(scanner *scan.Scanner) *EvaluateController {
	return &EvaluateController{scanner: scanner}
}

type evaluateRequest struct {
	League   string `json:"league" binding:"required"`
	Prop     string `json:"prop" binding:"required"`
	Player   string `json:"player" binding:"required"`
	American *int   `json:"american"`
}

// Evaluate resolves a player and evaluates one prop. The warmed odds board
// supplies the price unless the request carries one.
// POST /api/v1/evaluate
func (ec *EvaluateController) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.KnownLeague(req.League) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown league"})
		return
	}

	player, res, err := ec.scanner.EvaluateOne(c.Request.Context(), req.League, models.PropCode(req.Prop), req.Player, req.American)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPlayerUnresolved):
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found in warmed pool"})
		case errors.Is(err, models.ErrDataUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not warmed for today"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id":   player.ID,
		"player_name": player.Name,
		"prop":        req.Prop,
		"result":      res,
	})
}
