package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"props_edge_backend/scheduler"
)

// WarmController exposes scheduler state to operators.
type WarmController struct {
	scheduler *scheduler.Scheduler
}

// NewWarmController creates a warm-status controller.
func NewWarmController(s *scheduler.Scheduler) *WarmController {
	return &WarmController{scheduler: s}
}

// GetStatus returns the leader flag and per-job outcomes.
// GET /api/v1/warm/status
func (wc *WarmController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, wc.scheduler.Status())
}
