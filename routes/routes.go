package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"props_edge_backend/cache"
	"props_edge_backend/controllers"
	"props_edge_backend/middleware"
	"props_edge_backend/scheduler"
	"props_edge_backend/services/scan"
)

// Deps carries the handles the route handlers need. Everything here is
// read-only over the cache; no handler can reach an upstream gateway.
type Deps struct {
	Store     cache.Store
	Scanner   *scan.Scanner
	Scheduler *scheduler.Scheduler
	Location  *time.Location
	Log       *logrus.Logger
}

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, deps *Deps) {
	picksController := controllers.NewPicksController(deps.Scanner)
	playerController := controllers.NewPlayerController(deps.Store, deps.Location, deps.Log)
	evaluateController := controllers.NewEvaluateController(deps.Scanner)
	warmController := controllers.NewWarmController(deps.Scheduler)

	limiter := middleware.NewRateLimiter(120, time.Minute)

	// API v1 group
	api := router.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		picks := api.Group("/picks")
		{
			picks.GET("/:league", picksController.GetTopPicks)
		}

		players := api.Group("/players")
		{
			players.GET("/:league/search", playerController.SearchPlayers)
			players.GET("/:league/:id/trends", playerController.GetPlayerTrends)
		}

		api.GET("/schedule/:league", playerController.GetSchedule)
		api.POST("/evaluate", evaluateController.Evaluate)
		api.GET("/warm/status", warmController.GetStatus)
	}
}
