package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"props_edge_backend/cache"
	"props_edge_backend/models"
)

// PlayerController serves the warmed player pool, per-player trends, and
// the schedule. It reads only the cache.
type PlayerController struct {
	store cache.Store
	loc   *time.Location
	log   *logrus.Logger
}

// NewPlayerController creates a player controller.
func NewPlayerController(store cache.Store, loc *time.Location, log *logrus.Logger) *PlayerController {
	return &PlayerController{store: store, loc: loc, log: log}
}

// SearchPlayers finds players in the warmed pool by name substring.
// GET /api/v1/players/:league/search?q=
func (pc *PlayerController) SearchPlayers(c *gin.Context) {
	league := c.Param("league")
	if !models.KnownLeague(league) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown league"})
		return
	}
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"data": []models.Player{}})
		return
	}

	date := cache.DateString(time.Now(), pc.loc)
	pool, err := cache.GetPlayers(c.Request.Context(), pc.store, league, date)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "player pool not warmed for today"})
		return
	}

	matches := models.SearchPlayers(pool.Players, q)
	if len(matches) > 10 {
		matches = matches[:10]
	}
	if matches == nil {
		matches = []models.Player{}
	}
	c.JSON(http.StatusOK, gin.H{"data": matches})
}

// GetPlayerTrends returns one player's cached trend window and season
// baseline.
// GET /api/v1/players/:league/:id/trends
func (pc *PlayerController) GetPlayerTrends(c *gin.Context) {
	league := c.Param("league")
	if !models.KnownLeague(league) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown league"})
		return
	}
	playerID := c.Param("id")
	ctx := c.Request.Context()
	date := cache.DateString(time.Now(), pc.loc)

	lastN, err := cache.GetLastN(ctx, pc.store, league, date, playerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached trends for player"})
		return
	}

	resp := gin.H{
		"player_id": playerID,
		"n":         lastN.Trends.N,
		"series":    lastN.Trends.Series,
	}
	if season, err := cache.GetSeasonAgg(ctx, pc.store, league, date, playerID); err == nil {
		resp["season"] = season.Aggregate
	}
	c.JSON(http.StatusOK, resp)
}

// GetSchedule returns today's cached schedule for a league.
// GET /api/v1/schedule/:league
func (pc *PlayerController) GetSchedule(c *gin.Context) {
	league := c.Param("league")
	if !models.KnownLeague(league) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown league"})
		return
	}

	date := cache.DateString(time.Now(), pc.loc)
	sched, err := cache.GetSchedule(c.Request.Context(), pc.store, league, date)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "schedule not warmed for today"})
		return
	}
	if sched.Games == nil {
		sched.Games = []models.Game{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "games": sched.Games})
}
