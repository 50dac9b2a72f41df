package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"props_edge_backend/cache"
	"props_edge_backend/models"
	"props_edge_backend/services/eval"
	"props_edge_backend/services/scan"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) (*gin.Engine, cache.Store) {
	t.Helper()
	store := cache.NewMemoryStore()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	scanner := scan.New(store, eval.DefaultThresholds(), time.UTC, log)

	router := gin.New()
	picks := NewPicksController(scanner)
	players := NewPlayerController(store, time.UTC, log)
	evaluate := NewEvaluateController(scanner)

	router.GET("/picks/:league", picks.GetTopPicks)
	router.GET("/players/:league/search", players.SearchPlayers)
	router.GET("/players/:league/:id/trends", players.GetPlayerTrends)
	router.GET("/schedule/:league", players.GetSchedule)
	router.POST("/evaluate", evaluate.Evaluate)
	return router, store
}

func warmFixtures(t *testing.T, store cache.Store) {
	t.Helper()
	ctx := context.Background()
	date := cache.DateString(time.Now(), time.UTC)

	require.NoError(t, cache.PutPlayers(ctx, store, models.LeagueMLB, date, cache.PlayersSnapshot{
		Players: []models.Player{{ID: "608070", Name: "José Ramírez", Team: "CLE"}},
	}))
	require.NoError(t, cache.PutSchedule(ctx, store, models.LeagueMLB, date, cache.ScheduleSnapshot{
		Games: []models.Game{{GameID: "745001", Away: "CLE", Home: "DET"}},
	}))
	require.NoError(t, cache.PutOddsBoard(ctx, store, models.LeagueMLB, date, cache.OddsBoardSnapshot{
		Candidates: []models.OddsCandidate{
			{PlayerName: "Jose Ramirez", Prop: models.PropHits05, Line: 0.5, American: -150, Event: 0},
		},
	}))
	require.NoError(t, cache.PutLastN(ctx, store, models.LeagueMLB, date, "608070", cache.LastNSnapshot{
		Trends: models.LastNTrends{
			N: 10,
			Series: map[models.PropCode][]bool{
				models.PropHits05: {true, true, false, true, true, false, true, true, false, true},
			},
		},
	}))
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestGetTopPicksUnknownLeague(t *testing.T) {
	router, _ := testRouter(t)
	w, _ := doJSON(t, router, http.MethodGet, "/picks/nhl", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTopPicksUnwarmedCache(t *testing.T) {
	router, _ := testRouter(t)
	w, body := doJSON(t, router, http.MethodGet, "/picks/mlb", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, body["error"], "not warmed")
}

func TestGetTopPicksReturnsRankedPicks(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, body := doJSON(t, router, http.MethodGet, "/picks/mlb", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])

	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	pick := data[0].(map[string]interface{})
	assert.Equal(t, "608070", pick["player_id"])
	assert.Equal(t, "Straight", pick["tag"])
	assert.InDelta(t, 0.10, pick["edge"].(float64), 1e-9)
}

func TestGetTopPicksFiltersApply(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, body := doJSON(t, router, http.MethodGet, "/picks/mlb?min_edge=0.5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["count"])
}

func TestSearchPlayersNormalizedMatch(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, body := doJSON(t, router, http.MethodGet, "/players/mlb/search?q=ramirez", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "José Ramírez", data[0].(map[string]interface{})["name"])
}

func TestSearchPlayersEmptyQuery(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, body := doJSON(t, router, http.MethodGet, "/players/mlb/search", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])
}

func TestGetPlayerTrends(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, body := doJSON(t, router, http.MethodGet, "/players/mlb/608070/trends", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(10), body["n"])
}

func TestGetPlayerTrendsUnknownPlayer(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, _ := doJSON(t, router, http.MethodGet, "/players/mlb/999/trends", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSchedule(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, body := doJSON(t, router, http.MethodGet, "/schedule/mlb", "")
	require.Equal(t, http.StatusOK, w.Code)
	games := body["games"].([]interface{})
	require.Len(t, games, 1)
	assert.Equal(t, "745001", games[0].(map[string]interface{})["game_id"])
}

func TestEvaluateResolvesNormalizedName(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, body := doJSON(t, router, http.MethodPost, "/evaluate",
		`{"league": "mlb", "prop": "HITS_0_5", "player": "jose ramirez"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "608070", body["player_id"])

	result := body["result"].(map[string]interface{})
	assert.Equal(t, "Straight", result["tag"])
	assert.InDelta(t, 0.70, result["p_trend"].(float64), 1e-9)
}

func TestEvaluateExplicitPrice(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, body := doJSON(t, router, http.MethodPost, "/evaluate",
		`{"league": "mlb", "prop": "HITS_0_5", "player": "608070", "american": -250}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := body["result"].(map[string]interface{})
	// 0.70 trend against a -250 break-even of ~0.714 is a negative edge.
	assert.Equal(t, "Fade", result["tag"])
}

func TestEvaluateUnknownPlayer404(t *testing.T) {
	router, store := testRouter(t)
	warmFixtures(t, store)

	w, _ := doJSON(t, router, http.MethodPost, "/evaluate",
		`{"league": "mlb", "prop": "HITS_0_5", "player": "Mike Trout"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluateMissingFields400(t *testing.T) {
	router, _ := testRouter(t)
	w, _ := doJSON(t, router, http.MethodPost, "/evaluate", `{"league": "mlb"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateUnwarmedPool503(t *testing.T) {
	router, _ := testRouter(t)
	w, _ := doJSON(t, router, http.MethodPost, "/evaluate",
		`{"league": "mlb", "prop": "HITS_0_5", "player": "anyone"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestClampHelpers(t *testing.T) {
	assert.Equal(t, 1, clampInt(0, 1, 24))
	assert.Equal(t, 24, clampInt(100, 1, 24))
	assert.Equal(t, 12, clampInt(12, 1, 24))
}
