package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ReferenceTimezone is the single canonical timezone every job and reader
// interprets "today" in. Phoenix has no DST, so trigger times never shift.
const ReferenceTimezone = "America/Phoenix"

type Config struct {
	Port        string
	Environment string

	// Cache backend. Empty RedisAddr selects the in-process store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Warm scheduler. RunScheduler is the leader flag: exactly one running
	// instance should enable it; everyone else serves reads only.
	RunScheduler     bool
	Season           string
	DeepWarmAt       string
	LightRefreshAt   []string
	WarmShards       int
	UpstreamTimeout  time.Duration
	DailyCallBudget  int
	OddsMaxEvents    int
	OddsPerEventCap  int

	// Upstream endpoints.
	MLBStatsBaseURL string
	OddsBaseURL     string
	OddsAPIKey      string
	OddsMaxAbs      int
	NFLCSVPath      string

	// Evaluation thresholds.
	StraightEdgeMin  float64
	StraightTrendMin float64
	ParlayEdgeMin    float64
	TrendMinGames    int

	// Optional post-warm digest.
	TelegramBotToken string
	TelegramChatID   string
}

// LoadConfig loads environment variables (with a .env file if present) into
// a Config. Returned values are the only configuration source; nothing else
// reads the environment after startup.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RunScheduler:    getEnvBool("RUN_SCHEDULER", false),
		Season:          getEnv("SEASON", strconv.Itoa(time.Now().Year())),
		DeepWarmAt:      getEnv("DEEP_WARM_AT", "05:00"),
		LightRefreshAt:  getEnvList("LIGHT_REFRESH_AT", "05:10,12:10,17:10"),
		WarmShards:      getEnvInt("WARM_SHARDS", 4),
		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_S", 8)) * time.Second,
		DailyCallBudget: getEnvInt("DAILY_CALL_BUDGET", 90),
		OddsMaxEvents:   getEnvInt("ODDS_MAX_EVENTS", 8),
		OddsPerEventCap: getEnvInt("ODDS_PER_EVENT_CAP", 20),

		MLBStatsBaseURL: getEnv("MLB_STATS_BASE", "https://statsapi.mlb.com/api/v1"),
		OddsBaseURL:     getEnv("ODDS_BASE", "https://api.the-odds-api.com/v4/sports"),
		OddsAPIKey:      getEnv("ODDS_API_KEY", ""),
		OddsMaxAbs:      getEnvInt("ODDS_MAX_ABS", 250),
		NFLCSVPath:      getEnv("NFL_CSV_PATH", "data/nfl_weekly.csv"),

		StraightEdgeMin:  getEnvFloat("STRAIGHT_EDGE_MIN", 0.08),
		StraightTrendMin: getEnvFloat("STRAIGHT_TREND_MIN", 0.60),
		ParlayEdgeMin:    getEnvFloat("PARLAY_EDGE_MIN", 0),
		TrendMinGames:    getEnvInt("TREND_MIN_GAMES", 5),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
	}

	log.Printf("Config loaded: env=%s scheduler=%v redis=%s odds_key=%s",
		cfg.Environment, cfg.RunScheduler, maskAddr(cfg.RedisAddr), maskSecret(cfg.OddsAPIKey))

	return cfg, nil
}

// Location returns the canonical reference timezone. Phoenix ships with
// every IANA database; a failed lookup means a broken environment, so fall
// back to UTC rather than crash read-only instances.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(ReferenceTimezone)
	if err != nil {
		log.Printf("Warning: could not load %s, falling back to UTC: %v", ReferenceTimezone, err)
		return time.UTC
	}
	return loc
}

// maskAddr masks a host address for logging.
func maskAddr(addr string) string {
	if addr == "" {
		return "(memory)"
	}
	if len(addr) <= 6 {
		return "***"
	}
	return addr[:3] + "***" + addr[len(addr)-4:]
}

// maskSecret masks an API key for logging.
func maskSecret(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:2] + "***"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.EqualFold(value, "true") || value == "1"
}

func getEnvList(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
