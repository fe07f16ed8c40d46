package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/logger"

	"github.com/joho/godotenv"
)

// PrimaryAgencyID is the default referrer assigned to accounts registered
// without one.
const PrimaryAgencyID = "SQB_AGENCY_01"

// VerifiedAgencies is the fixed allow-list of privileged identities. Emails
// are matched case-insensitively at registration to assign role and id.
var VerifiedAgencies = []domain.Agency{
	{ID: PrimaryAgencyID, Name: "SQBoom HQ", Email: "admin@sqboom.io", Role: domain.RoleAdmin},
	{ID: "SQB_SUPPORT_01", Name: "SQBoom Support", Email: "support@sqboom.io", Role: domain.RoleSupport, Phone: "+251911000100"},
	{ID: "SQB_RECEIVER_01", Name: "SQBoom Treasury", Email: "treasury@sqboom.io", Role: domain.RoleReceiver},
}

type Config struct {
	AppPort   string
	JWTSecret string

	// Storage backend: "file", "redis" or "postgres".
	StorageBackend string
	DataDir        string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DatabaseURL    string

	// Engine tuning
	DailyTapLimit   int
	AdBonusCoins    float64
	AdBonusCooldown time.Duration
	TapDebounce     time.Duration

	// Cosmetic simulations
	RateDriftInterval time.Duration
	AutoReplyDelay    time.Duration

	// Admin copywriter
	GeminiAPIKey string
}

// Load reads configuration from env. Only JWT_SECRET is hard-required.
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		switch {
		case os.Getenv("REDIS_ADDR") != "":
			backend = "redis"
		case os.Getenv("DATABASE_URL") != "":
			backend = "postgres"
		default:
			backend = "file"
		}
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	dailyTapLimit := 5000
	if v := os.Getenv("DAILY_TAP_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dailyTapLimit = n
		}
	}

	adBonusCoins := 50.0
	if v := os.Getenv("AD_BONUS_COINS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			adBonusCoins = f
		}
	}

	adBonusCooldown := time.Hour
	if v := os.Getenv("AD_BONUS_COOLDOWN_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			adBonusCooldown = time.Duration(n) * time.Minute
		}
	}

	tapDebounce := 100 * time.Millisecond
	if v := os.Getenv("TAP_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			tapDebounce = time.Duration(n) * time.Millisecond
		}
	}

	driftInterval := 5 * time.Second
	if v := os.Getenv("RATE_DRIFT_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			driftInterval = time.Duration(n) * time.Second
		}
	}

	return &Config{
		AppPort:           port,
		JWTSecret:         jwtSecret,
		StorageBackend:    backend,
		DataDir:           dataDir,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DailyTapLimit:     dailyTapLimit,
		AdBonusCoins:      adBonusCoins,
		AdBonusCooldown:   adBonusCooldown,
		TapDebounce:       tapDebounce,
		RateDriftInterval: driftInterval,
		AutoReplyDelay:    1500 * time.Millisecond,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
	}
}
