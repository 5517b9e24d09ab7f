package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "super-secret-key-change-me"

type Config struct {
	// Server
	Port string
	Env  string

	// Redis (booking sessions)
	RedisURL   string
	SessionTTL time.Duration

	// Database (reservation attempt ledger)
	DatabaseURL string

	// JWT (guest identity)
	JWTSecret    string
	JWTAccessTTL time.Duration

	// CORS
	AllowedOrigins []string

	// Rate limiting (per client IP)
	RateLimitPerMinute int
	RateLimitBurst     int

	// Resort API (reservations + room type prices)
	ResortAPIBaseURL        string
	ResortAPITimeoutSeconds int

	// Email API
	EmailAPIBase                   string
	EmailBCCList                   []string
	EmailDev                       string
	DevMode                        bool
	ReservationSuccessTemplateID   string
	ReservationFailTemplateID      string
	ReservationNotificationTimeout time.Duration
	SupportContactURL              string

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Redis
		RedisURL:   getEnv("REDIS_URL", ""),
		SessionTTL: parseDuration(getEnv("SESSION_TTL", "2h"), 2*time.Hour),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// JWT
		JWTSecret:    getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTAccessTTL: parseDuration(getEnv("JWT_ACCESS_TTL", "24h"), 24*time.Hour),

		// CORS
		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:8080")),

		// Rate limiting
		RateLimitPerMinute: parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "120"), 120),
		RateLimitBurst:     parseInt(getEnv("RATE_LIMIT_BURST", "20"), 20),

		// Resort API
		ResortAPIBaseURL:        getEnv("RESORT_API_BASE_URL", "http://localhost:9000/api"),
		ResortAPITimeoutSeconds: parseInt(getEnv("RESORT_API_TIMEOUT_SECONDS", "15"), 15),

		// Email
		EmailAPIBase:                   getEnv("EMAIL_API_BASE", "https://express-502501.netlify.com/.netlify/functions/server"),
		EmailBCCList:                   parseStringSlice(getEnv("EMAIL_BCC_LIST", "")),
		EmailDev:                       getEnv("EMAIL_DEV", ""),
		DevMode:                        parseBool(getEnv("DEV_MODE", "false"), false),
		ReservationSuccessTemplateID:   getEnv("RESERVATION_SUCCESS_TEMPLATE_ID", "d-111111111111111111"),
		ReservationFailTemplateID:      getEnv("RESERVATION_FAIL_TEMPLATE_ID", "d-22222222222222"),
		ReservationNotificationTimeout: parseDuration(getEnv("EMAIL_API_TIMEOUT", "10s"), 10*time.Second),
		SupportContactURL:              getEnv("SUPPORT_CONTACT_URL", "/contact"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

// ReservationEmailsBCC returns the operator distribution list. In dev mode the
// list is replaced by the single developer address.
func (c *Config) ReservationEmailsBCC() []string {
	if c.DevMode {
		if c.EmailDev == "" {
			return []string{}
		}
		return []string{c.EmailDev}
	}
	return c.EmailBCCList
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseBool(s string, defaultValue bool) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
