package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"lodging/src/types"
)

// const dsn = "host=localhost user=postgres password=password dbname=lodgingdb port=5432 sslmode=disable TimeZone=UTC"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := getEnv("DATABASE_TIMEZONE", "UTC")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// DATE_FORMAT is the wire format of check-in and check-out dates.
const DATE_FORMAT = "2006-01-02"

const (
	DEFAULT_CHECKIN_WINDOW    = 24 * time.Hour
	DEFAULT_PENALTY_THRESHOLD = 24 * time.Hour
	DEFAULT_PENALTY_RATE      = 0.5
	DEFAULT_BOOKING_LOCK_TTL  = 10 * time.Second
	DEFAULT_BOOKING_LOCK_WAIT = 3 * time.Second
	DEFAULT_KAFKA_TOPIC       = "reservation-events"
)

type Config struct {
	Env  types.Environment
	Port string

	JWTSecret string
	QRCSecret string
	AppHost   string

	RedisHost   string
	KafkaBroker string
	KafkaTopic  string
	SNSTopicARN string

	CheckinWindow    time.Duration
	PenaltyThreshold time.Duration
	PenaltyRate      float64
	BookingLockTTL   time.Duration
	BookingLockWait  time.Duration

	LogLevel        string
	LogDir          string
	TempDir         string
	MaintenanceMode bool
}

// Load reads the service configuration from the environment. Malformed
// numeric values fall back to their defaults and are logged. PENALTY_RATE
// must lie in (0, 1].
func Load() Config {
	return Config{
		Env:              types.Environment(getEnv("API_ENV", string(types.Local))),
		Port:             getEnv("API_PORT", "9090"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		QRCSecret:        os.Getenv("API_QRC_SECRET"),
		AppHost:          os.Getenv("APP_HOST"),
		RedisHost:        os.Getenv("REDIS_HOST"),
		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", DEFAULT_KAFKA_TOPIC),
		SNSTopicARN:      os.Getenv("SNS_TOPIC_ARN"),
		CheckinWindow:    getDuration("CHECKIN_WINDOW", DEFAULT_CHECKIN_WINDOW),
		PenaltyThreshold: getDuration("PENALTY_THRESHOLD", DEFAULT_PENALTY_THRESHOLD),
		PenaltyRate:      getFloat("PENALTY_RATE", DEFAULT_PENALTY_RATE),
		BookingLockTTL:   getDuration("BOOKING_LOCK_TTL", DEFAULT_BOOKING_LOCK_TTL),
		BookingLockWait:  getDuration("BOOKING_LOCK_WAIT", DEFAULT_BOOKING_LOCK_WAIT),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogDir:           getEnv("LOG_DIR", "logs"),
		TempDir:          getEnv("TEMP_DIR", os.TempDir()),
		MaintenanceMode:  getBool("MAINTENANCE_MODE"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[Config] invalid %s=%q, using %s\n", key, v, fallback)
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || f > 1 {
		log.Printf("[Config] invalid %s=%q, using %v\n", key, v, fallback)
		return fallback
	}
	return f
}

func getBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
