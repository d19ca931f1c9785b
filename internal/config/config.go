package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	StaticFilesPath string
	MigrationsPath  string
	AppBaseURL      string
	Debug           bool

	// Database
	DatabaseType string // sqlite, postgres or mysql
	DatabasePath string // sqlite only
	DatabaseURL  string // postgres / mysql DSN

	// Optional Redis for session snapshots; SQL is used when empty
	RedisURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Dictionary
	CEDICTPath string

	// Email (SES); reports are not mailed when SESFromEmail is empty
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Defaults for learners without saved settings
	DefaultCharSet  string
	DefaultNumWords int
}

// Load reads an optional .env file, then configuration from environment
// variables with sensible defaults
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		AppBaseURL:      strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		Debug:           getEnvAsBool("DEBUG", false),

		DatabaseType: getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./hanzidrill.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvAsDuration("TOKEN_TTL", 7*24*time.Hour),

		CEDICTPath: getEnv("CEDICT_PATH", "./data/cedict_ts.u8"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Hanzi Drill"),

		DefaultCharSet:  getEnv("DEFAULT_CHARSET", "simp"),
		DefaultNumWords: getEnvAsInt("DEFAULT_NUM_WORDS", 10),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not a boolean, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not a duration, using %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}
