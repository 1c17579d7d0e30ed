// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Chat providers supported by the relay.
const (
	ChatProviderGemini = "gemini"
	ChatProviderOpenAI = "openai"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string
	S3Bucket  string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// SES
	SESSenderEmail string
	DashboardURL   string

	// AI
	GeminiAPIKey    string
	OpenAIAPIKey    string
	ChatProvider    string
	ChatModel       string
	ChatRatePerSec  float64
	ChatBurst       int
	CacheTTLMinutes int

	// Application
	Port           string
	AllowedOrigins []string
	Stage          string
	LogLevel       string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion: getEnv("AWS_REGION", "ap-northeast-2"),
		S3Bucket:  getEnv("S3_BUCKET", "taxfree-reports-dev"),

		// Database
		DBHost:     getEnv("DB_HOST", getEnv("TAXFREE_DB_HOST", "localhost")),
		DBPort:     getEnvInt("DB_PORT", getEnvInt("TAXFREE_DB_PORT", 5432)),
		DBName:     getEnv("DB_NAME", getEnv("TAXFREE_DB_NAME", "taxfree")),
		DBUser:     getEnv("DB_USER", getEnv("TAXFREE_DB_USER", "postgres")),
		DBPassword: getEnv("DB_PASSWORD", getEnv("TAXFREE_DB_PASSWORD", "")),

		// SES
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		DashboardURL:   getEnv("DASHBOARD_URL", "http://localhost:3000/dashboard"),

		// AI
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		ChatProvider:    strings.ToLower(getEnv("CHAT_PROVIDER", ChatProviderGemini)),
		ChatModel:       getEnv("CHAT_MODEL", ""),
		ChatRatePerSec:  getEnvFloat("CHAT_RATE_PER_SEC", 2),
		ChatBurst:       getEnvInt("CHAT_BURST", 10),
		CacheTTLMinutes: getEnvInt("CACHE_TTL_MINUTES", 15),

		// Application
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		Stage:          getEnv("STAGE", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// ChatAPIKey returns the API key of the configured chat provider.
func (c *Config) ChatAPIKey() string {
	if c.ChatProvider == ChatProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as float64 or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
