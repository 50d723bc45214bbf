package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Database configuration
	Database struct {
		// Driver is "sqlite" (local file, default) or "postgres".
		Driver   string
		Path     string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		SeedFile string
	}

	// LLM vendor configuration. Exactly one vendor is active per process.
	LLM struct {
		Vendor  string
		Timeout time.Duration

		GigaChatAuthKey  string
		GigaChatScope    string
		GigaChatOAuthURL string
		GigaChatAPIURL   string
		GigaChatModel    string

		OpenRouterAPIKey  string
		OpenRouterModel   string
		OpenRouterBaseURL string
		OpenRouterSiteURL string
		OpenRouterAppName string

		GroqAPIKey  string
		GroqModel   string
		GroqBaseURL string
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Cache settings for character lookups
	Cache struct {
		Enabled     bool
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
		RedisURL    string
	}

	// OpenAPI schema path; empty disables request validation
	OpenAPISchema string
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables.
// Uses singleton pattern to ensure only one instance exists.
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		instance.Server.Port = getEnvString("PORT", "8080")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		instance.Database.Driver = getEnvString("DB_DRIVER", "sqlite")
		instance.Database.Path = getEnvString("DB_PATH", "dialog.db")
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "character_dialog")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.SeedFile = getEnvString("CHARACTERS_SEED", "")

		instance.LLM.Vendor = getEnvString("LLM_VENDOR", "gigachat")
		instance.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", 90*time.Second)
		instance.LLM.GigaChatAuthKey = getEnvString("GIGACHAT_AUTH_KEY", "")
		instance.LLM.GigaChatScope = getEnvString("GIGACHAT_SCOPE", "GIGACHAT_API_PERS")
		instance.LLM.GigaChatOAuthURL = getEnvString("GIGACHAT_OAUTH_URL", "")
		instance.LLM.GigaChatAPIURL = getEnvString("GIGACHAT_API_URL", "")
		instance.LLM.GigaChatModel = getEnvString("GIGACHAT_MODEL", "GigaChat")
		instance.LLM.OpenRouterAPIKey = getEnvString("OPENROUTER_API_KEY", "")
		instance.LLM.OpenRouterModel = getEnvString("OPENROUTER_MODEL", "openrouter/auto")
		instance.LLM.OpenRouterBaseURL = getEnvString("OPENROUTER_BASE_URL", "")
		instance.LLM.OpenRouterSiteURL = getEnvString("OPENROUTER_SITE_URL", "")
		instance.LLM.OpenRouterAppName = getEnvString("OPENROUTER_APP_NAME", "")
		instance.LLM.GroqAPIKey = getEnvString("GROQ_API_KEY", "")
		instance.LLM.GroqModel = getEnvString("GROQ_MODEL", "llama-3.3-70b-versatile")
		instance.LLM.GroqBaseURL = getEnvString("GROQ_BASE_URL", "")

		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)

		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		instance.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 5*time.Minute)
		instance.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 1000)
		instance.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)
		instance.Cache.RedisURL = getEnvString("REDIS_URL", "")

		instance.OpenAPISchema = getEnvString("OPENAPI_SCHEMA", "api/openapi.yaml")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
