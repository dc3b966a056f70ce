package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	CORSAllowOrigin    []string
	DBDriver           string
	DatabaseURL        string
	MongoDatabase      string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	LLMProvider        string
	LLMModel           string
	LLMAPIKey          string
	LLMTimeout         time.Duration
	JWTSecret          string
	JWTTTL             time.Duration
	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
}

var envFiles = []string{".env", "cmd/.env"}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Missing .env files are normal outside local development.
	for _, file := range envFiles {
		_ = godotenv.Load(file)
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", "openai"))

	return Config{
		Port:               getEnv("PORT", "8080"),
		Env:                normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DBDriver:           normalizeDriver(getEnv("DB_DRIVER", DriverPostgres)),
		DatabaseURL:        firstEnv("DATABASE_URL", "DB_URL"),
		MongoDatabase:      getEnv("MONGO_DATABASE", "job_selector_db"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
		LLMProvider:        provider,
		LLMModel:           getEnv("LLM_MODEL", defaultModel(provider)),
		LLMAPIKey:          llmAPIKey(provider),
		LLMTimeout:         getDuration("LLM_TIMEOUT", 120*time.Second),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getDuration("JWT_TTL", 24*time.Hour),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
	}
}

// Validate reports every missing required setting at once so startup fails fast.
func (c Config) Validate() error {
	var errs []error
	if c.DBDriver != DriverMemory && strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", c.DBDriver))
	}
	if strings.TrimSpace(c.GoogleClientID) == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required"))
	}
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		errs = append(errs, errors.New("LLM_API_KEY is required"))
	}
	if c.Env == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("S3_BUCKET is required for OBJECT_STORE=s3"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}

func llmAPIKey(provider string) string {
	if provider == "gemini" {
		return firstEnv("LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
	return firstEnv("LLM_API_KEY", "OPENAI_API_KEY", "API_KEY")
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.5-flash"
	}
	return "gpt-4o-mini"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mongo", "mongodb":
		return DriverMongo
	case "memory", "mem":
		return DriverMemory
	default:
		return DriverPostgres
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	default:
		return "openai"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
