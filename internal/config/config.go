package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Ai         AIConfig
	Supervisor SupervisorConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	// Connection is the read-only DSN for the clinician-owned care plan
	// database. Empty means directive lookup falls back to the static source.
	Connection string
}

type AIConfig struct {
	PrimaryProvider    string // "ollama" or "huggingface"
	PrimaryModel       string
	SecondaryProvider  string // must differ in vendor from primary for real cross-validation
	SecondaryModel     string
	OllamaBaseURL      string
	HuggingFaceKey     string
	HuggingFaceBaseURL string
}

// SupervisorConfig carries the pipeline policy knobs. These are policy
// values, not code: deployments tune them without a rebuild.
type SupervisorConfig struct {
	ToolMinOverlap          int
	SessionStore            string // "memory" or "redis"
	SessionInactivityWindow time.Duration
	ProviderTimeout         time.Duration
	RetryBackoff            time.Duration
	ConcordanceSimilarity   float64
	RegistryPath            string
	AlertTopic              string
	MaxQueryLength          int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "supervisor.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("CAREPLAN_DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			PrimaryProvider:    getEnv("LLM_PRIMARY_PROVIDER", "ollama"),
			PrimaryModel:       getEnv("LLM_PRIMARY_MODEL", "llama3"),
			SecondaryProvider:  getEnv("LLM_SECONDARY_PROVIDER", "huggingface"),
			SecondaryModel:     getEnv("LLM_SECONDARY_MODEL", "meta-llama/Llama-3.1-8B-Instruct"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceKey:     getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", ""),
		},
		Supervisor: SupervisorConfig{
			ToolMinOverlap:          getEnvAsInt("TOOL_MIN_OVERLAP", 1),
			SessionStore:            getEnv("SESSION_STORE", "memory"),
			SessionInactivityWindow: getEnvAsDuration("SESSION_INACTIVITY_WINDOW", 30*time.Minute),
			ProviderTimeout:         getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
			RetryBackoff:            getEnvAsDuration("PROVIDER_RETRY_BACKOFF", 500*time.Millisecond),
			ConcordanceSimilarity:   getEnvAsFloat("CONCORDANCE_SIMILARITY_THRESHOLD", 0.3),
			RegistryPath:            getEnv("CAPABILITY_REGISTRY_PATH", ""),
			AlertTopic:              getEnv("CRITICAL_ALERT_TOPIC_NAME", "CRITICAL_ALERT"),
			MaxQueryLength:          getEnvAsInt("MAX_QUERY_LENGTH", 4000),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
