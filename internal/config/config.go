package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Realtime  RealtimeConfig
	Translate TranslateConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CallLogFilePath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

// RealtimeConfig drives the peer-connection core: where ephemeral credentials
// are minted, where the SDP offer is exchanged, and how patient we are.
type RealtimeConfig struct {
	APIBaseURL     string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	MaxAttempts    int
}

type TranslateConfig struct {
	Endpoint        string
	APIKey          string
	DefaultLanguage string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CallLogFilePath:    getEnv("CALL_LOG_FILE_PATH", "logs/call.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Realtime: RealtimeConfig{
			APIBaseURL:     getEnv("REALTIME_API_BASE_URL", "https://api.openai.com/v1/realtime"),
			APIKey:         getEnv("REALTIME_API_KEY", ""),
			Model:          getEnv("REALTIME_MODEL", "gpt-4o-realtime-preview"),
			RequestTimeout: getEnvAsDuration("REALTIME_REQUEST_TIMEOUT", 15*time.Second),
			MaxAttempts:    getEnvAsInt("REALTIME_MAX_ATTEMPTS", 3),
		},
		Translate: TranslateConfig{
			Endpoint:        getEnv("TRANSLATOR_ENDPOINT", ""),
			APIKey:          getEnv("TRANSLATOR_API_KEY", ""),
			DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
