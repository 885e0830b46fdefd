package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Commerce  CommerceConfig
	Media     MediaConfig
	Ai        AIConfig
	Watermark WatermarkConfig
	Telegram  TelegramConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	StateStore         string // "memory" or "db"
	JWTSecret          string
	PersistTopic       string // in-process topic for persisted-entry events
}

type DatabaseConfig struct {
	Connection string
}

type CommerceConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
}

type MediaConfig struct {
	BaseURL  string
	Username string
	Password string
}

type AIConfig struct {
	Provider      string // "gemini" or "ollama"
	Model         string
	GeminiAPIKey  string
	OllamaBaseURL string
}

type WatermarkConfig struct {
	Enabled    bool
	OverlayURL string
	Placement  string
	Opacity    float64
	Scale      float64
}

type TelegramConfig struct {
	BotToken string // empty disables the chat channel
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			StateStore:         getEnv("STATE_STORE", "db"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			PersistTopic:       getEnv("CATALOG_PERSIST_TOPIC_NAME", "CATALOG_ENTRY_PERSISTED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Commerce: CommerceConfig{
			BaseURL:        getEnv("COMMERCE_BASE_URL", ""),
			ConsumerKey:    getEnv("COMMERCE_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("COMMERCE_CONSUMER_SECRET", ""),
		},
		Media: MediaConfig{
			BaseURL:  getEnv("MEDIA_BASE_URL", ""),
			Username: getEnv("MEDIA_USERNAME", ""),
			Password: getEnv("MEDIA_APP_PASSWORD", ""),
		},
		Ai: AIConfig{
			Provider:      getEnv("AI_PROVIDER", "gemini"),
			Model:         getEnv("AI_MODEL", ""),
			GeminiAPIKey:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Watermark: WatermarkConfig{
			Enabled:    getEnvAsBool("WATERMARK_ENABLED", false),
			OverlayURL: getEnv("WATERMARK_OVERLAY_URL", ""),
			Placement:  getEnv("WATERMARK_PLACEMENT", "bottom-right"),
			Opacity:    getEnvAsFloat("WATERMARK_OPACITY", 0.6),
			Scale:      getEnvAsFloat("WATERMARK_SCALE", 0.25),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
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
