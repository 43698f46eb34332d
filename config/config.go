package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken string
	AdminID  int64

	DataDir string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	HTTPAddr       string
	JWTSecret      string
	AdminAPISecret string

	PartSizeLimit int64

	YTDLPPath    string
	AudioBitrate int
	FetchTimeout time.Duration
	FetchRate    float64
	FetchBurst   int

	MinioHost     string
	MinioPort     string
	MinioUsername string
	MinioPassword string
	ArchiveBucket string

	RabbitMQURL string
}

var AppConfig Config

// DefaultPartSizeLimit is the per-file limit of the delivery channel.
const DefaultPartSizeLimit = 48 * 1024 * 1024

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// InitConfig loads configuration from the environment.
// Missing bot credentials are a fatal startup error.
func InitConfig() {
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN is not set")
	}
	adminRaw := strings.TrimSpace(os.Getenv("ADMIN_ID"))
	if adminRaw == "" {
		log.Fatal("ADMIN_ID is not set")
	}
	adminID, err := strconv.ParseInt(adminRaw, 10, 64)
	if err != nil {
		log.Fatalf("ADMIN_ID must be numeric, got: %s", adminRaw)
	}

	AppConfig = Config{
		BotToken: botToken,
		AdminID:  adminID,

		DataDir: getEnv("DATA_DIR", "."),

		DBHost: getEnv("DB_HOST", ""),
		DBPort: getEnv("DB_PORT", "3306"),
		DBUser: getEnv("DB_USER", "root"),
		DBPass: getEnv("DB_PASS", "root"),
		DBName: getEnv("DB_NAME", "tunerelay"),

		HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
		JWTSecret:      getEnv("JWT_SECRET", "l=ax+b"),
		AdminAPISecret: getEnv("ADMIN_API_SECRET", ""),

		PartSizeLimit: getEnvInt64("PART_SIZE_LIMIT", DefaultPartSizeLimit),

		YTDLPPath:    getEnv("YTDLP_PATH", "yt-dlp"),
		AudioBitrate: getEnvInt("AUDIO_BITRATE", 128),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Minute),
		FetchRate:    getEnvFloat("FETCH_RATE", 0),
		FetchBurst:   getEnvInt("FETCH_BURST", 1),

		MinioHost:     getEnv("MINIO_HOST", ""),
		MinioPort:     getEnv("MINIO_PORT", "9000"),
		MinioUsername: getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword: getEnv("MINIO_PASSWORD", "minioadmin"),
		ArchiveBucket: getEnv("ARCHIVE_BUCKET", "tunerelay-artifacts"),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
	}
}
