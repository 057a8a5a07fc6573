package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

var defaultRecipients = []string{"akhilshreedharan@gmail.com", "niethinrueshil@gmail.com"}

// Config holds all application configuration values
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DatabaseURL string

	StorageBackend       string
	StorageDir           string
	StoragePublicBaseURL string
	StorageBucket        string
	S3Region             string
	S3Endpoint           string
	WebDAVURL            string
	WebDAVUser           string
	WebDAVPassword       string
	MaxUploadBytes       int64

	ResendAPIKey           string
	NotificationFrom       string
	NotificationRecipients []string

	GoogleSheetsCredentials string
	GoogleSheetsID          string

	RedisURL string

	TurnstileSecretKey string
	TestToken          string

	AllowedHosts         []string
	MaxRequestsPerMinute float64
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getGinMode(),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", "sqlite://data/site.db"),

		StorageBackend:       getEnv("STORAGE_BACKEND", "file"),
		StorageDir:           getEnv("STORAGE_DIR", "uploads"),
		StoragePublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		StorageBucket:        getEnv("STORAGE_BUCKET", "course-documents"),
		S3Region:             getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:           os.Getenv("S3_ENDPOINT"),
		WebDAVURL:            os.Getenv("WEBDAV_URL"),
		WebDAVUser:           os.Getenv("WEBDAV_USER"),
		WebDAVPassword:       os.Getenv("WEBDAV_PASSWORD"),
		MaxUploadBytes:       getEnvInt64("MAX_UPLOAD_BYTES", 12<<20),

		ResendAPIKey:           os.Getenv("RESEND_API_KEY"),
		NotificationFrom:       getEnv("NOTIFICATION_FROM", "Aadhvikha Ventures <notifications@resend.dev>"),
		NotificationRecipients: getEnvList("NOTIFICATION_RECIPIENTS", defaultRecipients),

		GoogleSheetsCredentials: os.Getenv("GOOGLE_SHEETS_CREDENTIALS"),
		GoogleSheetsID:          os.Getenv("GOOGLE_SHEETS_ID"),

		RedisURL: os.Getenv("REDIS_URL"),

		TurnstileSecretKey: os.Getenv("TURNSTILE_SECRET_KEY"),
		TestToken:          os.Getenv("TEST_TOKEN"),

		AllowedHosts:         getEnvList("ALLOWED_HOSTS", nil),
		MaxRequestsPerMinute: getEnvFloat("MAX_REQUESTS_PER_MINUTE", 60),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getGinMode falls back to debug for unset or unknown GIN_MODE values, which
// gin.SetMode would panic on.
func getGinMode() string {
	switch mode := os.Getenv("GIN_MODE"); mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.DebugMode
	}
}

func getEnvList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	items := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(items)
}

func getEnvInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
