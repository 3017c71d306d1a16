package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	DatabaseURL       string
	SynthAPIKey       string
	SynthModel        string
	SynthBaseURL      string
	RewriteAPIKey     string
	RewriteBaseURL    string
	ModerationAPIKey  string
	ModerationBaseURL string
	VoiceID           string
	StoragePath       string
	FFmpegPath        string
	AutoDownload      bool
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SynthAPIKey:       os.Getenv("SYNTH_API_KEY"),
		SynthModel:        getEnv("SYNTH_MODEL", "veo-2"),
		SynthBaseURL:      getEnv("SYNTH_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		RewriteAPIKey:     os.Getenv("REWRITE_API_KEY"),
		RewriteBaseURL:    getEnv("REWRITE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ModerationAPIKey:  os.Getenv("MODERATION_API_KEY"),
		ModerationBaseURL: getEnv("MODERATION_BASE_URL", "https://moderation.googleapis.com/v1"),
		VoiceID:           getEnv("VOICE_ID", "narrator-01"),
		StoragePath:       getEnv("STORAGE_PATH", "./storage"),
		FFmpegPath:        getEnv("FFMPEG_PATH", "ffmpeg"),
		AutoDownload:      getEnvBool("AUTO_DOWNLOAD", false),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
