package config

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultPort            = "3000"
	defaultDetectorURL     = "ws://localhost:8000/api/v1/eyelid/ws"
	defaultDetectorTimeout = 10
	defaultMaxUploadMB     = 50
	defaultRequestTimeout  = 30
)

type AppConfig struct {
	Port            string
	Env             string
	DetectorURL     string
	DetectorTimeout time.Duration
	RequestTimeout  time.Duration
	MaxUploadBytes  int64
}

// LoadAppConfig reads the service settings from the environment, falling
// back to defaults for unset or malformed values.
func LoadAppConfig() AppConfig {
	return AppConfig{
		Port:            getEnv("APP_PORT", defaultPort),
		Env:             os.Getenv("APP_ENV"),
		DetectorURL:     getEnv("EYE_DETECTOR_URL", defaultDetectorURL),
		DetectorTimeout: time.Duration(getEnvInt("EYE_DETECTOR_TIMEOUT_SECONDS", defaultDetectorTimeout)) * time.Second,
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeout)) * time.Second,
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", defaultMaxUploadMB)) * 1024 * 1024,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
