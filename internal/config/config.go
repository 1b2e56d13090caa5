package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds relay configuration loaded from the environment.
type Config struct {
	AppName               string
	LogLevel              string
	Host                  string
	Port                  string
	AppBundleID           string
	DefaultAttributesType string
	CredentialsPath       string
	ProjectID             string
	FCMEndpoint           string
	ProviderTimeout       time.Duration
	ImageMaxDimension     int
	RabbitURL             string
	IntentQueue           string
	DeadLetterQueue       string
	PrefetchCount         int
	WorkerCount           int
}

// Load loads configuration and performs basic validation.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:               getEnv("APP_NAME", "live-activity-relay"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		Host:                  getEnv("HOST", "0.0.0.0"),
		Port:                  getEnv("PORT", "3000"),
		AppBundleID:           getEnv("APP_BUNDLE_ID", ""),
		DefaultAttributesType: getEnv("ATTRIBUTES_TYPE", "GenericAttributes"),
		CredentialsPath:       getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		ProjectID:             getEnv("GOOGLE_CLOUD_PROJECT", ""),
		FCMEndpoint:           getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com"),
		ProviderTimeout:       getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
		ImageMaxDimension:     getEnvAsInt("IMAGE_MAX_DIMENSION", 256),
		RabbitURL:             getEnv("RABBITMQ_URL", ""),
		IntentQueue:           getEnv("INTENT_QUEUE", "live-activity.intents"),
		DeadLetterQueue:       getEnv("INTENT_DLQ", "live-activity.failed"),
		PrefetchCount:         getEnvAsInt("PREFETCH_COUNT", 50),
		WorkerCount:           getEnvAsInt("WORKER_COUNT", 5),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) validate() error {
	var missing []string
	if c.AppBundleID == "" {
		missing = append(missing, "APP_BUNDLE_ID")
	}
	if c.CredentialsPath == "" {
		missing = append(missing, "GOOGLE_APPLICATION_CREDENTIALS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func getEnvAsInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid int for %s, using default %d: %v", key, def, err)
			return def
		}
		return i
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("invalid duration for %s, using default %s: %v", key, def, err)
			return def
		}
		return d
	}
	return def
}
