package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Signing   SigningConfig
	Upstream  UpstreamConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Addr string
}

type SigningConfig struct {
	// Secret is the shared HMAC secret, provisioned out-of-band and
	// used identically by the browser signing console.
	Secret string
}

type UpstreamConfig struct {
	Endpoint string
	Token    string
	// NavigationTimeout bounds how long the renderer waits for the
	// target page to reach network idle.
	NavigationTimeout time.Duration
}

type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// Load reads configuration from the environment, loading a .env file
// first when one is present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	secret := os.Getenv("SIGNING_SECRET")
	if secret == "" {
		return nil, errors.New("SIGNING_SECRET must be set")
	}

	upstreamEndpoint := os.Getenv("UPSTREAM_ENDPOINT")
	if upstreamEndpoint == "" {
		return nil, errors.New("UPSTREAM_ENDPOINT must be set")
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, errors.New("RATE_LIMIT_RPS must be a number")
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, errors.New("RATE_LIMIT_BURST must be an integer")
	}

	return &Config{
		Server: ServerConfig{
			Addr: getEnv("LISTEN_ADDR", ":8080"),
		},
		Signing: SigningConfig{
			Secret: secret,
		},
		Upstream: UpstreamConfig{
			Endpoint:          upstreamEndpoint,
			Token:             os.Getenv("UPSTREAM_TOKEN"),
			NavigationTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("S3_SECRET_KEY", "minioadmin"),
			Bucket:          getEnv("S3_BUCKET", "screenshots"),
			UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnv("RATE_LIMIT_ENABLED", "true") == "true",
			RequestsPerSecond: rps,
			Burst:             burst,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
