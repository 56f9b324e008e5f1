package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	StateStore         string
	DatabaseURL        string
	RedisURL           string
	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	QueueBackend       string
	SQSQueueURL        string
	AMQPURL            string
	AMQPQueue          string
	NudgeCron          string
	NudgeConcurrency   int
	RetentionDays      int
	StalledDays        int
	RateLimitRPS       float64
	RateLimitBurst     int
	Env                string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	stateStore := normalizeStateStore(getEnv("STATE_STORE", "memory"))
	dbURL := os.Getenv("DATABASE_URL")

	if stateStore == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required when STATE_STORE=postgres")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		StateStore:         stateStore,
		DatabaseURL:        dbURL,
		RedisURL:           getEnv("REDIS_URL", ""),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		QueueBackend:       normalizeQueueBackend(getEnv("QUEUE_BACKEND", "inline")),
		SQSQueueURL:        getEnv("PLACEMENT_SQS_QUEUE_URL", ""),
		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPQueue:          getEnv("AMQP_QUEUE", "placement.job_saved"),
		NudgeCron:          getEnv("NUDGE_CRON", "@every 1h"),
		NudgeConcurrency:   getEnvInt("NUDGE_CONCURRENCY", 4),
		RetentionDays:      getEnvInt("NOTIFICATION_RETENTION_DAYS", 7),
		StalledDays:        getEnvInt("STALLED_DAYS", 14),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		Env:                env,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
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
	case "development", "dev":
		return "dev"
	default:
		return "dev"
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

func normalizeStateStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}

func normalizeQueueBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqs":
		return "sqs"
	case "amqp", "rabbitmq":
		return "amqp"
	default:
		return "inline"
	}
}
