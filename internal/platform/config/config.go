package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs at construction time. There is
// no global state: main builds one Config and passes it down.
type Config struct {
	Addr          string
	PublicBaseURL string

	DatabaseURL string

	Redis RedisConfig
	S3    S3Config
	Kafka KafkaConfig

	// DemoPaymentToken, when set, seeds a demo client with an active payment
	// link bearing this token during startup. Replaces the hardcoded token
	// the legacy backend kept as a process global.
	DemoPaymentToken string
}

// RedisConfig configures the optional Redis connection used for public
// endpoint rate limiting.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// S3Config configures the object store for uploaded documents. Endpoint is
// settable so MinIO works in dev and tests.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// KafkaConfig configures the optional audit event sink.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:          envOr("ZORVIXE_ADDR", ":8080"),
		PublicBaseURL: envOr("ZORVIXE_PUBLIC_BASE_URL", "http://localhost:3000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    envOr("S3_REGION", "us-east-1"),
			Bucket:    envOr("S3_BUCKET", "zorvixe-documents"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "zorvixe.audit"),
		},
		DemoPaymentToken: os.Getenv("ZORVIXE_DEMO_PAYMENT_TOKEN"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
