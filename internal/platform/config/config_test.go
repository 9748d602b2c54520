package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.PublicBaseURL)
	assert.Equal(t, "zorvixe-documents", cfg.S3.Bucket)
	assert.Equal(t, "zorvixe.audit", cfg.Kafka.Topic)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ZORVIXE_ADDR", ":9999")
	t.Setenv("ZORVIXE_PUBLIC_BASE_URL", "https://zorvixe.example")
	t.Setenv("REDIS_POOL_SIZE", "33")
	t.Setenv("REDIS_MIN_IDLE_CONNS", "not-a-number")
	t.Setenv("ZORVIXE_DEMO_PAYMENT_TOKEN", "demo-token")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "https://zorvixe.example", cfg.PublicBaseURL)
	assert.Equal(t, 33, cfg.Redis.PoolSize)
	assert.Equal(t, 2, cfg.Redis.MinIdleConns, "bad int falls back to default")
	assert.Equal(t, "demo-token", cfg.DemoPaymentToken)
}
