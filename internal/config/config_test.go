package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "STORAGE", "AUTO_MIGRATE", "NOTIFIER_WORKERS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "postgres", cfg.Storage)
	assert.False(t, cfg.InMemory())
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 4, cfg.NotifierWorkers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("NOTIFIER_WORKERS", "-1")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.InMemory())
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 4, cfg.NotifierWorkers)
}
