package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engineKeys = []string{
	"DB_HOST", "DB_PORT", "REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_TOPIC_ALERTS",
	"THRESHOLDS_PATH", "THRESHOLD_PROFILE", "ENGINE_WORKERS", "ENGINE_MEDICAL_MODE",
	"HTTP_ADDR", "REPORT_TTL", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range engineKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "vitalcheck.alerts", cfg.Kafka.TopicAlerts)
	assert.Equal(t, "configs/thresholds.toml", cfg.Engine.ThresholdsPath)
	assert.Equal(t, "", cfg.Engine.ThresholdProfile)
	assert.Equal(t, 0, cfg.Engine.Workers)
	assert.False(t, cfg.Engine.MedicalMode)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Report.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("THRESHOLDS_PATH", "/etc/vitalcheck/icu.yaml")
	t.Setenv("ENGINE_WORKERS", "12")
	t.Setenv("ENGINE_MEDICAL_MODE", "true")
	t.Setenv("REPORT_TTL", "90m")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "/etc/vitalcheck/icu.yaml", cfg.Engine.ThresholdsPath)
	assert.Equal(t, 12, cfg.Engine.Workers)
	assert.True(t, cfg.Engine.MedicalMode)
	assert.Equal(t, 90*time.Minute, cfg.Report.TTL)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("ENGINE_MEDICAL_MODE", "sometimes")
	t.Setenv("REPORT_TTL", "tomorrow")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.Engine.MedicalMode)
	assert.Equal(t, 24*time.Hour, cfg.Report.TTL)
}

func TestLoad_NegativeWorkers(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENGINE_WORKERS", "-2")

	_, err := Load()
	assert.Error(t, err)
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", d.ConnectionString())
}
