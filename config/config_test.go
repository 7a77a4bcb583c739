package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_CONFIG_STR", "value")
	assert.Equal(t, "value", getEnv("TEST_CONFIG_STR", "default"))
	assert.Equal(t, "default", getEnv("TEST_CONFIG_MISSING", "default"))
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{name: "valid", value: "42", expected: 42},
		{name: "empty", value: "", expected: 7},
		{name: "garbage", value: "forty", expected: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_CONFIG_INT", tt.value)
			assert.Equal(t, tt.expected, getEnvAsInt("TEST_CONFIG_INT", 7))
		})
	}
}

func TestGetEnvAsDurationAndBool(t *testing.T) {
	t.Setenv("TEST_CONFIG_DUR", "250ms")
	t.Setenv("TEST_CONFIG_BOOL", "true")
	assert.Equal(t, 250*time.Millisecond, getEnvAsDuration("TEST_CONFIG_DUR", time.Second))
	assert.True(t, getEnvAsBool("TEST_CONFIG_BOOL", false))

	t.Setenv("TEST_CONFIG_DUR", "soon")
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_CONFIG_DUR", time.Second))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ACTIVITY_LOG_CAPACITY", "")
	t.Setenv("HEARTBEAT_INTERVAL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CLICKHOUSE_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, 1000, cfg.ActivityLogCapacity)
	assert.Equal(t, 3*time.Second, cfg.HeartbeatInterval)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.ClickHouse.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("FE_ORIGIN", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "")
	t.Setenv("ACTIVITY_LOG_CAPACITY", "0")
	_, err = Load()
	assert.Error(t, err)
}
