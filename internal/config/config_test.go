package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
app:
  name: support-bot
server:
  address: ":9090"
storage:
  driver: postgres
  postgres:
    host: db
    database: shop
    user: bot
    password: secret
data:
  csv_dir: /data
redis:
  enabled: true
  ttl: 30s
elasticsearch:
  addresses: ["http://es1:9200", "http://es2:9200"]
kafka:
  enabled: true
  brokers: ["k1:9092"]
logging:
  level: debug
  format: console
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "support-bot", cfg.App.Name)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "host=db port=5432 user=bot password=secret dbname=shop sslmode=disable", cfg.Storage.Postgres.GetDSN())
	assert.Equal(t, "/data", cfg.Data.CSVDir)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, "chatbot-products", cfg.Elasticsearch.Index)
	assert.Equal(t, []string{"k1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "fulfillment-events", cfg.Kafka.Topic)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "app:\n  environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 25, cfg.Storage.Postgres.MaxConnections)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("CHATBOT_STORAGE_DRIVER", "postgres")
	t.Setenv("CHATBOT_STORAGE_POSTGRES_URL", "postgres://bot@db/shop")
	t.Setenv("CHATBOT_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("CHATBOT_REDIS_ENABLED", "true")

	cfg, err := LoadFromFile(writeConfig(t, "logging:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://bot@db/shop", cfg.Storage.Postgres.GetDSN())
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "storage:\n  driver: mongo\n"},
		{"postgres without connection", "storage:\n  driver: postgres\n"},
		{"bad log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = LoadFromFile("")
	assert.Error(t, err)
}

func TestSplitCommaList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitCommaList([]string{"a, b", "", "c"}))
	assert.Nil(t, splitCommaList(nil))
}
