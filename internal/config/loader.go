package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. CHATBOT_STORAGE_DRIVER
const EnvPrefix = "CHATBOT"

// Load reads configs/config.yaml (when present), a .env file and
// CHATBOT_* environment overrides.
func Load() (*Config, error) {
	return load("")
}

// LoadFromFile is Load with an explicit config file path.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	return load(path)
}

func load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	splitLists(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so every
// overridable key is registered up front.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"app.name", "app.environment",
		"server.address", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
		"storage.driver",
		"storage.postgres.url", "storage.postgres.host", "storage.postgres.port",
		"storage.postgres.database", "storage.postgres.user", "storage.postgres.password",
		"storage.postgres.sslmode", "storage.postgres.max_connections", "storage.postgres.max_idle",
		"storage.postgres.conn_max_lifetime",
		"data.csv_dir", "data.load_on_startup",
		"redis.enabled", "redis.address", "redis.password", "redis.db", "redis.ttl",
		"elasticsearch.enabled", "elasticsearch.addresses", "elasticsearch.username",
		"elasticsearch.password", "elasticsearch.index",
		"kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.group_id",
		"logging.level", "logging.format",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Comma-separated env values arrive as a single element.
func splitLists(cfg *Config) {
	cfg.Elasticsearch.Addresses = splitCommaList(cfg.Elasticsearch.Addresses)
	cfg.Kafka.Brokers = splitCommaList(cfg.Kafka.Brokers)
}

func splitCommaList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ec-chatbot"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverMemory
	}
	pg := &cfg.Storage.Postgres
	if pg.Port == 0 {
		pg.Port = 5432
	}
	if pg.SSLMode == "" {
		pg.SSLMode = "disable"
	}
	if pg.MaxConnections == 0 {
		pg.MaxConnections = 25
	}
	if pg.MaxIdle == 0 {
		pg.MaxIdle = 5
	}
	if pg.ConnMaxLifetime == 0 {
		pg.ConnMaxLifetime = 5 * time.Minute
	}

	if cfg.Data.CSVDir == "" {
		cfg.Data.CSVDir = "./data"
	}

	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 5 * time.Minute
	}

	if len(cfg.Elasticsearch.Addresses) == 0 {
		cfg.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "chatbot-products"
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "fulfillment-events"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "chatbot-projector"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		pg := cfg.Storage.Postgres
		if pg.URL == "" && (pg.Host == "" || pg.Database == "" || pg.User == "") {
			return errors.New("storage.postgres.url or host, database and user are required")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.TTL < 0 {
		return errors.New("redis.ttl must not be negative")
	}

	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}
	return nil
}
