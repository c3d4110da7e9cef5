package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	DB      DBConfig      `yaml:"db"`
	Storage StorageConfig `yaml:"storage"`
	MinIO   MinIOConfig   `yaml:"minio"`
	S3      S3Config      `yaml:"s3"`
	JWT     JWTConfig     `yaml:"jwt"`
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Log     LogConfig     `yaml:"log"`
}

type DBConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

type JWTConfig struct {
	Secret          string `yaml:"secret"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	BodyLimitMB int      `yaml:"body_limit_mb"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Enabled reports whether an access cache should be wired.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and the environment (including a .env file), in that order of
// increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DB: DBConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "filestore",
			Password: "filestore_secret",
			Name:     "filestore",
			SSLMode:  "disable",
			Path:     "filestore.db",
		},
		Storage: StorageConfig{Driver: "minio"},
		MinIO: MinIOConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "filestore",
			SecretKey: "filestore_secret",
			Bucket:    "filestore",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		JWT: JWTConfig{
			Secret:          "change-me-in-production",
			ExpirationHours: 24,
		},
		Server: ServerConfig{
			Port:        "8080",
			BodyLimitMB: 100,
			CORSOrigins: []string{"http://localhost:3001"},
		},
		Redis: RedisConfig{TTL: 5 * time.Minute},
		Kafka: KafkaConfig{Topic: "filestore.events"},
		Log:   LogConfig{Level: "info"},
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.DB.Driver = getEnv("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", cfg.DB.SSLMode)
	cfg.DB.Path = getEnv("DB_PATH", cfg.DB.Path)

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.UseSSL = getEnvAsBool("MINIO_USE_SSL", cfg.MinIO.UseSSL)

	cfg.S3.Bucket = getEnv("AWS_S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.Region = getEnv("AWS_REGION", cfg.S3.Region)
	cfg.S3.AccessKey = getEnv("AWS_ACCESS_KEY_ID", cfg.S3.AccessKey)
	cfg.S3.SecretKey = getEnv("AWS_SECRET_ACCESS_KEY", cfg.S3.SecretKey)
	cfg.S3.Endpoint = getEnv("AWS_S3_ENDPOINT", cfg.S3.Endpoint)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.ExpirationHours = getEnvAsInt("JWT_EXPIRATION_HOURS", cfg.JWT.ExpirationHours)

	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.BodyLimitMB = getEnvAsInt("SERVER_BODY_LIMIT_MB", cfg.Server.BodyLimitMB)
	cfg.Server.CORSOrigins = getEnvAsList("CORS_ORIGINS", cfg.Server.CORSOrigins)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = getEnvAsDuration("REDIS_ACCESS_TTL", cfg.Redis.TTL)

	cfg.Kafka.Brokers = getEnvAsList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
