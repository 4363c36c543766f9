package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env       string
	Server    ServerConfig
	DB        DBConfig
	YouTube   YouTubeConfig
	Embedding EmbeddingConfig
	Cache     CacheConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int32
	MinConns int32
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type YouTubeConfig struct {
	APIKey     string
	MaxResults int
}

type EmbeddingConfig struct {
	AccountID string
	APIToken  string
	Model     string
	Dims      int
}

type CacheConfig struct {
	Size int
}

type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
}

func Load() *Config {
	return &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			Port: getEnv("PORT", "9020"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "videos-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "videos_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "videos_password"),
			Name:     getEnv("DB_NAME", "videos_db"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		YouTube: YouTubeConfig{
			APIKey:     getSecret("YOUTUBE_API_KEY", "YOUTUBE_API_KEY_FILE", ""),
			MaxResults: getEnvInt("YOUTUBE_MAX_RESULTS", 20),
		},
		Embedding: EmbeddingConfig{
			AccountID: getEnv("CF_ACCOUNT_ID", ""),
			APIToken:  getSecret("CF_API_TOKEN", "CF_API_TOKEN_FILE", ""),
			Model:     getEnv("EMBEDDING_MODEL", "@cf/baai/bge-small-en-v1.5"),
			Dims:      getEnvInt("EMBEDDING_DIMS", 384),
		},
		Cache: CacheConfig{
			Size: getEnvInt("EMBEDDING_CACHE_SIZE", 256),
		},
		Worker: WorkerConfig{
			Interval:  time.Duration(getEnvInt("BACKFILL_INTERVAL_SECONDS", 60)) * time.Second,
			BatchSize: getEnvInt("BACKFILL_BATCH_SIZE", 32),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
