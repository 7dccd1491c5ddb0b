package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the sales assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	CompletionMode    string
	CompletionBaseURL string
	CompletionAPIKey  string
	CompletionModel   string
	CompletionTimeout time.Duration
	EmbeddingModel    string

	RedisURL    string
	DatabaseURL string
	SessionTTL  time.Duration

	HistoryWindow     int
	MaxToolIterations int
	ResponseMaxChars  int
	AnnualRate        float64

	QdrantURL         string
	QdrantCollection  string
	QdrantAPIKey      string
	KnowledgeMinScore float64
	KnowledgeTimeout  time.Duration

	CatalogPath string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:          envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "lucia"),
		AllowAnyOrigin:    false,
		CompletionMode:    envOrDefault("COMPLETION_MODE", "auto"),
		CompletionBaseURL: stringsTrimSpace("COMPLETION_BASE_URL"),
		CompletionAPIKey:  stringsTrimSpace("COMPLETION_API_KEY"),
		CompletionModel:   envOrDefault("COMPLETION_MODEL", "gpt-4o"),
		EmbeddingModel:    envOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
		RedisURL:          stringsTrimSpace("REDIS_URL"),
		DatabaseURL:       stringsTrimSpace("DATABASE_URL"),
		QdrantURL:         stringsTrimSpace("QDRANT_URL"),
		QdrantCollection:  envOrDefault("QDRANT_COLLECTION", "company_knowledge"),
		QdrantAPIKey:      stringsTrimSpace("QDRANT_API_KEY"),
		CatalogPath:       envOrDefault("CATALOG_PATH", "data/inventory.csv"),
		ShutdownTimeout:   15 * time.Second,
		CompletionTimeout: 60 * time.Second,
		SessionTTL:        720 * time.Hour,
		KnowledgeTimeout:  3 * time.Second,
		HistoryWindow:     10,
		MaxToolIterations: 5,
		ResponseMaxChars:  1500,
		AnnualRate:        0.10,
		KnowledgeMinScore: 0.30,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionTimeout, err = durationFromEnv("COMPLETION_TIMEOUT", cfg.CompletionTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL, err = durationFromEnv("SESSION_TTL", cfg.SessionTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.KnowledgeTimeout, err = durationFromEnv("KNOWLEDGE_TIMEOUT", cfg.KnowledgeTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	cfg.HistoryWindow, err = intFromEnv("HISTORY_WINDOW", cfg.HistoryWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxToolIterations, err = intFromEnv("MAX_TOOL_ITERATIONS", cfg.MaxToolIterations)
	if err != nil {
		return Config{}, err
	}
	cfg.ResponseMaxChars, err = intFromEnv("RESPONSE_MAX_CHARS", cfg.ResponseMaxChars)
	if err != nil {
		return Config{}, err
	}
	cfg.AnnualRate, err = floatFromEnv("FINANCING_ANNUAL_RATE", cfg.AnnualRate)
	if err != nil {
		return Config{}, err
	}
	cfg.KnowledgeMinScore, err = floatFromEnv("KNOWLEDGE_MIN_SCORE", cfg.KnowledgeMinScore)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionTTL < time.Minute {
		return Config{}, fmt.Errorf("SESSION_TTL must be at least 1m")
	}
	if cfg.HistoryWindow <= 0 {
		return Config{}, fmt.Errorf("HISTORY_WINDOW must be positive")
	}
	if cfg.MaxToolIterations <= 0 {
		return Config{}, fmt.Errorf("MAX_TOOL_ITERATIONS must be positive")
	}
	if cfg.ResponseMaxChars < 100 {
		return Config{}, fmt.Errorf("RESPONSE_MAX_CHARS must be at least 100")
	}
	if cfg.AnnualRate <= 0 || cfg.AnnualRate >= 1 {
		return Config{}, fmt.Errorf("FINANCING_ANNUAL_RATE must be between 0 and 1")
	}
	if cfg.KnowledgeMinScore < 0 || cfg.KnowledgeMinScore > 1 {
		return Config{}, fmt.Errorf("KNOWLEDGE_MIN_SCORE must be between 0 and 1")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return trimSpace(os.Getenv(key))
}

func trimSpace(v string) string {
	for len(v) > 0 && (v[0] == ' ' || v[0] == '\n' || v[0] == '\t' || v[0] == '\r') {
		v = v[1:]
	}
	for len(v) > 0 {
		c := v[len(v)-1]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			v = v[:len(v)-1]
			continue
		}
		break
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
