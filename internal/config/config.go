package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jwebster45206/world-engine/pkg/worldgen"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	LLMProvider     string
	ModelName       string
	AnthropicAPIKey string
	OllamaURL       string
	OracleTimeout   time.Duration

	RedisURL string
	DataDir  string

	Region          string
	GenerationDepth int
	MaxAreas        int
}

func Load() (*Config, error) {
	depth, err := getEnvInt("GENERATION_DEPTH", worldgen.DefaultDepth)
	if err != nil {
		return nil, err
	}
	if depth < 0 {
		return nil, fmt.Errorf("GENERATION_DEPTH must not be negative, got %d", depth)
	}

	maxAreas, err := getEnvInt("MAX_AREAS", worldgen.DefaultMaxAreas)
	if err != nil {
		return nil, err
	}
	if maxAreas <= 0 {
		return nil, fmt.Errorf("MAX_AREAS must be positive, got %d", maxAreas)
	}

	oracleTimeout, err := getEnvDuration("ORACLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
		ModelName:       getEnv("MODEL_NAME", "llama3"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
		OracleTimeout:   oracleTimeout,

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		DataDir:  getEnv("DATA_DIR", "./data"),

		Region:          getEnv("WORLD_REGION", "Riverlands"),
		GenerationDepth: depth,
		MaxAreas:        maxAreas,
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
