// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Store     Store
	Log       Log
	Chunking  Chunking
	Retrieval Retrieval
}

type Store struct {
	Backend     string // "sqlite", "memory" or "redis"
	DBPath      string
	RedisURL    string
	RedisPrefix string
}

type Log struct {
	Level    string
	FilePath string // empty disables file output
	JSON     bool
}

type Chunking struct {
	ParentSize    int
	ParentOverlap int
	ChildSize     int
	ChildOverlap  int
}

type Retrieval struct {
	TopChildren   int
	TopParents    int
	FallbackChars int
}

// Load reads .env from the working directory when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Store: Store{
			Backend:     strings.ToLower(getEnv("LEARNCORE_BACKEND", "sqlite")),
			DBPath:      getEnv("LEARNCORE_DB", defaultDBPath()),
			RedisURL:    getEnv("LEARNCORE_REDIS_URL", "redis://localhost:6379/0"),
			RedisPrefix: getEnv("LEARNCORE_REDIS_PREFIX", "learncore:"),
		},
		Log: Log{
			Level:    getEnv("LEARNCORE_LOG_LEVEL", "warn"),
			FilePath: getEnv("LEARNCORE_LOG_FILE", ""),
			JSON:     getEnvAsBool("LEARNCORE_LOG_JSON", false),
		},
		Chunking: Chunking{
			ParentSize:    getEnvAsInt("LEARNCORE_PARENT_SIZE", 1500),
			ParentOverlap: getEnvAsInt("LEARNCORE_PARENT_OVERLAP", 50),
			ChildSize:     getEnvAsInt("LEARNCORE_CHILD_SIZE", 300),
			ChildOverlap:  getEnvAsInt("LEARNCORE_CHILD_OVERLAP", 50),
		},
		Retrieval: Retrieval{
			TopChildren:   getEnvAsInt("LEARNCORE_TOP_CHILDREN", 5),
			TopParents:    getEnvAsInt("LEARNCORE_TOP_PARENTS", 2),
			FallbackChars: getEnvAsInt("LEARNCORE_FALLBACK_CHARS", 2000),
		},
	}
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".learncore", "learncore.db")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
