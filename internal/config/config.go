package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the scene service.
type Config struct {
	DB        DBConfig
	Redis     RedisConfig
	TMDB      TMDBConfig
	Poster    PosterConfig
	Filter    FilterConfig
	Feed      FeedConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Port      string
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	MaxRetries        uint
}

// PosterConfig holds image CDN settings used for poster resolution.
type PosterConfig struct {
	ImageBaseURL string
	Placeholder  string
	ThumbSize    string
}

// FilterConfig extends the built-in content filter lists.
type FilterConfig struct {
	BlockedIDs  []int
	BannedTerms []string
}

// FeedConfig holds feed presentation settings.
type FeedConfig struct {
	PageSize int
	MaxLogs  int
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Max           int
	WindowSeconds int
}

// LogConfig holds logging settings. File is optional.
type LogConfig struct {
	Level      slog.Level
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, err := getInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	rps, err := strconv.ParseFloat(getEnv("TMDB_REQUESTS_PER_SECOND", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TMDB_REQUESTS_PER_SECOND: %w", err)
	}
	retries, err := getInt("TMDB_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	blocked, err := getIntList("FILTER_BLOCKED_IDS")
	if err != nil {
		return nil, err
	}
	pageSize, err := getInt("FEED_PAGE_SIZE", 6)
	if err != nil {
		return nil, err
	}
	maxLogs, err := getInt("FEED_MAX_LOGS", 500)
	if err != nil {
		return nil, err
	}
	rateLimitMax, err := getInt("RATE_LIMIT_MAX", 100)
	if err != nil {
		return nil, err
	}
	rateLimitWindow, err := getInt("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logMaxSize, err := getInt("LOG_MAX_SIZE_MB", 50)
	if err != nil {
		return nil, err
	}
	logMaxBackups, err := getInt("LOG_MAX_BACKUPS", 5)
	if err != nil {
		return nil, err
	}
	logMaxAge, err := getInt("LOG_MAX_AGE_DAYS", 14)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "scene"),
			SSLMode:     getEnv("DB_SSLMODE", "verify-ca"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		TMDB: TMDBConfig{
			APIKey:            getEnv("TMDB_API_KEY", "XXXXXX"),
			BaseURL:           getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			RequestsPerSecond: rps,
			MaxRetries:        uint(max(retries, 1)),
		},
		Poster: PosterConfig{
			ImageBaseURL: getEnv("POSTER_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
			Placeholder:  getEnv("POSTER_PLACEHOLDER_URL", ""),
			ThumbSize:    getEnv("POSTER_THUMB_SIZE", "w300"),
		},
		Filter: FilterConfig{
			BlockedIDs:  blocked,
			BannedTerms: getList("FILTER_BANNED_TERMS"),
		},
		Feed: FeedConfig{
			PageSize: pageSize,
			MaxLogs:  maxLogs,
		},
		RateLimit: RateLimitConfig{
			Max:           rateLimitMax,
			WindowSeconds: rateLimitWindow,
		},
		Log: LogConfig{
			Level:      level,
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  logMaxSize,
			MaxBackups: logMaxBackups,
			MaxAgeDays: logMaxAge,
		},
		Port: getEnv("SERVER_PORT", "8084"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// getList splits a comma-separated variable, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getIntList(key string) ([]int, error) {
	parts := getList(key)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
