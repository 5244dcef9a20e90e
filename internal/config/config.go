package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	Server      ServerConfig
	Adapters    AdaptersConfig
	Leaderboard LeaderboardConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// AdaptersConfig holds configuration for the external stat providers
type AdaptersConfig struct {
	LeetCodeBaseURL string
	GitHubBaseURL   string
	GitHubToken     string
}

// LeaderboardConfig holds leaderboard computation configuration
type LeaderboardConfig struct {
	DefaultWeightLeetCode float64
	DefaultWeightGitHub   float64
	FetchTimeout          time.Duration
	FetchConcurrency      int
	RefreshInterval       time.Duration
	CacheTTL              time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "leadcode"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("BACKEND_PORT", 5000),
		},
		Adapters: AdaptersConfig{
			LeetCodeBaseURL: getEnv("LEETCODE_API_URL", "https://leetcode-stats-api.herokuapp.com"),
			GitHubBaseURL:   getEnv("GITHUB_API_URL", "https://api.github.com"),
			GitHubToken:     getEnv("GITHUB_TOKEN", ""),
		},
		Leaderboard: LeaderboardConfig{
			DefaultWeightLeetCode: getEnvAsFloat("LEADERBOARD_WEIGHT_LEETCODE", 0.6),
			DefaultWeightGitHub:   getEnvAsFloat("LEADERBOARD_WEIGHT_GITHUB", 0.4),
			FetchTimeout:          getEnvAsDuration("LEADERBOARD_FETCH_TIMEOUT", 8*time.Second),
			FetchConcurrency:      getEnvAsInt("LEADERBOARD_FETCH_CONCURRENCY", 8),
			RefreshInterval:       getEnvAsDuration("LEADERBOARD_REFRESH_INTERVAL", 5*time.Minute),
			CacheTTL:              getEnvAsDuration("LEADERBOARD_CACHE_TTL", 10*time.Minute),
		},
	}

	return cfg, nil
}

// GetDSN returns the PostgreSQL DSN
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
