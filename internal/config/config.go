package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Driver   string // "postgres" or "sqlite"
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		Path     string // sqlite file path, used when Driver is "sqlite"
	}

	Server struct {
		Port    string
		GinMode string
	}

	Auth struct {
		JWTSecret     string
		TokenLifetime time.Duration
		AdminEmail    string
		AdminPassword string
	}

	Locking struct {
		// WorkerLockWait bounds how long an Assign/Unassign waits for the
		// per-worker exclusive lock before giving up.
		WorkerLockWait time.Duration
	}

	Log struct {
		Level string
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Driver = getEnv("DB_DRIVER", "postgres")
	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "rosterly")
	config.DB.Password = getEnv("DB_PASSWORD", "rosterly_password")
	config.DB.Name = getEnv("DB_NAME", "rosterly_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	config.DB.Path = getEnv("DB_PATH", "./rosterly.db")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	config.Auth.TokenLifetime = getEnvAsDuration("JWT_TOKEN_LIFETIME", 24*time.Hour)
	config.Auth.AdminEmail = getEnv("ADMIN_EMAIL", "admin@rosterly.local")
	config.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", "")

	config.Locking.WorkerLockWait = getEnvAsDuration("WORKER_LOCK_WAIT", 5*time.Second)

	config.Log.Level = getEnv("LOG_LEVEL", "info")

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
