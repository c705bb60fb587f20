// config.go
//
// K9 management data service: dogs, trainers and training journals
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of k9-management.
// k9-management is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// k9-management is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with k9-management.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port    string
	APIAuth bool

	// Database configuration
	DBType            string // sqlite, sqlite-cgo, mysql, postgres, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string // file path for sqlite
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBBusyTimeout     time.Duration
	DBLogLevel        string

	// Session configuration
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	// Credential configuration
	PasswordMode string // plain, bcrypt
	BcryptCost   int

	// Optional stats cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration

	// Optional journal review events
	AMQPURL   string
	AMQPQueue string
}

// Load loads configuration from the environment, after reading ENV_FILE (or .env) if present
func Load() (*Config, error) {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:                   getEnv("PORT", "3000"),
		APIAuth:                getEnvAsBool("API_AUTH", false),
		DBType:                 strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", ""),
		DBDatabase:             getEnv("DB_DATABASE", "k9_management.db"),
		DBUser:                 getEnv("DB_USER", ""),
		DBPassword:             getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:      getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBBusyTimeout:          getEnvAsDuration("DB_BUSY_TIMEOUT", 30*time.Second),
		DBLogLevel:             strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		SessionTTL:             getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		SessionCleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", time.Hour),
		PasswordMode:           strings.ToLower(getEnv("PASSWORD_MODE", "plain")),
		BcryptCost:             getEnvAsInt("BCRYPT_COST", 10),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		StatsCacheTTL:          getEnvAsDuration("STATS_CACHE_TTL", 30*time.Second),
		AMQPURL:                getEnv("AMQP_URL", ""),
		AMQPQueue:              getEnv("AMQP_QUEUE", "journal_reviewed"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for required and consistent values
func (c *Config) Validate() error {
	switch c.DBType {
	case "sqlite", "sqlite-cgo":
	case "mysql", "mariadb", "postgres", "postgresql", "sqlserver", "mssql":
		if c.DBHost == "" {
			return fmt.Errorf("DB_HOST is required for %s", c.DBType)
		}
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER is required for %s", c.DBType)
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", c.DBType)
	}

	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.DBConnectionLimit < 1 {
		return fmt.Errorf("DB_CONNECTION_LIMIT must be positive, got %d", c.DBConnectionLimit)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.PasswordMode != "plain" && c.PasswordMode != "bcrypt" {
		return fmt.Errorf("PASSWORD_MODE must be plain or bcrypt, got %s", c.PasswordMode)
	}

	return nil
}

// IsSQLite reports whether the configured store is a sqlite file
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite-cgo"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90m") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
