/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for Config.Store.
const (
	StoreMemory   = "memory"
	StoreDatabase = "database"
)

// SupportedDialects lists every dialect a handler is registered for.
var SupportedDialects = []string{
	"mysql", "cloudsqlmysql",
	"postgres", "cloudsqlpostgres",
	"sqlserver", "cloudsqlsqlserver",
	"sqlite", "duckdb",
}

// Config holds all configuration for the application
type Config struct {
	Store    string         `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Query    QueryConfig    `mapstructure:"query"`
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Dialect                        string `mapstructure:"dialect"`
	Host                           string `mapstructure:"host"`
	Port                           int    `mapstructure:"port"`
	User                           string `mapstructure:"user"`
	Password                       string `mapstructure:"password"`
	DBName                         string `mapstructure:"name"`
	Path                           string `mapstructure:"path"`
	SSLMode                        string `mapstructure:"sslmode"`
	CloudSQLInstanceConnectionName string `mapstructure:"cloudsql_instance_connection_name"`
	UsePrivateIP                   bool   `mapstructure:"cloudsql_use_private_ip"`
	PoolSize                       int    `mapstructure:"pool_size"`
	QueueLimit                     int    `mapstructure:"queue_limit"`
}

// GeminiConfig configures the reasoning capability.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// QueryConfig holds executor defaults.
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

var globalConfig *Config

// GetConfig returns a default configuration. Values are overridden by Load.
func GetConfig() *Config {
	return &Config{
		Store: StoreMemory,
		Database: DatabaseConfig{
			Dialect:  "mysql",
			Host:     "localhost",
			User:     "root",
			Password: "password",
			DBName:   "mydb",
			Path:     ":memory:",
			SSLMode:  "disable",
			PoolSize: 10,
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash-latest",
		},
		Query: QueryConfig{
			DefaultLimit: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			Addr: ":9002",
		},
	}
}

// SetConfig sets the global configuration.
func SetConfig(cfg *Config) {
	globalConfig = cfg
}

// Current returns the configuration installed by SetConfig, or the defaults.
func Current() *Config {
	if globalConfig == nil {
		return GetConfig()
	}
	return globalConfig
}

// envBindings maps config keys to the environment variables they are read from.
var envBindings = map[string]string{
	"store":                                      "DBQA_STORE",
	"database.dialect":                           "DB_DIALECT",
	"database.host":                              "DB_HOST",
	"database.port":                              "DB_PORT",
	"database.user":                              "DB_USER",
	"database.password":                          "DB_PASSWORD",
	"database.name":                              "DB_NAME",
	"database.path":                              "DB_PATH",
	"database.sslmode":                           "DB_SSLMODE",
	"database.cloudsql_instance_connection_name": "CLOUDSQL_INSTANCE",
	"database.pool_size":                         "DB_POOL_SIZE",
	"database.queue_limit":                       "DB_QUEUE_LIMIT",
	"gemini.api_key":                             "GEMINI_API_KEY",
	"gemini.model":                               "GEMINI_MODEL",
	"log.level":                                  "LOG_LEVEL",
	"http.addr":                                  "HTTP_ADDR",
}

// SetDefaults registers the default configuration on v.
func SetDefaults(v *viper.Viper) {
	d := GetConfig()
	v.SetDefault("store", d.Store)
	v.SetDefault("database.dialect", d.Database.Dialect)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.name", d.Database.DBName)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.cloudsql_instance_connection_name", "")
	v.SetDefault("database.cloudsql_use_private_ip", false)
	v.SetDefault("database.pool_size", d.Database.PoolSize)
	v.SetDefault("database.queue_limit", d.Database.QueueLimit)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("query.default_limit", d.Query.DefaultLimit)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("http.addr", d.HTTP.Addr)
}

// Load reads configuration from an optional config file, .env files and the
// environment, in increasing order of precedence. Flags bound to v win over all of them.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	SetDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.Database.Dialect = strings.ToLower(strings.TrimSpace(cfg.Database.Dialect))
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultPort(cfg.Database.Dialect)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPort returns the conventional port for a dialect, 0 for embedded engines.
func DefaultPort(dialect string) int {
	switch strings.TrimPrefix(dialect, "cloudsql") {
	case "mysql":
		return 3306
	case "postgres":
		return 5432
	case "sqlserver":
		return 1433
	default:
		return 0
	}
}

// Validate checks the configuration for values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreDatabase:
		if err := ValidateDialect(c.Database.Dialect); err != nil {
			return err
		}
		if c.Database.Port < 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if strings.HasPrefix(c.Database.Dialect, "cloudsql") && c.Database.CloudSQLInstanceConnectionName == "" {
			return fmt.Errorf("dialect %s requires a Cloud SQL instance connection name", c.Database.Dialect)
		}
	default:
		return fmt.Errorf("unsupported store: %s (only %s, %s are supported)", c.Store, StoreMemory, StoreDatabase)
	}
	if c.Database.PoolSize < 1 {
		return fmt.Errorf("database pool size must be at least 1, got %d", c.Database.PoolSize)
	}
	if c.Database.QueueLimit < 0 {
		return fmt.Errorf("database queue limit must not be negative, got %d", c.Database.QueueLimit)
	}
	if c.Query.DefaultLimit < 1 {
		return fmt.Errorf("default row limit must be at least 1, got %d", c.Query.DefaultLimit)
	}
	return nil
}

// ValidateDialect reports whether dialect is one of SupportedDialects.
func ValidateDialect(dialect string) error {
	for _, supported := range SupportedDialects {
		if dialect == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(SupportedDialects, ", "))
}
