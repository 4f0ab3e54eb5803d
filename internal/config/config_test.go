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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "mysql", cfg.Database.Dialect)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 10, cfg.Database.PoolSize)
	assert.Equal(t, 0, cfg.Database.QueueLimit)
	assert.Equal(t, 100, cfg.Query.DefaultLimit)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.Gemini.Model)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DBQA_STORE", "database")
	t.Setenv("DB_DIALECT", "Postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("DB_POOL_SIZE", "4")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, StoreDatabase, cfg.Store)
	assert.Equal(t, "postgres", cfg.Database.Dialect)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "shop", cfg.Database.DBName)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 4, cfg.Database.PoolSize)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store: database
database:
  dialect: sqlite
  path: /tmp/shop.db
  queue_limit: 25
query:
  default_limit: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Dialect)
	assert.Equal(t, "/tmp/shop.db", cfg.Database.Path)
	assert.Equal(t, 0, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.QueueLimit)
	assert.Equal(t, 50, cfg.Query.DefaultLimit)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"database store with mysql", func(c *Config) { c.Store = StoreDatabase; c.Database.Port = 3306 }, false},
		{"unknown store", func(c *Config) { c.Store = "redis" }, true},
		{"unknown dialect", func(c *Config) { c.Store = StoreDatabase; c.Database.Dialect = "oracle" }, true},
		{"invalid port", func(c *Config) { c.Store = StoreDatabase; c.Database.Port = 70000 }, true},
		{"cloudsql without instance", func(c *Config) { c.Store = StoreDatabase; c.Database.Dialect = "cloudsqlmysql" }, true},
		{"zero pool size", func(c *Config) { c.Database.PoolSize = 0 }, true},
		{"negative queue limit", func(c *Config) { c.Database.QueueLimit = -1 }, true},
		{"zero default limit", func(c *Config) { c.Query.DefaultLimit = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultPort(t *testing.T) {
	assert.Equal(t, 3306, DefaultPort("cloudsqlmysql"))
	assert.Equal(t, 5432, DefaultPort("postgres"))
	assert.Equal(t, 1433, DefaultPort("sqlserver"))
	assert.Equal(t, 0, DefaultPort("duckdb"))
}
