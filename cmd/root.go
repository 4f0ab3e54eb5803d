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
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/assistant"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/database"
	_ "github.com/GoogleCloudPlatform/db-query-assistant/internal/database/duckdb"
	_ "github.com/GoogleCloudPlatform/db-query-assistant/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/db-query-assistant/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/db-query-assistant/internal/database/sqlite"
	_ "github.com/GoogleCloudPlatform/db-query-assistant/internal/database/sqlserver"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/genai"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/logging"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/memstore"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/utils"
)

var (
	cfgFile string
	v       = viper.New()
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "db_query_assistant",
	Short: "Ask questions about a database in natural language",
	Long: `db_query_assistant translates natural-language requests into structured single-table
queries, validates them against the database catalog and runs them read-only.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initFlagsAndConfig,
	PersistentPostRunE: syncLogger,
}

// initFlagsAndConfig loads configuration from flags, environment and config file, and builds the logger.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	config.SetConfig(cfg)

	l, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	logger = l
	zap.ReplaceGlobals(logger)
	return nil
}

func syncLogger(cmd *cobra.Command, args []string) error {
	// Sync fails on terminals for stderr; nothing actionable is lost.
	_ = logger.Sync()
	return nil
}

// backend is an executor together with what is needed to display and release it.
type backend struct {
	executor *query.Executor
	quote    func(string) string
	close    func() error
}

// setupBackend connects the configured store and wraps it in an executor.
func setupBackend(ctx context.Context) (*backend, error) {
	cfg := config.Current()
	execCfg := query.ExecutorConfig{DefaultLimit: cfg.Query.DefaultLimit}

	switch cfg.Store {
	case config.StoreDatabase:
		db, err := database.New(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("Failed to connect to database", zap.String("dialect", cfg.Database.Dialect), zap.Error(err))
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		execCfg.StoreName = cfg.Database.Dialect
		return &backend{
			executor: query.NewExecutor(db, execCfg, logger),
			quote:    db.Handler.QuoteIdentifier,
			close:    db.Close,
		}, nil
	default:
		execCfg.StoreName = config.StoreMemory
		logger.Info("Using the in-memory sample dataset")
		return &backend{
			executor: query.NewExecutor(memstore.NewSample(), execCfg, logger),
			close:    func() error { return nil },
		}, nil
	}
}

// setupAssistant builds the validator/translator. Without an API key it is still returned, and
// every call fails with a translation-unavailable error.
func setupAssistant(ctx context.Context, b *backend, contextFiles string) (*assistant.Service, func(), error) {
	cfg := config.Current()
	additionalContext, err := utils.ReadContextFiles(contextFiles)
	if err != nil {
		return nil, nil, err
	}

	var llm genai.LLMClient
	closeLLM := func() {}
	if cfg.Gemini.APIKey == "" {
		logger.Warn("Gemini API key is not set; natural-language requests are unavailable")
	} else {
		llm, err = genai.NewClient(ctx, genai.Config{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		closeLLM = func() {
			if err := llm.Close(); err != nil {
				logger.Warn("Failed to close Gemini client", zap.Error(err))
			}
		}
	}

	svc := assistant.NewService(b.executor, llm, assistant.Config{AdditionalContext: additionalContext}, logger)
	return svc, closeLLM, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}

func init() {
	d := config.GetConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	flags.String("store", d.Store, "Tabular store to query (memory or database)")

	// Database connection flags
	flags.String("dialect", d.Database.Dialect, fmt.Sprintf("Database dialect (%s)", strings.Join(config.SupportedDialects, ", ")))
	flags.String("host", d.Database.Host, "Database host")
	flags.Int("port", 0, "Database port (defaults to the dialect's port)")
	flags.String("username", d.Database.User, "Database username")
	flags.String("password", d.Database.Password, "Database password")
	flags.String("database", d.Database.DBName, "Database name")
	flags.String("path", d.Database.Path, "Database file for sqlite and duckdb")
	flags.String("cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	flags.Bool("cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")
	flags.Int("pool-size", d.Database.PoolSize, "Maximum number of concurrent database queries")
	flags.Int("queue-limit", d.Database.QueueLimit, "Maximum number of queries waiting for a connection (0 for unbounded)")

	// Gemini flags
	flags.String("gemini-api-key", "", "Gemini API key (can also be set via GEMINI_API_KEY environment variable)")
	flags.String("gemini-model", d.Gemini.Model, "Gemini model name")

	flags.Int("default-limit", d.Query.DefaultLimit, "Row limit applied when a query sets none")
	flags.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	flags.Bool("log-json", d.Log.JSON, "Emit JSON logs")

	for key, flag := range map[string]string{
		"store":                                      "store",
		"database.dialect":                           "dialect",
		"database.host":                              "host",
		"database.port":                              "port",
		"database.user":                              "username",
		"database.password":                          "password",
		"database.name":                              "database",
		"database.path":                              "path",
		"database.cloudsql_instance_connection_name": "cloudsql-instance-connection-name",
		"database.cloudsql_use_private_ip":           "cloudsql-use-private-ip",
		"database.pool_size":                         "pool-size",
		"database.queue_limit":                       "queue-limit",
		"gemini.api_key":                             "gemini-api-key",
		"gemini.model":                               "gemini-model",
		"query.default_limit":                        "default-limit",
		"log.level":                                  "log-level",
		"log.json":                                   "log-json",
	} {
		bindFlag(key, flag)
	}

	// Add subcommands
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
}
