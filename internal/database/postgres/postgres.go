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
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/database"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

// postgresHandler struct implements database.DialectHandler for PostgreSQL.
type postgresHandler struct{}

var _ database.DialectHandler = (*postgresHandler)(nil)

// CreateCloudSQLPool for PostgreSQL
func (h postgresHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.User == "" || cfg.DBName == "" || cfg.CloudSQLInstanceConnectionName == "" {
		return nil, fmt.Errorf("missing required CloudSQL connection parameter (user, db, instance)")
	}
	instanceConnectionName := cfg.CloudSQLInstanceConnectionName

	dsn := fmt.Sprintf("user=%s password=%s database=%s", cfg.User, cfg.Password, cfg.DBName)
	pgxConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	var opts []cloudsqlconn.Option
	if cfg.UsePrivateIP {
		opts = append(opts, cloudsqlconn.WithDefaultDialOptions(cloudsqlconn.WithPrivateIP()))
	}
	d, err := cloudsqlconn.NewDialer(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	pgxConfig.DialFunc = func(ctx context.Context, network, instance string) (net.Conn, error) {
		return d.Dial(ctx, instanceConnectionName)
	}
	dbURI := stdlib.RegisterConnConfig(pgxConfig)
	dbPool, err := sql.Open("pgx", dbURI)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	return dbPool, nil
}

// CreateStandardPool creates a standard PostgreSQL connection pool
func (h postgresHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	dbPool, err := sql.Open("postgres", connString(cfg))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return dbPool, nil
}

func connString(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode,
	)
}

// QuoteIdentifier for PostgreSQL
func (h postgresHandler) QuoteIdentifier(name string) string {
	// Replace any existing quotes with double quotes to escape them
	name = strings.ReplaceAll(name, `"`, `""`)
	return fmt.Sprintf(`"%s"`, name)
}

func (h postgresHandler) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (h postgresHandler) LikeCondition(column, placeholder string) string {
	return fmt.Sprintf(`CAST(%s AS TEXT) ILIKE %s ESCAPE '\'`, column, placeholder)
}

func (h postgresHandler) NumericExpr(column string) string {
	return fmt.Sprintf("CASE WHEN CAST(%[1]s AS TEXT) ~ '%[2]s' THEN CAST(CAST(%[1]s AS TEXT) AS DOUBLE PRECISION) END",
		column, query.NumberPattern)
}

func (h postgresHandler) TextExpr(column string) string {
	return fmt.Sprintf(`CAST(%s AS TEXT) COLLATE "C"`, column)
}

func (h postgresHandler) Limit(placeholder string) (string, string) {
	return "", "LIMIT " + placeholder
}

// ListTables for PostgreSQL
func (h postgresHandler) ListTables(ctx context.Context, db *database.DB) ([]schema.TableInfo, error) {
	query := `
		SELECT t.table_name,
			obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass, 'pg_class')
		FROM information_schema.tables t
		WHERE t.table_schema = current_schema()
		AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name;`
	return database.QueryTables(ctx, db, query)
}

// ListColumns for PostgreSQL
func (h postgresHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]schema.ColumnInfo, error) {
	query := `
		SELECT c.column_name, c.data_type, c.is_nullable, c.column_default,
			col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int)
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema()
		AND c.table_name = $1
		ORDER BY c.ordinal_position;`
	return database.QueryColumns(ctx, db, tableName, query, tableName)
}

func init() {
	database.RegisterDialectHandler("postgres", postgresHandler{})
	database.RegisterDialectHandler("cloudsqlpostgres", postgresHandler{})
}
