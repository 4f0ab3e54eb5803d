// Package duckdb registers the embedded DuckDB dialect.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/database"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

type duckdbHandler struct{}

var _ database.DialectHandler = (*duckdbHandler)(nil)

func (h duckdbHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("duckdb does not support Cloud SQL connections")
}

// CreateStandardPool opens cfg.Path read-only. Use ":memory:" or an empty path for an
// in-memory database.
func (h duckdbHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	dbPool, err := sql.Open("duckdb", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	return dbPool, nil
}

func dsn(path string) string {
	if path == "" || path == ":memory:" {
		return ""
	}
	return path + "?access_mode=read_only"
}

func (h duckdbHandler) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (h duckdbHandler) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (h duckdbHandler) LikeCondition(column, placeholder string) string {
	return fmt.Sprintf(`CAST(%s AS VARCHAR) ILIKE %s ESCAPE '\'`, column, placeholder)
}

func (h duckdbHandler) NumericExpr(column string) string {
	return fmt.Sprintf("CASE WHEN regexp_matches(CAST(%[1]s AS VARCHAR), '%[2]s') THEN TRY_CAST(trim(CAST(%[1]s AS VARCHAR)) AS DOUBLE) END",
		column, query.NumberPattern)
}

func (h duckdbHandler) TextExpr(column string) string {
	return fmt.Sprintf("CAST(%s AS VARCHAR)", column)
}

func (h duckdbHandler) Limit(placeholder string) (string, string) {
	return "", "LIMIT " + placeholder
}

func (h duckdbHandler) ListTables(ctx context.Context, db *database.DB) ([]schema.TableInfo, error) {
	query := `
		SELECT table_name, comment
		FROM duckdb_tables()
		WHERE schema_name = current_schema() AND NOT internal
		ORDER BY table_name`
	return database.QueryTables(ctx, db, query)
}

func (h duckdbHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]schema.ColumnInfo, error) {
	query := `
		SELECT column_name, data_type, CASE WHEN is_nullable THEN 'YES' ELSE 'NO' END, column_default, comment
		FROM duckdb_columns()
		WHERE schema_name = current_schema() AND table_name = $1
		ORDER BY column_index`
	return database.QueryColumns(ctx, db, tableName, query, tableName)
}

func init() {
	database.RegisterDialectHandler("duckdb", duckdbHandler{})
}
