// Package sqlite registers the embedded SQLite dialect, backed by the pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/database"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

type sqliteHandler struct{}

var _ database.DialectHandler = (*sqliteHandler)(nil)

func (h sqliteHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("sqlite does not support Cloud SQL connections")
}

// CreateStandardPool opens cfg.Path read-only. An empty path or ":memory:" opens a
// private in-memory database.
func (h sqliteHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	dbPool, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("sql.Open (sqlite): %w", err)
	}
	return dbPool, nil
}

func dsn(path string) string {
	if path == "" || path == ":memory:" {
		return ":memory:"
	}
	return "file:" + path + "?mode=ro"
}

func (h sqliteHandler) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (h sqliteHandler) Placeholder(n int) string {
	return "?"
}

func (h sqliteHandler) LikeCondition(column, placeholder string) string {
	return fmt.Sprintf(`LOWER(CAST(%s AS TEXT)) LIKE LOWER(%s) ESCAPE '\'`, column, placeholder)
}

// NumericExpr calls numberFunc, registered with the driver, so text cells convert under
// exactly the rules the in-memory store applies.
func (h sqliteHandler) NumericExpr(column string) string {
	return fmt.Sprintf("%s(%s)", numberFunc, column)
}

// TextExpr overrides any collation declared on the column; CAST alone keeps it.
func (h sqliteHandler) TextExpr(column string) string {
	return fmt.Sprintf("CAST(%s AS TEXT) COLLATE BINARY", column)
}

func (h sqliteHandler) Limit(placeholder string) (string, string) {
	return "", "LIMIT " + placeholder
}

func (h sqliteHandler) ListTables(ctx context.Context, db *database.DB) ([]schema.TableInfo, error) {
	query := `
		SELECT name, ''
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`
	return database.QueryTables(ctx, db, query)
}

func (h sqliteHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]schema.ColumnInfo, error) {
	query := `
		SELECT name, type, CASE WHEN "notnull" = 0 THEN 'YES' ELSE 'NO' END, dflt_value, ''
		FROM pragma_table_info(?)
		ORDER BY cid`
	return database.QueryColumns(ctx, db, tableName, query, tableName)
}

const numberFunc = "dbqa_number"

// number returns its argument as a float64, or NULL when it is text that is not a number.
func number(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		if f, ok := query.ParseNumber(v); ok {
			return f, nil
		}
	case []byte:
		if f, ok := query.ParseNumber(string(v)); ok {
			return f, nil
		}
	}
	return nil, nil
}

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(numberFunc, 1, number)
	database.RegisterDialectHandler("sqlite", sqliteHandler{})
}
