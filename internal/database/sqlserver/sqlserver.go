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
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	"cloud.google.com/go/cloudsqlconn"
	mssql "github.com/denisenkom/go-mssqldb"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/database"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

// sqlServerHandler struct implements database.DialectHandler for SQL Server.
type sqlServerHandler struct{}

var _ database.DialectHandler = (*sqlServerHandler)(nil)

type csqlDialer struct {
	dialer     *cloudsqlconn.Dialer
	connName   string
	usePrivate bool
}

// DialContext adheres to the mssql.Dialer interface.
func (c *csqlDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var opts []cloudsqlconn.DialOption
	if c.usePrivate {
		opts = append(opts, cloudsqlconn.WithPrivateIP())
	}
	return c.dialer.Dial(ctx, c.connName, opts...)
}

// CreateCloudSQLPool for SQL Server
func (h sqlServerHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.User == "" || cfg.DBName == "" || cfg.CloudSQLInstanceConnectionName == "" {
		return nil, fmt.Errorf("missing required CloudSQL connection parameter (user, db, instance)")
	}

	// WithLazyRefresh() Option is used to perform refresh
	// when needed, rather than on a scheduled interval.
	// This is recommended for serverless environments to
	// avoid background refreshes from throttling CPU.
	dialer, err := cloudsqlconn.NewDialer(context.Background(), cloudsqlconn.WithLazyRefresh())
	if err != nil {
		return nil, fmt.Errorf("cloudsqlconn.NewDialer: %w", err)
	}
	connector, err := mssql.NewConnector(connURL(cfg.User, cfg.Password, "localhost", 1433, cfg.DBName))
	if err != nil {
		return nil, fmt.Errorf("mssql.NewConnector: %w", err)
	}
	connector.Dialer = &csqlDialer{
		dialer:     dialer,
		connName:   cfg.CloudSQLInstanceConnectionName,
		usePrivate: cfg.UsePrivateIP,
	}

	return sql.OpenDB(connector), nil
}

// CreateStandardPool creates a standard SQL Server connection pool
func (h sqlServerHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	port := cfg.Port
	if port == 0 {
		port = 1433 // Default SQL Server port
	}
	dbPool, err := sql.Open("sqlserver", connURL(cfg.User, cfg.Password, cfg.Host, port, cfg.DBName))
	if err != nil {
		return nil, fmt.Errorf("sql.Open (standard sqlserver): %w", err)
	}
	return dbPool, nil
}

func connURL(user, password, host string, port int, dbName string) string {
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		RawQuery: url.Values{"database": {dbName}}.Encode(),
	}
	return u.String()
}

// QuoteIdentifier for SQL Server
// SQL Server uses square brackets [] for identifiers.
func (h sqlServerHandler) QuoteIdentifier(name string) string {
	return fmt.Sprintf("[%s]", strings.ReplaceAll(name, "]", "]]"))
}

func (h sqlServerHandler) Placeholder(n int) string {
	return fmt.Sprintf("@p%d", n)
}

func (h sqlServerHandler) LikeCondition(column, placeholder string) string {
	return fmt.Sprintf(`LOWER(CAST(%s AS NVARCHAR(MAX))) LIKE LOWER(%s) ESCAPE '\'`, column, placeholder)
}

// NumericExpr relies on TRY_CAST since SQL Server has no regular expressions. TRY_CAST
// accepts the same decimal and exponent forms as query.NumberPattern.
func (h sqlServerHandler) NumericExpr(column string) string {
	return fmt.Sprintf("TRY_CAST(CAST(%s AS NVARCHAR(MAX)) AS FLOAT)", column)
}

// TextExpr renders dates in ISO 8601 (style 126) so they sort chronologically, and compares
// under a binary collation. Equality still ignores trailing spaces, as it does under every
// SQL Server collation.
func (h sqlServerHandler) TextExpr(column string) string {
	return fmt.Sprintf("CONVERT(NVARCHAR(MAX), %s, 126) COLLATE Latin1_General_100_BIN2", column)
}

// Limit uses TOP since OFFSET/FETCH would require an ORDER BY.
func (h sqlServerHandler) Limit(placeholder string) (string, string) {
	return fmt.Sprintf("TOP (%s)", placeholder), ""
}

// ListTables for SQL Server
func (h sqlServerHandler) ListTables(ctx context.Context, db *database.DB) ([]schema.TableInfo, error) {
	query := `
		SELECT t.TABLE_NAME, CAST(ep.value AS NVARCHAR(4000))
		FROM INFORMATION_SCHEMA.TABLES t
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = OBJECT_ID(QUOTENAME(t.TABLE_SCHEMA) + '.' + QUOTENAME(t.TABLE_NAME))
			AND ep.minor_id = 0
			AND ep.name = 'MS_Description'
		WHERE t.TABLE_TYPE = 'BASE TABLE' AND t.TABLE_CATALOG = DB_NAME()
		ORDER BY t.TABLE_NAME`
	return database.QueryTables(ctx, db, query)
}

// ListColumns for SQL Server
func (h sqlServerHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]schema.ColumnInfo, error) {
	query := `
		SELECT c.COLUMN_NAME, c.DATA_TYPE, c.IS_NULLABLE, c.COLUMN_DEFAULT, CAST(ep.value AS NVARCHAR(4000))
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
			AND ep.minor_id = COLUMNPROPERTY(ep.major_id, c.COLUMN_NAME, 'ColumnId')
			AND ep.name = 'MS_Description'
		WHERE c.TABLE_NAME = @p1 AND c.TABLE_CATALOG = DB_NAME()
		ORDER BY c.ORDINAL_POSITION`
	return database.QueryColumns(ctx, db, tableName, query, tableName)
}

func init() {
	database.RegisterDialectHandler("sqlserver", sqlServerHandler{})
	database.RegisterDialectHandler("cloudsqlsqlserver", sqlServerHandler{})
}
