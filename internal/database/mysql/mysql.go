package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/database"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

type mysqlHandler struct{}

var _ database.DialectHandler = (*mysqlHandler)(nil)

func (h mysqlHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.User == "" || cfg.Password == "" || cfg.DBName == "" || cfg.CloudSQLInstanceConnectionName == "" {
		return nil, fmt.Errorf("missing required CloudSQL connection parameter (user, pass, db, instance)")
	}
	instanceConnectionName := cfg.CloudSQLInstanceConnectionName

	d, err := cloudsqlconn.NewDialer(context.Background())
	if err != nil {
		return nil, fmt.Errorf("cloudsqlconn.NewDialer: %w", err)
	}

	var opts []cloudsqlconn.DialOption
	if cfg.UsePrivateIP {
		opts = append(opts, cloudsqlconn.WithPrivateIP())
	}

	network := fmt.Sprintf("cloudsql-%s", instanceConnectionName)

	mysql.RegisterDialContext(network,
		func(ctx context.Context, addr string) (net.Conn, error) {
			conn, dialErr := d.Dial(ctx, instanceConnectionName, opts...)
			if dialErr != nil {
				zap.L().Error("Cloud SQL dial failed", zap.String("instance", instanceConnectionName), zap.Error(dialErr))
			}
			return conn, dialErr
		})

	mysqlCfg := mysql.Config{
		User:                 cfg.User,
		Passwd:               cfg.Password,
		Net:                  network,
		Addr:                 instanceConnectionName,
		DBName:               cfg.DBName,
		AllowNativePasswords: true,
		ParseTime:            true,
	}

	dbPool, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		mysql.DeregisterDialContext(network)
		d.Close()
		return nil, fmt.Errorf("sql.Open failed for CloudSQL MySQL: %w", err)
	}
	return dbPool, nil
}

func (h mysqlHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	dbPool, err := sql.Open("mysql", standardDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("sql.Open (standard mysql): %w", err)
	}
	return dbPool, nil
}

func standardDSN(cfg config.DatabaseConfig) string {
	mysqlCfg := mysql.Config{
		User:                 cfg.User,
		Passwd:               cfg.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DBName:               cfg.DBName,
		AllowNativePasswords: true,
		ParseTime:            true,
	}
	return mysqlCfg.FormatDSN()
}

func (h mysqlHandler) QuoteIdentifier(name string) string {
	name = strings.ReplaceAll(name, "`", "``")
	return fmt.Sprintf("`%s`", name)
}

func (h mysqlHandler) Placeholder(n int) string {
	return "?"
}

// LikeCondition doubles the backslash in the ESCAPE literal since MySQL string literals
// treat a backslash as an escape.
func (h mysqlHandler) LikeCondition(column, placeholder string) string {
	return fmt.Sprintf(`LOWER(CAST(%s AS CHAR)) LIKE LOWER(%s) ESCAPE '\\'`, column, placeholder)
}

func (h mysqlHandler) NumericExpr(column string) string {
	return fmt.Sprintf("CASE WHEN CAST(%[1]s AS CHAR) REGEXP '%[2]s' THEN CAST(TRIM(CAST(%[1]s AS CHAR)) AS DOUBLE) END",
		column, query.NumberPattern)
}

// TextExpr compares binary strings, which neither fold case nor pad trailing spaces the
// way the default collations do.
func (h mysqlHandler) TextExpr(column string) string {
	return fmt.Sprintf("CAST(%s AS BINARY)", column)
}

func (h mysqlHandler) Limit(placeholder string) (string, string) {
	return "", "LIMIT " + placeholder
}

func (h mysqlHandler) ListTables(ctx context.Context, db *database.DB) ([]schema.TableInfo, error) {
	query := `
		  SELECT TABLE_NAME, TABLE_COMMENT
		  FROM information_schema.TABLES
		  WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_TYPE = 'BASE TABLE'
		  ORDER BY TABLE_NAME;`
	return database.QueryTables(ctx, db, query)
}

func (h mysqlHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]schema.ColumnInfo, error) {
	query := `
		  SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_COMMENT
		  FROM information_schema.COLUMNS
		  WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_NAME = ?
		  ORDER BY ORDINAL_POSITION;`
	return database.QueryColumns(ctx, db, tableName, query, tableName)
}

func init() {
	database.RegisterDialectHandler("mysql", mysqlHandler{})
	database.RegisterDialectHandler("cloudsqlmysql", mysqlHandler{})
}
