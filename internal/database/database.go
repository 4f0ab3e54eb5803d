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
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/logging"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

var _ query.Store = (*DB)(nil)

// DB holds the database connection pool, the dialect handler and the admission gate that
// bounds concurrent use of the pool.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig

	gate   *gate
	logger *zap.Logger
}

// DialectHandler adapts the store to one SQL engine: how to connect, how to read the
// catalog, and how to spell the parts of a SELECT that differ between engines.
type DialectHandler interface {
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) string
	// Placeholder returns the bind marker for the n-th (1-based) parameter.
	Placeholder(n int) string
	// LikeCondition returns a case-insensitive LIKE of column against a pattern bound at
	// placeholder, using a backslash as the escape character.
	LikeCondition(column, placeholder string) string
	// NumericExpr returns column read as a number: numeric text per query.NumberPattern
	// converts, any other text is NULL.
	NumericExpr(column string) string
	// TextExpr returns column as text that compares and sorts byte-wise, ignoring the
	// column's collation.
	TextExpr(column string) string
	// Limit returns the text placed right after SELECT and at the end of the statement.
	Limit(placeholder string) (head, tail string)
	ListTables(ctx context.Context, db *DB) ([]schema.TableInfo, error)
	ListColumns(ctx context.Context, db *DB, tableName string) ([]schema.ColumnInfo, error)
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := dialectHandlers[dialect]; exists {
		zap.L().Warn("Dialect handler is being overwritten", zap.String("dialect", dialect))
	}
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// New opens a pool for cfg.Dialect and checks it with a ping.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}

	return NewWithPool(pool, handler, cfg, logger), nil
}

// NewWithPool wraps an already opened pool. The pool is capped at cfg.PoolSize open
// connections.
func NewWithPool(pool *sql.DB, handler DialectHandler, cfg config.DatabaseConfig, logger *zap.Logger) *DB {
	if cfg.PoolSize < 1 {
		cfg.PoolSize = config.GetConfig().Database.PoolSize
	}
	pool.SetMaxOpenConns(cfg.PoolSize)
	pool.SetMaxIdleConns(cfg.PoolSize)

	logger = logging.OrNop(logger).With(zap.String("dialect", cfg.Dialect))
	logger.Info("Database pool ready", zap.Int("pool_size", cfg.PoolSize), zap.Int("queue_limit", cfg.QueueLimit))

	return &DB{
		Pool:    pool,
		Handler: handler,
		Config:  cfg,
		gate:    newGate(cfg.PoolSize, cfg.QueueLimit),
		logger:  logger,
	}
}

func (db *DB) GetConfig() config.DatabaseConfig {
	return db.Config
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	return db.Pool.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	db.log().Warn("Attempted to close a nil database connection pool")
	return nil
}

func (db *DB) log() *zap.Logger {
	return logging.OrNop(db.logger)
}

// admit waits for a slot in the gate. The returned release must be called when the
// caller is done with the pool.
func (db *DB) admit(ctx context.Context) (func(), error) {
	if db.gate == nil {
		return func() {}, nil
	}
	if err := db.gate.acquire(ctx); err != nil {
		if errors.Is(err, errQueueFull) {
			db.log().Warn("Rejected query: pool queue is full", zap.Int("queue_limit", db.Config.QueueLimit))
		}
		return nil, &query.ErrExecutionFailed{Msg: "waiting for a database connection", Err: err}
	}
	return db.gate.release, nil
}

func (db *DB) ListTables(ctx context.Context) ([]schema.TableInfo, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	release, err := db.admit(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return db.Handler.ListTables(ctx, db)
}

func (db *DB) ListColumns(ctx context.Context, tableName string) ([]schema.ColumnInfo, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	release, err := db.admit(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return db.Handler.ListColumns(ctx, db, tableName)
}

// Select runs plan as a single parameterised SELECT.
func (db *DB) Select(ctx context.Context, plan *query.Plan) (*query.Result, error) {
	if db.Pool == nil || db.Handler == nil {
		return nil, fmt.Errorf("database is not initialized")
	}
	stmt, args, err := BuildSelect(db.Handler, plan)
	if err != nil {
		return nil, err
	}

	release, err := db.admit(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	db.log().Debug("Executing select", zap.String("sql", stmt), zap.Int("params", len(args)))
	rows, err := db.Pool.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &query.ErrExecutionFailed{Msg: fmt.Sprintf("select from %s", plan.Table), Err: err}
	}
	defer rows.Close()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) (*query.Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading result columns: %w", err)
	}

	res := &query.Result{Columns: columns, Rows: []query.Row{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error scanning result row: %w", err)
		}
		row := make(query.Row, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return res, nil
}

// QueryTables runs a catalog query returning (name, comment) rows.
func QueryTables(ctx context.Context, db *DB, stmt string, args ...any) ([]schema.TableInfo, error) {
	rows, err := db.Pool.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	defer rows.Close()

	tables := []schema.TableInfo{}
	for rows.Next() {
		var (
			t       schema.TableInfo
			comment sql.NullString
		)
		if err := rows.Scan(&t.Name, &comment); err != nil {
			return nil, fmt.Errorf("error scanning table name: %w", err)
		}
		t.Description = strings.TrimSpace(comment.String)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table rows: %w", err)
	}
	return tables, nil
}

// QueryColumns runs a catalog query returning (name, type, is_nullable, default, comment)
// rows. is_nullable is compared case-insensitively against "YES".
func QueryColumns(ctx context.Context, db *DB, tableName string, stmt string, args ...any) ([]schema.ColumnInfo, error) {
	rows, err := db.Pool.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	defer rows.Close()

	columns := []schema.ColumnInfo{}
	for rows.Next() {
		var (
			c            schema.ColumnInfo
			nullable     sql.NullString
			defaultValue sql.NullString
			comment      sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.DataType, &nullable, &defaultValue, &comment); err != nil {
			return nil, fmt.Errorf("error scanning column name and data type: %w", err)
		}
		c.Nullable = strings.EqualFold(nullable.String, "YES")
		if defaultValue.Valid {
			v := defaultValue.String
			c.DefaultValue = &v
		}
		c.Description = strings.TrimSpace(comment.String)
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows for table %s: %w", tableName, err)
	}
	return columns, nil
}
