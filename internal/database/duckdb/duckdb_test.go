package duckdb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/database"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "", dsn(""))
	assert.Equal(t, "", dsn(":memory:"))
	assert.Equal(t, "/data/shop.duckdb?access_mode=read_only", dsn("/data/shop.duckdb"))
}

func TestDuckDBHandler_Registered(t *testing.T) {
	h, err := database.GetDialectHandler("duckdb")
	require.NoError(t, err)
	assert.IsType(t, duckdbHandler{}, h)

	_, err = h.CreateCloudSQLPool(config.DatabaseConfig{})
	assert.Error(t, err)
}

func TestDuckDBHandler_BuildSelect(t *testing.T) {
	cols := []schema.ColumnInfo{
		{Name: "name", DataType: "VARCHAR"},
		{Name: "price", DataType: "DECIMAL(10,2)"},
	}
	plan := query.Resolve(query.Query{
		Table: "products",
		Where: []query.WhereClause{
			{Column: "name", Operator: query.OpLike, Value: "50%"},
			{Column: "price", Operator: query.OpLessThan, Value: "100"},
		},
		Limit: 5,
	}, cols)

	stmt, args, err := database.BuildSelect(duckdbHandler{}, plan)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "name", "price" FROM "products" WHERE CAST("name" AS VARCHAR) ILIKE $1 ESCAPE '\' AND "price" < $2 LIMIT $3`, stmt)
	assert.Equal(t, []any{`%50\%%`, 100.0, 5}, args)
}

func TestDuckDBHandler_TextColumns(t *testing.T) {
	cols := []schema.ColumnInfo{
		{Name: "name", DataType: "VARCHAR"},
		{Name: "price", DataType: "DECIMAL(10,2)"},
	}
	plan := query.Resolve(query.Query{
		Table:   "products",
		Where:   []query.WhereClause{{Column: "name", Operator: query.OpGreaterOrEqual, Value: "1e2"}},
		Limit:   5,
		OrderBy: "price",
	}, cols)

	stmt, args, err := database.BuildSelect(duckdbHandler{}, plan)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "name", "price" FROM "products" WHERE CASE WHEN regexp_matches(CAST("name" AS VARCHAR), '`+query.NumberPattern+
		`') THEN TRY_CAST(trim(CAST("name" AS VARCHAR)) AS DOUBLE) END >= $1`+
		` ORDER BY CASE WHEN "price" IS NULL THEN 1 ELSE 0 END ASC, "price" ASC,`+
		` CASE WHEN "name" IS NULL THEN 1 ELSE 0 END ASC, CAST("name" AS VARCHAR) ASC LIMIT $2`, stmt)
	assert.Equal(t, []any{100.0, 5}, args)
}

func TestDuckDBHandler_ListColumns(t *testing.T) {
	pool, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := database.NewWithPool(pool, duckdbHandler{}, config.DatabaseConfig{Dialect: "duckdb", PoolSize: 1}, nil)
	defer db.Close()

	mock.ExpectQuery(`FROM duckdb_columns\(\)`).
		WithArgs("products").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "nullable", "column_default", "comment"}).
			AddRow("product_id", "INTEGER", "NO", nil, "Unique identifier").
			AddRow("price", "DECIMAL(10,2)", "YES", "0", nil))

	cols, err := db.ListColumns(context.Background(), "products")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "product_id", cols[0].Name)
	assert.False(t, cols[0].Nullable)
	assert.Equal(t, "Unique identifier", cols[0].Description)
	assert.True(t, cols[1].Nullable)
	require.NotNil(t, cols[1].DefaultValue)
	assert.Equal(t, "0", *cols[1].DefaultValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
