package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register(TableInfo{Name: "users", Description: "Stores user information"}, []ColumnInfo{
		{Name: "id", DataType: "INT", Description: "Unique identifier for the user"},
		{Name: "name", DataType: "VARCHAR"},
	})
	r.Register(TableInfo{Name: "orders"}, []ColumnInfo{
		{Name: "order_id", DataType: "INT", Description: "Unique identifier for the order"},
	})
	return r
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry()

	tables, err := r.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, TableNames(tables))

	cols, err := r.ListColumns(ctx, "users")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "name", cols[1].Name)

	t.Run("unknown table yields empty columns", func(t *testing.T) {
		cols, err := r.ListColumns(ctx, "missing")
		require.NoError(t, err)
		assert.NotNil(t, cols)
		assert.Empty(t, cols)
	})

	t.Run("re-register replaces in place", func(t *testing.T) {
		r.Register(TableInfo{Name: "users", Description: "People"}, []ColumnInfo{{Name: "id", DataType: "INT"}})
		tables, err := r.ListTables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"users", "orders"}, TableNames(tables))
		assert.Equal(t, "People", tables[0].Description)
		cols, err := r.ListColumns(ctx, "users")
		require.NoError(t, err)
		assert.Len(t, cols, 1)
	})
}

func TestCapture(t *testing.T) {
	snap, err := Capture(context.Background(), newTestRegistry())
	require.NoError(t, err)

	assert.True(t, snap.HasTable("users"))
	assert.False(t, snap.HasTable("products"))
	assert.Equal(t, []string{"users", "orders"}, snap.TableNames())
	assert.Equal(t, "users, orders", JoinTableNames(snap.Tables))

	assert.Equal(t, map[string]string{
		"users.id":        "INT - Unique identifier for the user",
		"users.name":      "VARCHAR",
		"orders.order_id": "INT - Unique identifier for the order",
	}, snap.ColumnDescriptions())

	want := "- users (Stores user information)\n" +
		"  users.id: INT - Unique identifier for the user\n" +
		"  users.name: VARCHAR\n" +
		"- orders\n" +
		"  orders.order_id: INT - Unique identifier for the order\n"
	assert.Equal(t, want, snap.Describe())
}

type failingProvider struct{ tablesErr, columnsErr error }

func (f failingProvider) ListTables(ctx context.Context) ([]TableInfo, error) {
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	return []TableInfo{{Name: "t"}}, nil
}

func (f failingProvider) ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	return nil, f.columnsErr
}

func TestCapture_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Capture(context.Background(), failingProvider{tablesErr: boom})
	assert.ErrorIs(t, err, boom)

	_, err = Capture(context.Background(), failingProvider{columnsErr: boom})
	assert.ErrorIs(t, err, boom)
}
