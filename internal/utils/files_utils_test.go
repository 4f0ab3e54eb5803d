package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
)

func TestReadContextFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "pricing.md")
	b := filepath.Join(dir, "users.md")
	require.NoError(t, os.WriteFile(a, []byte("Prices are in USD."), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("Users are customers."), 0o600))

	got, err := ReadContextFiles(a + ", " + b)
	require.NoError(t, err)
	assert.Equal(t, "\n-- Context from file: pricing.md --\nPrices are in USD.\n-- Context from file: users.md --\nUsers are customers.", got)

	got, err = ReadContextFiles("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadContextFiles(filepath.Join(dir, "missing.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseWhereFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    query.WhereClause
		wantErr bool
	}{
		{in: "price > 100", want: query.WhereClause{Column: "price", Operator: query.OpGreaterThan, Value: "100"}},
		{in: "  id=1", wantErr: true},
		{in: "name LIKE smith", want: query.WhereClause{Column: "name", Operator: query.OpLike, Value: "smith"}},
		{in: "name like 'Alice Smith'", want: query.WhereClause{Column: "name", Operator: query.OpLike, Value: "Alice Smith"}},
		{in: `product_name != "4K  Monitor"`, want: query.WhereClause{Column: "product_name", Operator: query.OpNotEqual, Value: "4K  Monitor"}},
		{in: "signup_date >= 2023-02-01", want: query.WhereClause{Column: "signup_date", Operator: query.OpGreaterOrEqual, Value: "2023-02-01"}},
		{in: "price IN 1", wantErr: true},
		{in: "price >", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWhereFlag(tt.in)
			if tt.wantErr {
				var invalid *query.ErrInvalidInput
				assert.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetDefaultOutputFilePath(t *testing.T) {
	assert.Equal(t, "users_results.json", GetDefaultOutputFilePath("users", "json"))
	assert.Equal(t, "users_results.csv", GetDefaultOutputFilePath("users", "csv"))
	assert.Equal(t, "users_results.csv", GetDefaultOutputFilePath("users", "table"))
}
