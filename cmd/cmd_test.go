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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

func sampleResult() *query.Result {
	return &query.Result{
		Columns: []string{"product_id", "product_name", "price"},
		Rows: []query.Row{
			{"product_id": 101, "product_name": "Laptop Pro", "price": 1200.0},
			{"product_id": 105, "product_name": "Gift Card", "price": nil},
		},
	}
}

func TestRenderResult(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, sampleResult(), formatTable))
		out := buf.String()
		assert.Contains(t, out, "product_name")
		assert.Contains(t, out, "Laptop Pro")
		assert.Contains(t, out, "NULL")
		assert.True(t, strings.HasSuffix(out, "(2 rows)\n"))
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, &query.Result{Columns: []string{"id"}}, formatTable))
		assert.Equal(t, "(0 rows)\n", buf.String())
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, sampleResult(), formatCSV))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "product_id,product_name,price", lines[0])
		assert.Equal(t, "101,Laptop Pro,1200", lines[1])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, sampleResult(), formatJSON))
		var rows []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "Laptop Pro", rows[0]["product_name"])
		assert.Nil(t, rows[1]["price"])
	})
}

func TestRenderColumns(t *testing.T) {
	def := "0"
	var buf bytes.Buffer
	require.NoError(t, renderColumns(&buf, []schema.ColumnInfo{
		{Name: "stock_quantity", DataType: "INT", Nullable: false, DefaultValue: &def},
		{Name: "note", DataType: "TEXT", Nullable: true},
	}, formatCSV))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "stock_quantity,INT,false,0,", lines[1])
	assert.Equal(t, "note,TEXT,true,NULL,", lines[2])
}

func TestCheckFormat(t *testing.T) {
	for _, f := range []string{formatTable, formatJSON, formatCSV} {
		assert.NoError(t, checkFormat(f))
	}
	var invalid *query.ErrInvalidInput
	assert.ErrorAs(t, checkFormat("xml"), &invalid)
}

func TestQueryCommand(t *testing.T) {
	t.Setenv("DBQA_STORE", "memory")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"query", "--table", "products", "--where", "price > 100",
		"--order-by", "price", "--order-dir", "desc", "--format", "json",
	})
	require.NoError(t, rootCmd.Execute())

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Laptop Pro", rows[0]["product_name"])
	assert.Equal(t, "4K Monitor", rows[1]["product_name"])
}
