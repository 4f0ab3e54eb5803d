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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatCSV:
		return nil
	}
	return &query.ErrInvalidInput{Msg: fmt.Sprintf("unsupported output format %q (only table, json, csv are supported)", format)}
}

func renderResult(w io.Writer, res *query.Result, format string) error {
	if format == formatJSON {
		return renderJSON(w, res.Rows)
	}
	if format == formatTable && len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(w)
	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, r := range res.Rows {
		row := make(table.Row, len(res.Columns))
		for i, col := range res.Columns {
			row[i] = formatCell(r[col])
		}
		t.AppendRow(row)
	}

	if format == formatCSV {
		t.RenderCSV()
		return nil
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	return nil
}

func renderTables(w io.Writer, tables []schema.TableInfo, format string) error {
	if format == formatJSON {
		return renderJSON(w, tables)
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"name", "description"})
	for _, tbl := range tables {
		t.AppendRow(table.Row{tbl.Name, tbl.Description})
	}
	return finish(t, format)
}

func renderColumns(w io.Writer, columns []schema.ColumnInfo, format string) error {
	if format == formatJSON {
		return renderJSON(w, columns)
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"name", "type", "nullable", "default", "description"})
	for _, c := range columns {
		def := "NULL"
		if c.DefaultValue != nil {
			def = *c.DefaultValue
		}
		t.AppendRow(table.Row{c.Name, c.DataType, c.Nullable, def, c.Description})
	}
	return finish(t, format)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func finish(t table.Writer, format string) error {
	if format == formatCSV {
		t.RenderCSV()
	} else {
		t.Render()
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

// writeOutput runs render against path, or against w when path is empty.
func writeOutput(w io.Writer, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(w)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Results written to: %s\n", path)
	return nil
}
