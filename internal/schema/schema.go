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

// Package schema describes the tables and columns a query can target.
package schema

import (
	"context"
	"fmt"
	"strings"
)

// TableInfo describes a table available for querying.
type TableInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ColumnInfo holds catalog information about a database column.
type ColumnInfo struct {
	Name         string  `json:"name"`
	DataType     string  `json:"type"`
	Description  string  `json:"description"`
	Nullable     bool    `json:"nullable"`
	DefaultValue *string `json:"defaultValue,omitempty"`
}

// Provider supplies table and column metadata.
//
// ListColumns returns an empty slice, not an error, for a table it does not know.
type Provider interface {
	ListTables(ctx context.Context) ([]TableInfo, error)
	ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error)
}

// Snapshot is a point-in-time copy of a provider's catalog. One snapshot is taken per
// request so the tables and columns cannot change while a request is being served.
type Snapshot struct {
	Tables  []TableInfo
	columns map[string][]ColumnInfo
}

// Capture reads every table and its columns from p.
func Capture(ctx context.Context, p Provider) (*Snapshot, error) {
	tables, err := p.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	snap := &Snapshot{
		Tables:  tables,
		columns: make(map[string][]ColumnInfo, len(tables)),
	}
	for _, t := range tables {
		cols, err := p.ListColumns(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to list columns for table %s: %w", t.Name, err)
		}
		snap.columns[t.Name] = cols
	}
	return snap, nil
}

// HasTable reports whether the snapshot contains tableName.
func (s *Snapshot) HasTable(tableName string) bool {
	_, ok := s.columns[tableName]
	return ok
}

// Columns returns the columns of tableName in catalog order.
func (s *Snapshot) Columns(tableName string) []ColumnInfo {
	return s.columns[tableName]
}

// TableNames returns the table names in catalog order.
func (s *Snapshot) TableNames() []string {
	return TableNames(s.Tables)
}

// ColumnDescriptions maps "table.column" to "TYPE - description" for every column in the
// snapshot. The description part is omitted when the catalog has none.
func (s *Snapshot) ColumnDescriptions() map[string]string {
	out := make(map[string]string)
	for _, t := range s.Tables {
		for _, c := range s.columns[t.Name] {
			desc := c.DataType
			if c.Description != "" {
				desc += " - " + c.Description
			}
			out[t.Name+"."+c.Name] = desc
		}
	}
	return out
}

// Describe renders the snapshot as prompt context: one line per table followed by its columns.
func (s *Snapshot) Describe() string {
	var b strings.Builder
	descriptions := s.ColumnDescriptions()
	for _, t := range s.Tables {
		b.WriteString("- ")
		b.WriteString(t.Name)
		if t.Description != "" {
			b.WriteString(" (" + t.Description + ")")
		}
		b.WriteString("\n")
		for _, c := range s.columns[t.Name] {
			fmt.Fprintf(&b, "  %s.%s: %s\n", t.Name, c.Name, descriptions[t.Name+"."+c.Name])
		}
	}
	return b.String()
}

// TableNames extracts the names from tables, preserving order.
func TableNames(tables []TableInfo) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

// ColumnNames extracts the names from columns, preserving order.
func ColumnNames(columns []ColumnInfo) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// JoinTableNames returns the table names joined by ", ".
func JoinTableNames(tables []TableInfo) string {
	return strings.Join(TableNames(tables), ", ")
}
