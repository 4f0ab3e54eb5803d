package schema

import (
	"context"
	"sync"
)

// Registry is a static Provider populated in code.
type Registry struct {
	mu      sync.RWMutex
	tables  []TableInfo
	columns map[string][]ColumnInfo
}

var _ Provider = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{columns: make(map[string][]ColumnInfo)}
}

// Register adds a table and its columns, replacing any previous registration of the same name.
func (r *Registry) Register(table TableInfo, columns []ColumnInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.columns[table.Name]; exists {
		for i := range r.tables {
			if r.tables[i].Name == table.Name {
				r.tables[i] = table
			}
		}
	} else {
		r.tables = append(r.tables, table)
	}
	r.columns[table.Name] = append([]ColumnInfo(nil), columns...)
}

func (r *Registry) ListTables(ctx context.Context) ([]TableInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]TableInfo(nil), r.tables...), nil
}

func (r *Registry) ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cols, ok := r.columns[tableName]
	if !ok {
		return []ColumnInfo{}, nil
	}
	return append([]ColumnInfo(nil), cols...), nil
}
