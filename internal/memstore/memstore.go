// Package memstore is an in-memory tabular store backed by a static schema registry.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

// Store keeps rows per table. It is safe for concurrent use; Select never mutates stored rows.
type Store struct {
	*schema.Registry

	mu   sync.RWMutex
	rows map[string][]query.Row
}

var _ query.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		Registry: schema.NewRegistry(),
		rows:     make(map[string][]query.Row),
	}
}

// AddTable registers a table, its columns and its rows. Select waits until all three are
// in place, so a table that is already listed always has rows to read.
func (s *Store) AddTable(table schema.TableInfo, columns []schema.ColumnInfo, rows []query.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Registry.Register(table, columns)
	s.rows[table.Name] = append([]query.Row(nil), rows...)
}

// Select evaluates plan over the stored rows of plan.Table.
func (s *Store) Select(ctx context.Context, plan *query.Plan) (*query.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	rows, ok := s.rows[plan.Table]
	s.mu.RUnlock()
	if !ok {
		return nil, &query.ErrUnknownTable{Table: plan.Table}
	}

	matched := query.Apply(rows, plan)
	out := make([]query.Row, len(matched))
	for i, r := range matched {
		cp := make(query.Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return &query.Result{Columns: plan.ColumnNames(), Rows: out}, nil
}

// String implements fmt.Stringer for log output.
func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("memstore(%d tables)", len(s.rows))
}
