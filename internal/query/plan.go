package query

import (
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

// Condition is a WhereClause resolved against the target table. Known is false when the
// column does not exist in the table; such a condition never matches.
type Condition struct {
	Column   string
	Operator Operator
	Value    Value
	Known    bool
}

// Plan is a Query validated against the catalog, ready for a Store to execute.
type Plan struct {
	Table      string
	Columns    []schema.ColumnInfo
	Conditions []Condition
	Limit      int
	OrderBy    string
	Direction  Direction
}

// Resolve binds q to the columns of its table. An OrderBy naming a column that is not in
// columns is cleared instead of being executed.
func Resolve(q Query, columns []schema.ColumnInfo) *Plan {
	byName := make(map[string]schema.ColumnInfo, len(columns))
	for _, c := range columns {
		byName[c.Name] = c
	}

	p := &Plan{
		Table:      q.Table,
		Columns:    columns,
		Conditions: make([]Condition, 0, len(q.Where)),
		Limit:      q.Limit,
		Direction:  q.OrderDirection,
	}
	if p.Direction == "" {
		p.Direction = Asc
	}
	if _, ok := byName[q.OrderBy]; ok {
		p.OrderBy = q.OrderBy
	}

	for _, w := range q.Where {
		col, known := byName[w.Column]
		kind := KindText
		if known {
			kind = KindForType(col.DataType)
		}
		p.Conditions = append(p.Conditions, Condition{
			Column:   w.Column,
			Operator: w.Operator,
			Value:    NewValue(w.Value, kind),
			Known:    known,
		})
	}
	return p
}

// ColumnNames returns the plan's column names in catalog order.
func (p *Plan) ColumnNames() []string {
	return schema.ColumnNames(p.Columns)
}

// CheckColumns returns ErrUnknownColumn for the first clause whose column is not in columns.
func CheckColumns(table string, where []WhereClause, columns []schema.ColumnInfo) error {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c.Name] = true
	}
	for _, w := range where {
		if !known[w.Column] {
			return &ErrUnknownColumn{Table: table, Column: w.Column}
		}
	}
	return nil
}
