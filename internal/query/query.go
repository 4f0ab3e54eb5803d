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

// Package query holds the structured query model shared by the manual builder and the
// natural-language pipeline, and the executor that runs it against a tabular store.
package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultLimit is the row limit applied when a query does not specify one.
const DefaultLimit = 100

// Operator is a WHERE comparison operator.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpGreaterThan    Operator = ">"
	OpLessThan       Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpLike           Operator = "LIKE"
)

// Operators is the complete operator vocabulary, in display order.
var Operators = []Operator{OpEqual, OpNotEqual, OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual, OpLike}

// ParseOperator returns the Operator spelled by s. LIKE is matched case-insensitively.
func ParseOperator(s string) (Operator, error) {
	trimmed := strings.TrimSpace(s)
	for _, op := range Operators {
		if trimmed == string(op) || (op == OpLike && strings.EqualFold(trimmed, string(op))) {
			return op, nil
		}
	}
	return "", &ErrInvalidInput{Msg: fmt.Sprintf("unsupported operator %q", s)}
}

// Valid reports whether o is part of the operator vocabulary.
func (o Operator) Valid() bool {
	for _, op := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// IsInequality reports whether o compares operands numerically.
func (o Operator) IsInequality() bool {
	switch o {
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		return true
	}
	return false
}

// Direction is the sort order applied to OrderBy.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" in any case; the empty string means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	}
	return "", &ErrInvalidInput{Msg: fmt.Sprintf("unsupported order direction %q", s)}
}

// WhereClause is a single condition of a conjunctive WHERE clause. Value is always carried
// as text.
type WhereClause struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// UnmarshalJSON accepts the value as either a JSON string or a JSON number.
func (w *WhereClause) UnmarshalJSON(data []byte) error {
	var aux struct {
		Column   string          `json:"column"`
		Operator Operator        `json:"operator"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	value, err := DecodeValue(aux.Value)
	if err != nil {
		return err
	}
	w.Column = aux.Column
	w.Operator = aux.Operator
	w.Value = value
	return nil
}

// DecodeValue converts a JSON string or number to the text carried by WhereClause.Value.
// A missing or null value decodes to "".
func DecodeValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("where clause value must be a string or a number: %w", err)
	}
	return n.String(), nil
}

// Query is a single-table SELECT with a conjunctive WHERE clause, optional ordering and a
// row limit.
type Query struct {
	Table          string        `json:"tableName"`
	Where          []WhereClause `json:"whereClauses"`
	Limit          int           `json:"limit"`
	OrderBy        string        `json:"orderByColumn,omitempty"`
	OrderDirection Direction     `json:"orderDirection,omitempty"`
}

// Normalize applies the default limit when none is set, raises a negative limit to 1 and
// defaults the direction to ascending. Unrecognised directions are left for Validate.
func (q Query) Normalize(defaultLimit int) Query {
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	switch {
	case q.Limit == 0:
		q.Limit = defaultLimit
	case q.Limit < 0:
		q.Limit = 1
	}
	if d, err := ParseDirection(string(q.OrderDirection)); err == nil {
		q.OrderDirection = d
	}
	q.Table = strings.TrimSpace(q.Table)
	q.OrderBy = strings.TrimSpace(q.OrderBy)
	return q
}

// Validate checks the shape of q without consulting a catalog.
func (q Query) Validate() error {
	if q.Table == "" {
		return &ErrInvalidInput{Msg: "table name is required"}
	}
	if q.Limit < 1 {
		return &ErrInvalidInput{Msg: fmt.Sprintf("limit must be at least 1, got %d", q.Limit)}
	}
	if _, err := ParseDirection(string(q.OrderDirection)); err != nil {
		return err
	}
	for i, w := range q.Where {
		if strings.TrimSpace(w.Column) == "" {
			return &ErrInvalidInput{Msg: fmt.Sprintf("where clause #%d has no column", i+1)}
		}
		if !w.Operator.Valid() {
			return &ErrInvalidInput{Msg: fmt.Sprintf("where clause #%d has unsupported operator %q", i+1, w.Operator)}
		}
	}
	return nil
}

// Display renders q as SQL text for people to read. It is never executed: values are inlined
// as literals and identifiers are passed through quote.
func (q Query) Display(quote func(string) string) string {
	if quote == nil {
		quote = func(s string) string { return s }
	}
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(quote(q.Table))
	for i, w := range q.Where {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(quote(w.Column))
		b.WriteString(" ")
		b.WriteString(string(w.Operator))
		b.WriteString(" ")
		if w.Operator == OpLike {
			b.WriteString(displayLiteral("%" + w.Value + "%"))
		} else {
			b.WriteString(displayLiteral(w.Value))
		}
	}
	if q.OrderBy != "" {
		dir := q.OrderDirection
		if dir == "" {
			dir = Asc
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", quote(q.OrderBy), strings.ToUpper(string(dir)))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String()
}

func displayLiteral(v string) string {
	if NewValue(v, KindNumeric).IsNumber {
		return strings.TrimSpace(v)
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
