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
package database

import (
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
)

// matchNothing stands in for a condition that can never hold, such as a comparison on a
// column the table does not have.
const matchNothing = "1 = 0"

// BuildSelect renders plan as a parameterised statement for h. Identifiers are limited to
// the plan's table and catalog columns; every value, including the limit, is bound.
func BuildSelect(h DialectHandler, plan *query.Plan) (string, []any, error) {
	if plan == nil || plan.Table == "" {
		return "", nil, &query.ErrInvalidInput{Msg: "table name is required"}
	}
	if plan.Limit < 1 {
		return "", nil, &query.ErrInvalidInput{Msg: fmt.Sprintf("limit must be at least 1, got %d", plan.Limit)}
	}

	kinds := make(map[string]query.Kind, len(plan.Columns))
	for _, c := range plan.Columns {
		kinds[c.Name] = query.KindForType(c.DataType)
	}

	var (
		args  []any
		where []string
	)
	bind := func(v any) string {
		args = append(args, v)
		return h.Placeholder(len(args))
	}

	for _, c := range plan.Conditions {
		if _, ok := kinds[c.Column]; !ok || !c.Known {
			where = append(where, matchNothing)
			continue
		}
		col := h.QuoteIdentifier(c.Column)
		where = append(where, condition(h, col, c, bind))
	}

	var order string
	if kind, ok := kinds[plan.OrderBy]; ok && plan.OrderBy != "" {
		dir := "ASC"
		if plan.Direction == query.Desc {
			dir = "DESC"
		}
		keys := []string{orderKey(h, plan.OrderBy, kind, dir)}
		// Ties fall back to the first catalog column ascending, as query.Apply does.
		if first := plan.Columns[0]; first.Name != plan.OrderBy {
			keys = append(keys, orderKey(h, first.Name, kinds[first.Name], "ASC"))
		}
		order = " ORDER BY " + strings.Join(keys, ", ")
	}

	head, tail := h.Limit(bind(plan.Limit))

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if head != "" {
		sb.WriteString(head)
		sb.WriteString(" ")
	}
	if len(plan.Columns) == 0 {
		sb.WriteString("*")
	} else {
		quoted := make([]string, len(plan.Columns))
		for i, c := range plan.Columns {
			quoted[i] = h.QuoteIdentifier(c.Name)
		}
		sb.WriteString(strings.Join(quoted, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(h.QuoteIdentifier(plan.Table))
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(order)
	if tail != "" {
		sb.WriteString(" ")
		sb.WriteString(tail)
	}
	return sb.String(), args, nil
}

// orderKey sorts name in dir with NULLs after every value ascending and before them
// descending. Text columns sort byte-wise.
func orderKey(h DialectHandler, name string, kind query.Kind, dir string) string {
	col := h.QuoteIdentifier(name)
	expr := col
	if kind == query.KindText {
		expr = h.TextExpr(col)
	}
	return fmt.Sprintf("CASE WHEN %s IS NULL THEN 1 ELSE 0 END %s, %s %s", col, dir, expr, dir)
}

func condition(h DialectHandler, col string, c query.Condition, bind func(any) string) string {
	switch c.Operator {
	case query.OpLike:
		return h.LikeCondition(col, bind("%"+EscapeLike(c.Value.Raw)+"%"))
	case query.OpEqual, query.OpNotEqual:
		op := "="
		if c.Operator == query.OpNotEqual {
			op = "<>"
		}
		if c.Value.Kind == query.KindText {
			return fmt.Sprintf("%s %s %s", h.TextExpr(col), op, bind(c.Value.Raw))
		}
		if !c.Value.IsNumber {
			// A numeric column never equals a non-numeric value.
			if c.Operator == query.OpEqual {
				return matchNothing
			}
			return col + " IS NOT NULL"
		}
		return fmt.Sprintf("%s %s %s", col, op, bind(c.Value.Number))
	default:
		if !c.Value.IsNumber {
			return matchNothing
		}
		if c.Value.Kind == query.KindText {
			col = h.NumericExpr(col)
		}
		return fmt.Sprintf("%s %s %s", col, c.Operator, bind(c.Value.Number))
	}
}

// EscapeLike escapes the LIKE wildcards in s with a backslash so s matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
