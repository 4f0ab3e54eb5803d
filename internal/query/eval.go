package query

import (
	"cmp"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Row maps column names to values.
type Row map[string]any

// Apply evaluates p over rows: filter, then stable sort, then truncate to the limit.
// Rows tied on the order column are ordered by the first catalog column ascending.
// rows is not modified.
func Apply(rows []Row, p *Plan) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if p.Matches(r) {
			out = append(out, r)
		}
	}

	if p.OrderBy != "" && len(out) > 0 {
		if _, ok := out[0][p.OrderBy]; ok {
			col, desc := p.OrderBy, p.Direction == Desc
			var tie string
			if len(p.Columns) > 0 && p.Columns[0].Name != col {
				tie = p.Columns[0].Name
			}
			sort.SliceStable(out, func(i, j int) bool {
				c := compareValues(out[i][col], out[j][col])
				if desc {
					c = -c
				}
				if c == 0 && tie != "" {
					c = compareValues(out[i][tie], out[j][tie])
				}
				return c < 0
			})
		}
	}

	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}

// Matches reports whether row satisfies every condition of p.
func (p *Plan) Matches(row Row) bool {
	for _, c := range p.Conditions {
		if !c.Matches(row) {
			return false
		}
	}
	return true
}

// Matches evaluates c against row. Unknown columns, columns missing from the row and NULL
// values never match.
func (c Condition) Matches(row Row) bool {
	if !c.Known {
		return false
	}
	v, ok := row[c.Column]
	if !ok || v == nil {
		return false
	}

	switch c.Operator {
	case OpLike:
		return strings.Contains(strings.ToLower(formatValue(v)), strings.ToLower(c.Value.Raw))
	case OpEqual:
		return valuesEqual(v, c.Value)
	case OpNotEqual:
		return !valuesEqual(v, c.Value)
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		n, ok := toNumber(v)
		if !ok || !c.Value.IsNumber {
			return false
		}
		switch c.Operator {
		case OpGreaterThan:
			return n > c.Value.Number
		case OpLessThan:
			return n < c.Value.Number
		case OpGreaterOrEqual:
			return n >= c.Value.Number
		default:
			return n <= c.Value.Number
		}
	}
	return false
}

func valuesEqual(v any, val Value) bool {
	if val.Kind == KindNumeric && val.IsNumber {
		if n, ok := toNumber(v); ok {
			return n == val.Number
		}
	}
	return formatValue(v) == val.Raw
}

// formatValue returns the string form used by equality and LIKE comparisons.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return ParseNumber(t)
	case []byte:
		return ParseNumber(string(t))
	}
	return 0, false
}

func isNative(v any) bool {
	switch v.(type) {
	case string, []byte, json.Number, nil, bool, time.Time:
		return false
	}
	_, ok := toNumber(v)
	return ok
}

// compareValues orders values natively: numbers numerically, times chronologically,
// everything else by string form. Numbers sort before strings and NULLs sort last.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	aNum, bNum := isNative(a), isNative(b)
	switch {
	case aNum && bNum:
		x, _ := toNumber(a)
		y, _ := toNumber(b)
		return cmp.Compare(x, y)
	case aNum:
		return -1
	case bNum:
		return 1
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(formatValue(a), formatValue(b))
}
