package query

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in      string
		want    Operator
		wantErr bool
	}{
		{"=", OpEqual, false},
		{"!=", OpNotEqual, false},
		{" >= ", OpGreaterOrEqual, false},
		{"<=", OpLessOrEqual, false},
		{"<", OpLessThan, false},
		{">", OpGreaterThan, false},
		{"LIKE", OpLike, false},
		{"like", OpLike, false},
		{"<>", "", true},
		{"ILIKE", "", true},
		{"IN", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOperator(tt.in)
			if tt.wantErr {
				var invalid *ErrInvalidInput
				require.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperatorVocabulary(t *testing.T) {
	assert.Len(t, Operators, 7)
	for _, op := range Operators {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, Operator("like").Valid())
	assert.True(t, OpLessThan.IsInequality())
	assert.False(t, OpLike.IsInequality())
	assert.False(t, OpNotEqual.IsInequality())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Asc, d)

	d, err = ParseDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestWhereClause_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    WhereClause
		wantErr bool
	}{
		{"string value", `{"column":"name","operator":"LIKE","value":"ali"}`, WhereClause{"name", OpLike, "ali"}, false},
		{"integer value", `{"column":"stock_quantity","operator":"<","value":100}`, WhereClause{"stock_quantity", OpLessThan, "100"}, false},
		{"decimal value", `{"column":"price","operator":">=","value":25.5}`, WhereClause{"price", OpGreaterOrEqual, "25.5"}, false},
		{"null value", `{"column":"price","operator":"=","value":null}`, WhereClause{"price", OpEqual, ""}, false},
		{"boolean value", `{"column":"active","operator":"=","value":true}`, WhereClause{}, true},
		{"object value", `{"column":"a","operator":"=","value":{}}`, WhereClause{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got WhereClause
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Query
		wantLimit int
		wantDir   Direction
	}{
		{"unset limit takes default", Query{Table: "users"}, 100, Asc},
		{"negative limit coerced to one", Query{Table: "users", Limit: -5}, 1, Asc},
		{"explicit limit kept", Query{Table: "users", Limit: 5000, OrderDirection: "DESC"}, 5000, Desc},
		{"invalid direction left for validate", Query{Table: "users", OrderDirection: "up"}, 100, "up"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize(DefaultLimit)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantDir, got.OrderDirection)
		})
	}

	assert.Equal(t, 25, Query{Table: "users"}.Normalize(25).Limit)
	assert.Equal(t, DefaultLimit, Query{Table: "users"}.Normalize(0).Limit)
}

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{"valid", Query{Table: "users", Limit: 10, OrderDirection: Asc, Where: []WhereClause{{"name", OpLike, "a"}}}, false},
		{"missing table", Query{Limit: 10}, true},
		{"zero limit", Query{Table: "users"}, true},
		{"bad direction", Query{Table: "users", Limit: 1, OrderDirection: "up"}, true},
		{"missing column", Query{Table: "users", Limit: 1, Where: []WhereClause{{" ", OpEqual, "a"}}}, true},
		{"bad operator", Query{Table: "users", Limit: 1, Where: []WhereClause{{"id", "IN", "1,2"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				var invalid *ErrInvalidInput
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuery_Display(t *testing.T) {
	quote := func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
	g := goldie.New(t)

	g.Assert(t, "display_order_limit", []byte(Query{
		Table:          "products",
		Where:          []WhereClause{{"stock_quantity", OpLessThan, "100"}},
		Limit:          2,
		OrderBy:        "price",
		OrderDirection: Desc,
	}.Display(quote)))

	g.Assert(t, "display_like_escape", []byte(Query{
		Table: "users",
		Where: []WhereClause{{"name", OpLike, "ali"}, {"email", OpNotEqual, "o'brien@example.com"}},
		Limit: 100,
	}.Display(quote)))

	g.Assert(t, "display_bare", []byte(Query{Table: "orders"}.Display(nil)))
}

func TestKindForType(t *testing.T) {
	tests := map[string]Kind{
		"INT":              KindNumeric,
		"int(11) unsigned": KindNumeric,
		"DECIMAL(10,2)":    KindNumeric,
		"double precision": KindNumeric,
		"bigint":           KindNumeric,
		"numeric":          KindNumeric,
		"VARCHAR":          KindText,
		"varchar(255)":     KindText,
		"DATE":             KindText,
		"text":             KindText,
		"":                 KindText,
	}
	for in, want := range tests {
		assert.Equal(t, want, KindForType(in), in)
	}
}

func TestNewValue(t *testing.T) {
	v := NewValue(" 42.5 ", KindNumeric)
	assert.True(t, v.IsNumber)
	assert.Equal(t, 42.5, v.Number)
	assert.Equal(t, 42.5, v.Bind())

	v = NewValue("42", KindText)
	assert.True(t, v.IsNumber)
	assert.Equal(t, "42", v.Bind())

	v = NewValue("NaN", KindNumeric)
	assert.False(t, v.IsNumber)
	assert.Equal(t, "NaN", v.Bind())

	v = NewValue("abc", KindNumeric)
	assert.False(t, v.IsNumber)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" -3.5 ", -3.5, true},
		{"+.5", 0.5, true},
		{"7.", 7, true},
		{"1e3", 1000, true},
		{"2.5E-1", 0.25, true},
		{"", 0, false},
		{"abc", 0, false},
		{"2023-01-15", 0, false},
		{"Inf", 0, false},
		{"infinity", 0, false},
		{"NaN", 0, false},
		{"0x1p4", 0, false},
		{"1_000", 0, false},
		{"1e400", 0, false},
		{"\u00a012", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
