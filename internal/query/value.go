package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the comparison domain of a condition value, derived from the declared type of the
// column it is compared against.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

var numericTypes = map[string]bool{
	"int": true, "integer": true, "tinyint": true, "smallint": true, "mediumint": true, "bigint": true,
	"int2": true, "int4": true, "int8": true, "hugeint": true, "utinyint": true, "usmallint": true,
	"uinteger": true, "ubigint": true, "serial": true, "smallserial": true, "bigserial": true,
	"decimal": true, "numeric": true, "dec": true, "fixed": true, "number": true,
	"float": true, "float4": true, "float8": true, "double": true, "double precision": true, "real": true,
	"money": true, "smallmoney": true,
}

// KindForType maps a catalog data type such as "DECIMAL(10,2)" or "int unsigned" to a Kind.
func KindForType(dataType string) Kind {
	t := strings.ToLower(strings.TrimSpace(dataType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSpace(strings.TrimSuffix(t, " unsigned"))
	t = strings.TrimSpace(strings.TrimSuffix(t, " zerofill"))
	if numericTypes[t] {
		return KindNumeric
	}
	return KindText
}

// Value is a condition operand resolved once against its column's declared kind.
type Value struct {
	Raw      string
	Kind     Kind
	Number   float64
	IsNumber bool
}

// NumberPattern is the grammar of a number written as text: optional surrounding spaces,
// an optional sign, decimal digits with an optional fraction and exponent. It is valid
// both as RE2 and as a POSIX extended expression and contains no quotes or backslashes,
// so dialects embed it in SQL literals to decide which text cells compare numerically.
const NumberPattern = `^[[:space:]]*[-+]?([0-9]+([.][0-9]*)?|[.][0-9]+)([eE][-+]?[0-9]+)?[[:space:]]*$`

var numberRE = regexp.MustCompile(NumberPattern)

// ParseNumber reports the value of s when it matches NumberPattern and is finite.
func ParseNumber(s string) (float64, bool) {
	if !numberRE.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// NewValue parses raw as a number regardless of kind so inequality operators can always
// compare numerically.
func NewValue(raw string, kind Kind) Value {
	v := Value{Raw: raw, Kind: kind}
	v.Number, v.IsNumber = ParseNumber(raw)
	return v
}

// Bind returns the value to pass as a query parameter: a float64 for a numeric column
// holding a number, the raw text otherwise.
func (v Value) Bind() any {
	if v.Kind == KindNumeric && v.IsNumber {
		return v.Number
	}
	return v.Raw
}
