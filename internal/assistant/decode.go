package assistant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

// errNonConforming marks model output that does not match the expected document shape.
var errNonConforming = errors.New("model output does not conform to the expected shape")

type validationWire struct {
	IsValid             *bool   `json:"isValid"`
	ClarificationNeeded *string `json:"clarificationNeeded"`
}

type clauseWire struct {
	Column   *string         `json:"column"`
	Operator *string         `json:"operator"`
	Value    json.RawMessage `json:"value"`
}

type translationWire struct {
	TableName              *string      `json:"tableName"`
	WhereClauses           []clauseWire `json:"whereClauses"`
	SQLQuery               *string      `json:"sqlQuery"`
	MissingDataExplanation *string      `json:"missingDataExplanation"`
}

// decodeStrict decodes exactly one JSON document into v, rejecting unknown fields and
// trailing data.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errNonConforming, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after document", errNonConforming)
	}
	return nil
}

func nonConforming(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errNonConforming, fmt.Sprintf(format, args...))
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func decodeValidation(data []byte) (*ValidationResult, error) {
	var w validationWire
	if err := decodeStrict(data, &w); err != nil {
		return nil, err
	}
	if w.IsValid == nil {
		return nil, nonConforming("isValid is required")
	}
	res := &ValidationResult{IsValid: *w.IsValid, ClarificationNeeded: text(w.ClarificationNeeded)}
	if res.IsValid && res.ClarificationNeeded != "" {
		return nil, nonConforming("clarificationNeeded must be empty when isValid is true")
	}
	if !res.IsValid && res.ClarificationNeeded == "" {
		return nil, nonConforming("clarificationNeeded is required when isValid is false")
	}
	return res, nil
}

// decodeTranslation decodes and checks a translation against snap. A clause naming a
// column the chosen table lacks yields ErrUnknownColumn; every other violation wraps
// errNonConforming.
func decodeTranslation(data []byte, snap *schema.Snapshot) (*TranslationResult, error) {
	var w translationWire
	if err := decodeStrict(data, &w); err != nil {
		return nil, err
	}
	if w.SQLQuery == nil || text(w.SQLQuery) == "" {
		return nil, nonConforming("sqlQuery is required")
	}

	res := &TranslationResult{
		TableName:              text(w.TableName),
		SQLQuery:               text(w.SQLQuery),
		MissingDataExplanation: text(w.MissingDataExplanation),
	}
	switch {
	case res.TableName != "" && res.MissingDataExplanation != "":
		return nil, nonConforming("tableName and missingDataExplanation are mutually exclusive")
	case res.TableName == "" && res.MissingDataExplanation == "":
		return nil, nonConforming("one of tableName or missingDataExplanation is required")
	case res.MissingDataExplanation != "":
		if len(w.WhereClauses) > 0 {
			return nil, nonConforming("whereClauses must be empty when missingDataExplanation is set")
		}
		return res, nil
	}

	if !snap.HasTable(res.TableName) {
		return nil, nonConforming("table %q is not in the catalog", res.TableName)
	}

	res.WhereClauses = make([]query.WhereClause, 0, len(w.WhereClauses))
	for i, c := range w.WhereClauses {
		col := text(c.Column)
		if col == "" {
			return nil, nonConforming("where clause #%d has no column", i+1)
		}
		op, err := query.ParseOperator(text(c.Operator))
		if err != nil || string(op) != text(c.Operator) {
			return nil, nonConforming("where clause #%d has unsupported operator %q", i+1, text(c.Operator))
		}
		if len(bytes.TrimSpace(c.Value)) == 0 || bytes.Equal(bytes.TrimSpace(c.Value), []byte("null")) {
			return nil, nonConforming("where clause #%d has no value", i+1)
		}
		value, err := query.DecodeValue(c.Value)
		if err != nil {
			return nil, nonConforming("where clause #%d: %v", i+1, err)
		}
		res.WhereClauses = append(res.WhereClauses, query.WhereClause{Column: col, Operator: op, Value: value})
	}

	if err := query.CheckColumns(res.TableName, res.WhereClauses, snap.Columns(res.TableName)); err != nil {
		return nil, err
	}
	return res, nil
}
