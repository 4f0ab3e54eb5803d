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
package assistant

import (
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
)

// ValidationResult reports whether a request carries enough information to be translated.
// ClarificationNeeded is set if and only if IsValid is false.
type ValidationResult struct {
	IsValid             bool   `json:"isValid"`
	ClarificationNeeded string `json:"clarificationNeeded,omitempty"`
}

// TranslationResult is a structured query chosen for a request, or an explanation of why
// none fits. Exactly one of TableName and MissingDataExplanation is set. SQLQuery is for
// display only and is never executed.
type TranslationResult struct {
	TableName              string              `json:"tableName,omitempty"`
	WhereClauses           []query.WhereClause `json:"whereClauses,omitempty"`
	SQLQuery               string              `json:"sqlQuery"`
	MissingDataExplanation string              `json:"missingDataExplanation,omitempty"`
}

// Resolved reports whether the translation names a table to query.
func (t *TranslationResult) Resolved() bool {
	return t.TableName != ""
}

// Query returns the structured query of a resolved translation.
func (t *TranslationResult) Query() query.Query {
	return query.Query{
		Table: t.TableName,
		Where: append([]query.WhereClause(nil), t.WhereClauses...),
	}
}

// AskRequest is one natural-language question answered end to end.
type AskRequest struct {
	Query          string
	ExpectedOutput string
	SkipValidation bool

	// Optional overrides applied to the translated query.
	Limit          int
	OrderBy        string
	OrderDirection query.Direction
}

// AskResponse carries every stage of a successful Ask. Validation is nil when it was skipped.
type AskResponse struct {
	Validation  *ValidationResult  `json:"validation,omitempty"`
	Translation *TranslationResult `json:"translation"`
	Result      *query.Result      `json:"result"`
}
