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
package query

import (
	"errors"
	"fmt"
)

// ErrInvalidInput represents errors related to invalid input parameters
type ErrInvalidInput struct {
	Msg string
	Err error
}

// ErrTranslationUnavailable is returned when the reasoning capability cannot be reached or
// returns output that does not conform to the expected shape.
type ErrTranslationUnavailable struct {
	Msg string
	Err error
}

// ErrInsufficientInformation carries the validator's clarifying question.
type ErrInsufficientInformation struct {
	Clarification string
}

// ErrUnresolvableQuery carries the translator's explanation of why no single-table query fits.
type ErrUnresolvableQuery struct {
	Explanation string
}

// ErrUnknownTable is returned when a table is not in the catalog at execution time.
type ErrUnknownTable struct {
	Table string
}

// ErrUnknownColumn is returned when a column is not part of its table.
type ErrUnknownColumn struct {
	Table  string
	Column string
}

// ErrExecutionFailed wraps an error raised by the underlying store.
type ErrExecutionFailed struct {
	Msg string
	Err error
}

func (e *ErrInvalidInput) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid input: %s", e.Msg)
	}
	return fmt.Sprintf("invalid input: %s: %v", e.Msg, e.Err)
}

func (e *ErrInvalidInput) Unwrap() error {
	return e.Err
}

func (e *ErrTranslationUnavailable) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("translation unavailable: %s", e.Msg)
	}
	return fmt.Sprintf("translation unavailable: %s: %v", e.Msg, e.Err)
}

func (e *ErrTranslationUnavailable) Unwrap() error {
	return e.Err
}

func (e *ErrInsufficientInformation) Error() string {
	return fmt.Sprintf("insufficient information: %s", e.Clarification)
}

func (e *ErrUnresolvableQuery) Error() string {
	return fmt.Sprintf("unresolvable query: %s", e.Explanation)
}

func (e *ErrUnknownTable) Error() string {
	return fmt.Sprintf("unknown table: %s", e.Table)
}

func (e *ErrUnknownColumn) Error() string {
	return fmt.Sprintf("unknown column %s in table %s", e.Column, e.Table)
}

func (e *ErrExecutionFailed) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("query execution failed: %s", e.Msg)
	}
	return fmt.Sprintf("query execution failed: %s: %v", e.Msg, e.Err)
}

func (e *ErrExecutionFailed) Unwrap() error {
	return e.Err
}

const (
	genericTranslationMessage = "The AI assistant is currently unavailable. Please try again later."
	genericExecutionMessage   = "The query could not be executed. Please try again later."
	genericMessage            = "An unexpected error occurred."
)

// UserMessage returns the text that may be shown to an end user for err. Expected outcomes
// are surfaced verbatim; store and reasoning failures are reduced to a generic message.
func UserMessage(err error) string {
	var (
		invalid      *ErrInvalidInput
		insufficient *ErrInsufficientInformation
		unresolvable *ErrUnresolvableQuery
		unknownTable *ErrUnknownTable
		unknownCol   *ErrUnknownColumn
		translation  *ErrTranslationUnavailable
		execution    *ErrExecutionFailed
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &insufficient):
		return insufficient.Clarification
	case errors.As(err, &unresolvable):
		return unresolvable.Explanation
	case errors.As(err, &invalid):
		return invalid.Msg
	case errors.As(err, &unknownTable):
		return unknownTable.Error()
	case errors.As(err, &unknownCol):
		return unknownCol.Error()
	case errors.As(err, &translation):
		return genericTranslationMessage
	case errors.As(err, &execution):
		return genericExecutionMessage
	default:
		return genericMessage
	}
}

// IsExpected reports whether err is a user-facing outcome rather than a failure.
func IsExpected(err error) bool {
	var (
		insufficient *ErrInsufficientInformation
		unresolvable *ErrUnresolvableQuery
	)
	return errors.As(err, &insufficient) || errors.As(err, &unresolvable)
}
