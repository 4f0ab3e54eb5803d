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
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
)

// ReadContextFiles reads the content of the specified context files and combines them into a single string.
func ReadContextFiles(filePaths string) (string, error) {
	if filePaths == "" {
		return "", nil // No context files provided
	}

	paths := strings.Split(filePaths, ",")
	var combinedContext strings.Builder
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read context file '%s': %w", path, err)
		}
		combinedContext.WriteString("\n-- Context from file: " + filepath.Base(path) + " --\n")
		combinedContext.WriteString(string(content))
	}
	return combinedContext.String(), nil
}

// ParseWhereFlag parses a "column operator value" condition such as "price >= 100" or
// "name LIKE smith". The operator is the first whitespace-separated token after the column
// and the rest of the text is the value; surrounding single or double quotes are removed.
func ParseWhereFlag(s string) (query.WhereClause, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return query.WhereClause{}, &query.ErrInvalidInput{Msg: fmt.Sprintf("condition %q must have the form \"column operator value\"", s)}
	}
	op, err := query.ParseOperator(fields[1])
	if err != nil {
		return query.WhereClause{}, err
	}

	rest := strings.TrimSpace(strings.TrimSpace(s)[len(fields[0]):])
	rest = strings.TrimSpace(rest[len(fields[1]):])
	return query.WhereClause{Column: fields[0], Operator: op, Value: unquote(rest)}, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// GetDefaultOutputFilePath names the file a result is exported to when --output is given
// without a path.
func GetDefaultOutputFilePath(tableName, format string) string {
	switch format {
	case "json":
		return fmt.Sprintf("%s_results.json", tableName)
	default: // csv, table
		return fmt.Sprintf("%s_results.csv", tableName)
	}
}
