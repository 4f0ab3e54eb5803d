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
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var columnsFormat string

var columnsCmd = &cobra.Command{
	Use:     "columns <table>",
	Short:   "List the columns of a table",
	Long:    `Lists the columns of a table in catalog order. A table that is not in the catalog has no columns.`,
	Example: `./db_query_assistant columns products`,
	Args:    cobra.ExactArgs(1),
	RunE:    runColumns,
}

func runColumns(cmd *cobra.Command, args []string) error {
	if err := checkFormat(columnsFormat); err != nil {
		return err
	}
	b, err := setupBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer b.close()

	columns, err := b.executor.Catalog().ListColumns(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list columns for table %s: %w", args[0], err)
	}
	return renderColumns(cmd.OutOrStdout(), columns, columnsFormat)
}

func init() {
	columnsCmd.Flags().StringVarP(&columnsFormat, "format", "f", formatTable, "Output format (table, json, csv)")
}
