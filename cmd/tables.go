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

var tablesFormat string

var tablesCmd = &cobra.Command{
	Use:     "tables",
	Short:   "List the tables of the configured store",
	Example: `./db_query_assistant tables --store database --dialect postgres --username user --password pass --database mydb`,
	Args:    cobra.NoArgs,
	RunE:    runTables,
}

func runTables(cmd *cobra.Command, args []string) error {
	if err := checkFormat(tablesFormat); err != nil {
		return err
	}
	b, err := setupBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer b.close()

	tables, err := b.executor.Catalog().ListTables(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	return renderTables(cmd.OutOrStdout(), tables, tablesFormat)
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesFormat, "format", "f", formatTable, "Output format (table, json, csv)")
}
