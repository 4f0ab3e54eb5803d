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
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/utils"
)

// resultFlags are shared by the commands that print a query result.
type resultFlags struct {
	limit    int
	orderBy  string
	orderDir string
	format   string
	output   string
	save     bool
}

func (f *resultFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of rows (defaults to the configured default limit)")
	cmd.Flags().StringVar(&f.orderBy, "order-by", "", "Column to order the result by")
	cmd.Flags().StringVar(&f.orderDir, "order-dir", string(query.Asc), "Order direction (asc or desc)")
	cmd.Flags().StringVarP(&f.format, "format", "f", formatTable, "Output format (table, json, csv)")
	cmd.Flags().StringVarP(&f.output, "out_file", "o", "", "File path to save results to (optional)")
	cmd.Flags().BoolVar(&f.save, "save", false, "Save results to <table>_results.<csv|json> when --out_file is not set")
}

func (f *resultFlags) direction() (query.Direction, error) {
	return query.ParseDirection(f.orderDir)
}

func (f *resultFlags) outputPath(table string) string {
	if f.output == "" && f.save {
		return utils.GetDefaultOutputFilePath(table, f.format)
	}
	return f.output
}

// userError reduces err to the message an end user may see. The full error has already
// been logged where it occurred.
func userError(err error) error {
	return errors.New(query.UserMessage(err))
}

var (
	queryTable   string
	queryWhere   []string
	queryResults resultFlags
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a structured query",
	Long: `Runs a single-table structured query. Conditions are given as "column operator value" and
combined with AND; supported operators are =, !=, >, <, >=, <= and LIKE.`,
	Example: `./db_query_assistant query --table products --where "price > 100" --order-by price --order-dir desc`,
	Args:    cobra.NoArgs,
	RunE:    runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := checkFormat(queryResults.format); err != nil {
		return err
	}
	dir, err := queryResults.direction()
	if err != nil {
		return err
	}
	q := query.Query{
		Table:          queryTable,
		Limit:          queryResults.limit,
		OrderBy:        queryResults.orderBy,
		OrderDirection: dir,
	}
	for _, w := range queryWhere {
		clause, err := utils.ParseWhereFlag(w)
		if err != nil {
			return err
		}
		q.Where = append(q.Where, clause)
	}

	b, err := setupBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer b.close()

	res, err := b.executor.Execute(cmd.Context(), q)
	if err != nil {
		return userError(err)
	}

	out := cmd.OutOrStdout()
	if queryResults.format == formatTable {
		_, _ = fmt.Fprintln(out, res.Query.Display(b.quote))
	}
	return writeOutput(out, queryResults.outputPath(q.Table), func(w io.Writer) error {
		return renderResult(w, res, queryResults.format)
	})
}

func init() {
	queryCmd.Flags().StringVarP(&queryTable, "table", "t", "", "Table to query - MANDATORY")
	queryCmd.Flags().StringArrayVarP(&queryWhere, "where", "w", nil, `Condition "column operator value" (repeatable)`)
	queryResults.register(queryCmd)
	_ = queryCmd.MarkFlagRequired("table")
}
