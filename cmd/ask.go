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
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/assistant"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
)

var (
	askExpectedOutput string
	askSkipValidation bool
	askContextFiles   string
	askResults        resultFlags
)

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Answer a natural-language request",
	Long: `Validates a natural-language request against the catalog, translates it into a structured
query and runs it. When the request is ambiguous the clarifying question is printed instead, and when
no single-table query can answer it the explanation is printed.`,
	Example: `./db_query_assistant ask "Which products cost more than 100 dollars?" --context ./pricing.md`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := checkFormat(askResults.format); err != nil {
		return err
	}
	dir, err := askResults.direction()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	b, err := setupBackend(ctx)
	if err != nil {
		return err
	}
	defer b.close()

	svc, closeLLM, err := setupAssistant(ctx, b, askContextFiles)
	if err != nil {
		return err
	}
	defer closeLLM()

	request := strings.Join(args, " ")
	logger.Info("Starting ask operation", zap.String("request", request))
	resp, err := svc.Ask(ctx, assistant.AskRequest{
		Query:          request,
		ExpectedOutput: askExpectedOutput,
		SkipValidation: askSkipValidation,
		Limit:          askResults.limit,
		OrderBy:        askResults.orderBy,
		OrderDirection: dir,
	})
	out := cmd.OutOrStdout()
	if err != nil {
		if query.IsExpected(err) {
			_, _ = fmt.Fprintln(out, query.UserMessage(err))
			return nil
		}
		return userError(err)
	}

	if askResults.format == formatTable {
		_, _ = fmt.Fprintf(out, "Suggested SQL: %s\n", resp.Translation.SQLQuery)
	}
	return writeOutput(out, askResults.outputPath(resp.Translation.TableName), func(w io.Writer) error {
		return renderResult(w, resp.Result, askResults.format)
	})
}

func init() {
	askCmd.Flags().StringVar(&askExpectedOutput, "expected-output", "", "Description of the expected result, used when validating the request")
	askCmd.Flags().BoolVar(&askSkipValidation, "skip-validation", false, "Translate without validating the request first")
	askCmd.Flags().StringVar(&askContextFiles, "context", "", "Comma-separated list of files with additional domain knowledge")
	askResults.register(askCmd)
}
