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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/api"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/config"
)

var serveContextFiles string

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve the catalog, query and ask operations over HTTP",
	Example: `./db_query_assistant serve --addr :9002 --store database --dialect mysql --database mydb`,
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := setupBackend(ctx)
	if err != nil {
		return err
	}
	defer b.close()

	svc, closeLLM, err := setupAssistant(ctx, b, serveContextFiles)
	if err != nil {
		return err
	}
	defer closeLLM()

	srv := api.NewServer(api.Config{
		Addr:      config.Current().HTTP.Addr,
		Executor:  b.executor,
		Assistant: svc,
		Quote:     b.quote,
		Logger:    logger,
	})
	return srv.Serve(ctx)
}

func init() {
	serveCmd.Flags().String("addr", config.GetConfig().HTTP.Addr, "Address to listen on")
	serveCmd.Flags().StringVar(&serveContextFiles, "context", "", "Comma-separated list of files with additional domain knowledge")
	if err := v.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
}
