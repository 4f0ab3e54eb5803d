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
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/logging"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/observability"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

// Result is the outcome of an execution. Columns follows catalog order for stores that know
// it, and the order reported by the engine otherwise.
type Result struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	// Query is the query as it ran: normalized, with an unresolvable OrderBy dropped.
	Query Query `json:"-"`
}

// Store is a tabular store: a schema provider that can also run a resolved Plan. Select must
// be read-only and must honour the plan's filter, order and limit semantics.
type Store interface {
	schema.Provider
	Select(ctx context.Context, plan *Plan) (*Result, error)
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// StoreName labels metrics and log entries, e.g. "memory" or "mysql".
	StoreName    string
	DefaultLimit int
}

// Executor runs structured queries against a Store.
type Executor struct {
	store  Store
	cfg    ExecutorConfig
	logger *zap.Logger
}

func NewExecutor(store Store, cfg ExecutorConfig, logger *zap.Logger) *Executor {
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "unknown"
	}
	return &Executor{store: store, cfg: cfg, logger: logging.OrNop(logger)}
}

// Catalog returns the store's schema provider.
func (e *Executor) Catalog() schema.Provider {
	return e.store
}

// Execute validates q against the store's catalog and runs it. No partial result is returned
// on failure.
func (e *Executor) Execute(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	res, err := e.execute(ctx, q)

	outcome := observability.OutcomeSuccess
	if err != nil {
		var (
			invalid      *ErrInvalidInput
			unknownTable *ErrUnknownTable
		)
		if errors.As(err, &invalid) || errors.As(err, &unknownTable) {
			outcome = observability.OutcomeInvalid
		} else {
			outcome = observability.OutcomeError
		}
	}
	observability.ObserveExecution(e.cfg.StoreName, outcome, time.Since(start))
	return res, err
}

func (e *Executor) execute(ctx context.Context, q Query) (*Result, error) {
	q = q.Normalize(e.cfg.DefaultLimit)
	if err := q.Validate(); err != nil {
		return nil, err
	}
	log := e.logger.With(zap.String("store", e.cfg.StoreName), zap.String("table", q.Table))

	tables, err := e.store.ListTables(ctx)
	if err != nil {
		log.Error("Failed to list tables", zap.Error(err))
		return nil, &ErrExecutionFailed{Msg: "failed to list tables", Err: err}
	}
	found := false
	for _, t := range tables {
		if t.Name == q.Table {
			found = true
			break
		}
	}
	if !found {
		return nil, &ErrUnknownTable{Table: q.Table}
	}

	columns, err := e.store.ListColumns(ctx, q.Table)
	if err != nil {
		log.Error("Failed to list columns", zap.Error(err))
		return nil, &ErrExecutionFailed{Msg: fmt.Sprintf("failed to list columns for table %s", q.Table), Err: err}
	}

	plan := Resolve(q, columns)
	if q.OrderBy != "" && plan.OrderBy == "" {
		log.Warn("Order column is not part of the table; ordering cleared", zap.String("column", q.OrderBy))
	}
	for _, c := range plan.Conditions {
		if !c.Known {
			log.Warn("Condition references an unknown column and matches no rows", zap.String("column", c.Column))
		}
	}

	res, err := e.store.Select(ctx, plan)
	if err != nil {
		log.Error("Query execution failed", zap.Error(err))
		var failed *ErrExecutionFailed
		if errors.As(err, &failed) {
			return nil, err
		}
		return nil, &ErrExecutionFailed{Msg: fmt.Sprintf("select from %s", q.Table), Err: err}
	}

	res.Query = q
	if plan.OrderBy == "" {
		res.Query.OrderBy, res.Query.OrderDirection = "", ""
	}
	log.Debug("Query executed", zap.Int("conditions", len(plan.Conditions)), zap.Int("rows", len(res.Rows)))
	return res, nil
}
