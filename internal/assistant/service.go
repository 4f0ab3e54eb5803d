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
// Package assistant turns natural-language requests into structured queries and runs them.
package assistant

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/genai"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/logging"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/observability"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

type Service struct {
	executor  *query.Executor
	llmClient genai.LLMClient
	cfg       Config
	logger    *zap.Logger
}

type Config struct {
	// AdditionalContext is free-form domain knowledge appended to every prompt.
	AdditionalContext string
}

func NewService(executor *query.Executor, llm genai.LLMClient, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		executor:  executor,
		llmClient: llm,
		cfg:       cfg,
		logger:    logging.OrNop(logger),
	}
}

// Validate asks the model whether request can be translated. expectedOutput may be empty.
func (s *Service) Validate(ctx context.Context, request, expectedOutput string) (*ValidationResult, error) {
	request, err := checkRequest(request)
	if err != nil {
		observability.ObserveAIRequest("validate", observability.OutcomeInvalid)
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		observability.ObserveAIRequest("validate", observability.OutcomeError)
		return nil, err
	}
	return s.validate(ctx, snap, request, expectedOutput)
}

// Translate asks the model for a structured query answering request. A result carrying a
// MissingDataExplanation is returned without error.
func (s *Service) Translate(ctx context.Context, request string) (*TranslationResult, error) {
	request, err := checkRequest(request)
	if err != nil {
		observability.ObserveAIRequest("translate", observability.OutcomeInvalid)
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		observability.ObserveAIRequest("translate", observability.OutcomeError)
		return nil, err
	}
	return s.translate(ctx, snap, request)
}

// Ask validates, translates and executes req against a single catalog snapshot. A request
// needing clarification fails with ErrInsufficientInformation and one that no single-table
// query can answer fails with ErrUnresolvableQuery.
func (s *Service) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	request, err := checkRequest(req.Query)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	resp := &AskResponse{}
	if !req.SkipValidation {
		v, err := s.validate(ctx, snap, request, req.ExpectedOutput)
		if err != nil {
			return nil, err
		}
		if !v.IsValid {
			return nil, &query.ErrInsufficientInformation{Clarification: v.ClarificationNeeded}
		}
		resp.Validation = v
	}

	t, err := s.translate(ctx, snap, request)
	if err != nil {
		return nil, err
	}
	if !t.Resolved() {
		return nil, &query.ErrUnresolvableQuery{Explanation: t.MissingDataExplanation}
	}
	resp.Translation = t

	q := t.Query()
	q.Limit = req.Limit
	q.OrderBy = req.OrderBy
	q.OrderDirection = req.OrderDirection
	res, err := s.executor.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	resp.Result = res
	return resp, nil
}

func checkRequest(request string) (string, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return "", &query.ErrInvalidInput{Msg: "natural-language request must not be empty"}
	}
	return request, nil
}

func (s *Service) snapshot(ctx context.Context) (*schema.Snapshot, error) {
	snap, err := schema.Capture(ctx, s.executor.Catalog())
	if err != nil {
		s.logger.Error("Failed to read catalog", zap.Error(err))
		return nil, &query.ErrExecutionFailed{Msg: "failed to read catalog", Err: err}
	}
	return snap, nil
}

func (s *Service) validate(ctx context.Context, snap *schema.Snapshot, request, expectedOutput string) (*ValidationResult, error) {
	out, err := s.generate(ctx, validationPrompt(snap, request, expectedOutput, s.cfg.AdditionalContext))
	if err != nil {
		observability.ObserveAIRequest("validate", observability.OutcomeError)
		return nil, err
	}
	res, err := decodeValidation(out)
	if err != nil {
		s.logger.Error("Rejected validation output", zap.Error(err), zap.ByteString("output", out))
		observability.ObserveAIRequest("validate", observability.OutcomeError)
		return nil, &query.ErrTranslationUnavailable{Msg: "validation output rejected", Err: err}
	}

	outcome := observability.OutcomeSuccess
	if !res.IsValid {
		outcome = observability.OutcomeGuidance
		s.logger.Info("Request needs clarification", zap.String("clarification", res.ClarificationNeeded))
	}
	observability.ObserveAIRequest("validate", outcome)
	return res, nil
}

func (s *Service) translate(ctx context.Context, snap *schema.Snapshot, request string) (*TranslationResult, error) {
	out, err := s.generate(ctx, translationPrompt(snap, request, s.cfg.AdditionalContext))
	if err != nil {
		observability.ObserveAIRequest("translate", observability.OutcomeError)
		return nil, err
	}
	res, err := decodeTranslation(out, snap)
	if err != nil {
		s.logger.Error("Rejected translation output", zap.Error(err), zap.ByteString("output", out))
		observability.ObserveAIRequest("translate", observability.OutcomeError)
		var unknownCol *query.ErrUnknownColumn
		if errors.As(err, &unknownCol) {
			return nil, err
		}
		return nil, &query.ErrTranslationUnavailable{Msg: "translation output rejected", Err: err}
	}

	outcome := observability.OutcomeSuccess
	if !res.Resolved() {
		outcome = observability.OutcomeGuidance
		s.logger.Info("Request cannot be answered from a single table", zap.String("explanation", res.MissingDataExplanation))
	} else {
		s.logger.Info("Translated request", zap.String("table", res.TableName), zap.Int("conditions", len(res.WhereClauses)))
	}
	observability.ObserveAIRequest("translate", outcome)
	return res, nil
}

func (s *Service) generate(ctx context.Context, p genai.StructuredPrompt) ([]byte, error) {
	if s.llmClient == nil {
		return nil, &query.ErrTranslationUnavailable{Msg: "no reasoning capability is configured"}
	}
	out, err := s.llmClient.GenerateJSON(ctx, p)
	if err != nil {
		s.logger.Error("Reasoning capability call failed", zap.String("prompt", p.Name), zap.Error(err))
		return nil, &query.ErrTranslationUnavailable{Msg: p.Name + " request failed", Err: err}
	}
	return out, nil
}
