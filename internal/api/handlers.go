package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/assistant"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

const maxBodyBytes = 1 << 20

// Handlers provides the HTTP handlers of the API.
type Handlers struct {
	executor  *query.Executor
	assistant *assistant.Service
	quote     func(string) string
	logger    *zap.Logger
}

func NewHandlers(executor *query.Executor, svc *assistant.Service, quote func(string) string, logger *zap.Logger) *Handlers {
	return &Handlers{executor: executor, assistant: svc, quote: quote, logger: logger}
}

type envelope struct {
	RequestID string     `json:"requestId"`
	Data      any        `json:"data,omitempty"`
	Error     *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type askBody struct {
	Query          string          `json:"query"`
	ExpectedOutput string          `json:"expectedOutput,omitempty"`
	SkipValidation bool            `json:"skipValidation,omitempty"`
	Limit          int             `json:"limit,omitempty"`
	OrderBy        string          `json:"orderByColumn,omitempty"`
	OrderDirection query.Direction `json:"orderDirection,omitempty"`
}

type queryResponse struct {
	SQL string `json:"sql"`
	*query.Result
}

type askResponse struct {
	*assistant.AskResponse
	SQL string `json:"sql"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.executor.Catalog().ListTables(r.Context()); err != nil {
		h.writeError(w, r, &query.ErrExecutionFailed{Msg: "catalog is unreachable", Err: err})
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.executor.Catalog().ListTables(r.Context())
	if err != nil {
		h.writeError(w, r, &query.ErrExecutionFailed{Msg: "failed to list tables", Err: err})
		return
	}
	h.writeJSON(w, r, http.StatusOK, tables)
}

// ListColumns returns an empty list for a table that is not in the catalog.
func (h *Handlers) ListColumns(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	columns, err := h.executor.Catalog().ListColumns(r.Context(), table)
	if err != nil {
		h.writeError(w, r, &query.ErrExecutionFailed{Msg: fmt.Sprintf("failed to list columns for table %s", table), Err: err})
		return
	}
	if columns == nil {
		columns = []schema.ColumnInfo{}
	}
	h.writeJSON(w, r, http.StatusOK, columns)
}

func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	var q query.Query
	if !h.decode(w, r, &q) {
		return
	}
	res, err := h.executor.Execute(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, queryResponse{SQL: res.Query.Display(h.quote), Result: res})
}

func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	var body askBody
	if !h.decode(w, r, &body) {
		return
	}
	res, err := h.assistant.Validate(r.Context(), body.Query, body.ExpectedOutput)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

// Translate reports a missingDataExplanation as a successful response.
func (h *Handlers) Translate(w http.ResponseWriter, r *http.Request) {
	var body askBody
	if !h.decode(w, r, &body) {
		return
	}
	res, err := h.assistant.Translate(r.Context(), body.Query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handlers) Ask(w http.ResponseWriter, r *http.Request) {
	var body askBody
	if !h.decode(w, r, &body) {
		return
	}
	res, err := h.assistant.Ask(r.Context(), assistant.AskRequest{
		Query:          body.Query,
		ExpectedOutput: body.ExpectedOutput,
		SkipValidation: body.SkipValidation,
		Limit:          body.Limit,
		OrderBy:        body.OrderBy,
		OrderDirection: body.OrderDirection,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, askResponse{AskResponse: res, SQL: res.Result.Query.Display(h.quote)})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		h.writeError(w, r, &query.ErrInvalidInput{Msg: "malformed request body", Err: err})
		return false
	}
	return true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.write(w, r, status, envelope{RequestID: RequestID(r.Context()), Data: data})
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	h.write(w, r, status, envelope{
		RequestID: RequestID(r.Context()),
		Error:     &errorBody{Kind: kind, Message: query.UserMessage(err)},
	})
}

func (h *Handlers) write(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("Failed to write response", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	}
}

// classify maps an error to its HTTP status and a stable kind for clients.
func classify(err error) (int, string) {
	var (
		invalid      *query.ErrInvalidInput
		insufficient *query.ErrInsufficientInformation
		unresolvable *query.ErrUnresolvableQuery
		unknownTable *query.ErrUnknownTable
		unknownCol   *query.ErrUnknownColumn
		translation  *query.ErrTranslationUnavailable
		execution    *query.ErrExecutionFailed
	)
	switch {
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity, "insufficient_information"
	case errors.As(err, &unresolvable):
		return http.StatusUnprocessableEntity, "unresolvable_query"
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "invalid_input"
	case errors.As(err, &unknownTable):
		return http.StatusNotFound, "unknown_table"
	case errors.As(err, &unknownCol):
		return http.StatusBadRequest, "unknown_column"
	case errors.As(err, &translation):
		return http.StatusServiceUnavailable, "translation_unavailable"
	case errors.As(err, &execution):
		return http.StatusBadGateway, "execution_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
