package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dlazzeri/faqrag/pkg/rag"
)

// Asker answers a question given the conversation so far.
type Asker interface {
	Ask(ctx context.Context, question string, history []rag.Turn) (rag.Answer, error)
}

// Handler serves the JSON chat API.
type Handler struct {
	engine Asker
	logger *slog.Logger
}

// NewHandler creates a Handler around the RAG engine.
func NewHandler(engine Asker, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// ChatRequest is the JSON body of the chat endpoint.
type ChatRequest struct {
	Message string     `json:"message"`
	History []rag.Turn `json:"history,omitempty"`
}

// ChatResponse is the JSON representation of an answer.
type ChatResponse struct {
	Answer     string           `json:"answer"`
	AnswerHTML string           `json:"answer_html"`
	Sources    []SourceResponse `json:"sources"`
}

// SourceResponse is one retrieved document that grounded the answer.
type SourceResponse struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float32 `json:"score"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Chat answers one user message.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	answer, err := h.engine.Ask(r.Context(), req.Message, req.History)
	if err != nil {
		if errors.Is(err, rag.ErrTimeout) {
			writeError(w, http.StatusGatewayTimeout, "Request timed out.")
			return
		}
		h.logger.Error("chat request failed", "error", err, "request_id", r.Header.Get("X-Request-ID"))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	sources := make([]SourceResponse, 0, len(answer.Sources))
	for _, hit := range answer.Sources {
		sources = append(sources, SourceResponse{
			Question: hit.Question,
			Answer:   hit.Answer,
			Score:    hit.Score,
		})
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:     answer.Text,
		AnswerHTML: renderMarkdown(answer.Text),
		Sources:    sources,
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}
