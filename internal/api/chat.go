package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/csprime/csprime/internal/broker"
	"github.com/csprime/csprime/internal/chatlog"
	"github.com/csprime/csprime/internal/llm"
)

// maxChatBodySize caps the request body on the chat endpoint (64KB).
const maxChatBodySize = 64 << 10

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// ChatHandler serves the conversational endpoint.
type ChatHandler struct {
	broker  *broker.Broker
	chatLog *chatlog.Logger
	limiter *rateLimiter
}

// NewChatHandler creates a chat handler. perSecond/burst configure the
// per-IP rate limit.
func NewChatHandler(b *broker.Broker, log *chatlog.Logger, perSecond float64, burst int) *ChatHandler {
	return &ChatHandler{
		broker:  b,
		chatLog: log,
		limiter: newRateLimiter(perSecond, burst),
	}
}

// RegisterRoutes registers the chat routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/", h.HandleChat)
		r.Get("/", h.HandleStatus)
	})
}

// HandleStatus is a side-effect-free health probe for the chat API.
func (h *ChatHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "CSPrime Chat API is running",
	})
}

// HandleChat runs one chat exchange through the broker.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.allow(r.RemoteAddr) {
		Error(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A non-string query is reported the same as a missing one.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "query" {
			Error(w, http.StatusBadRequest, "Query is required")
			return
		}
		Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		Error(w, http.StatusBadRequest, "Query is required")
		return
	}

	answer, err := h.broker.Ask(r.Context(), req.Query, req.SessionID)
	if err != nil {
		status, message := h.classifyFailure(err)
		slog.Error("chat request failed", "status", status, "error", err)
		Error(w, status, message)
		return
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	h.chatLog.Log(chatlog.Event{Timestamp: now, SessionID: answer.SessionID, Role: "user", Content: req.Query})
	h.chatLog.Log(chatlog.Event{Timestamp: now, SessionID: answer.SessionID, Role: "assistant", Content: answer.Text})

	JSON(w, http.StatusOK, ChatResponse{Answer: answer.Text, SessionID: answer.SessionID})
}

// classifyFailure maps a broker failure to an HTTP status and a resolved,
// user-facing message. Which candidate failed, and how many attempts were
// made, are never exposed. Provider detail is appended only when the
// operator explicitly selected the alternate backend.
func (h *ChatHandler) classifyFailure(err error) (int, string) {
	switch {
	case errors.Is(err, broker.ErrEmptyQuery):
		return http.StatusBadRequest, "Query is required"
	case errors.Is(err, broker.ErrNoBackend):
		return http.StatusInternalServerError, "Inference API key not configured"
	}

	var status int
	var message string
	switch llm.ErrKind(err) {
	case llm.KindTransient:
		status, message = http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."
	case llm.KindAuth:
		status, message = http.StatusInternalServerError, "Invalid API key configuration"
	case llm.KindTrust:
		status, message = http.StatusInternalServerError,
			"Secure connection to the inference provider could not be verified. Check the local certificate trust configuration."
	default:
		status, message = http.StatusInternalServerError, "Failed to generate response. Please try again."
	}
	if h.broker.VerboseErrors() {
		message = fmt.Sprintf("%s (%v)", message, err)
	}
	return status, message
}
