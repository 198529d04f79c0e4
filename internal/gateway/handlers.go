package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelhq/kestrel/internal/agent"
	"github.com/kestrelhq/kestrel/internal/domain"
)

// ChatRequest is the body of POST /chat and the first frame of a
// WebSocket chat. An empty ThreadID starts a new conversation; the
// assigned id is announced as the first stream record.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ConversationResponse is returned by GET /conversations/{id}.
type ConversationResponse struct {
	ThreadID string           `json:"thread_id"`
	Messages []domain.Message `json:"messages"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// handleChat runs one turn and streams its records as server-sent
// events. The caller always receives a terminal complete or error
// record unless the connection itself drops, which cancels the turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeJSONError(w, http.StatusBadRequest, "message is required")
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.New().String()
	}

	sw, err := newSSEWriter(w)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	s.streamTurn(r, threadID, req.Message, sw.WriteRecord)
}

// streamTurn runs the turn and forwards records through send. Send
// errors are logged, not fatal: a dropped consumer cancels the turn
// through the request context.
func (s *Server) streamTurn(r *http.Request, threadID, message string, send func(Record) error) {
	writeRecord := func(rec Record) {
		if err := send(rec); err != nil {
			s.log.Debug().Err(err).Str("threadId", threadID).Msg("client write failed")
		}
	}

	writeRecord(Record{Type: RecordThreadID, ThreadID: threadID})

	_, err := s.runner.Turn(r.Context(), threadID, message, func(e agent.Event) {
		if rec, ok := recordFromEvent(e); ok {
			writeRecord(rec)
		}
	})
	if err != nil {
		s.log.Error().Err(err).Str("threadId", threadID).Msg("turn failed")
		writeRecord(Record{Type: RecordError, Error: "Error processing request: " + err.Error()})
		return
	}

	writeRecord(Record{Type: RecordComplete})
}

// handleConversation returns the stored history of a thread. An unseen
// id yields an empty history, matching the store contract.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")

	msgs, err := s.runner.Store().Load(r.Context(), threadID)
	if err != nil {
		s.log.Error().Err(err).Str("threadId", threadID).Msg("loading conversation failed")
		writeJSONError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ConversationResponse{ThreadID: threadID, Messages: msgs})
}

// handleHealth reports engine readiness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:  "ok",
		Version: s.version,
		Model:   s.model,
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
