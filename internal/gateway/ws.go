package gateway

import (
	"net/http"

	"github.com/google/uuid"
)

// handleChatWS serves the chat stream over a WebSocket connection. The
// client sends one ChatRequest frame per turn and receives the same
// record sequence the SSE endpoint produces, as JSON frames.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(1 << 20)
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket chat connected")

	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			s.log.Debug().Err(err).Msg("websocket chat closed")
			return
		}
		if req.Message == "" {
			if err := conn.WriteJSON(Record{Type: RecordError, Error: "message is required"}); err != nil {
				return
			}
			continue
		}

		threadID := req.ThreadID
		if threadID == "" {
			threadID = uuid.New().String()
		}

		s.streamTurn(r, threadID, req.Message, func(rec Record) error {
			return conn.WriteJSON(rec)
		})
	}
}
