package gateway

import "net/http"

// registerRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /chat/ws", s.handleChatWS)
	mux.HandleFunc("GET /conversations/{id}", s.handleConversation)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}
