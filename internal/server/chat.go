package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type      string `json:"type"`       // "query"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type       string  `json:"type"` // "response" or "error"
	SessionID  string  `json:"session_id"`
	Content    string  `json:"content"`
	Decision   string  `json:"decision,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError(conn, "", "invalid message format")
			continue
		}

		if req.Content == "" {
			s.sendError(conn, req.SessionID, "content is required")
			continue
		}

		switch req.Type {
		case "query", "":
			s.handleChatQuery(conn, r, req)
		default:
			s.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleChatQuery(conn *websocket.Conn, r *http.Request, req chatRequest) {
	ctx := r.Context()
	sessionID := req.SessionID

	// Create a new session if needed.
	if sessionID == "" {
		sess, err := s.sessions.Create(ctx)
		if err != nil {
			s.sendError(conn, "", "failed to create session: "+err.Error())
			return
		}
		sessionID = sess.ID
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.sendError(conn, sessionID, "session not found: "+err.Error())
		return
	}

	result, err := s.answer(r, sess.Namespace, sess.DocKey, sess.DocumentCategory, req.Content)
	if err != nil {
		s.sendError(conn, sessionID, "query failed: "+err.Error())
		return
	}

	if err := s.sessions.AddChat(ctx, sessionID, req.Content, result.Answer, string(result.Decision)); err != nil {
		log.Printf("server: recording chat: %v", err)
	}

	s.sendResponse(conn, chatResponse{
		Type:       "response",
		SessionID:  sessionID,
		Content:    result.Answer,
		Decision:   string(result.Decision),
		Confidence: result.Confidence,
	})
}

func (s *Server) sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, sessionID, message string) {
	resp := chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write error: %v", err)
	}
}
