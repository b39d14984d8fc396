// Package ws provides the live-chat websocket endpoint. One connection
// serves one session; submissions are processed strictly one at a time in
// read order.
package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/medify-labs/medify/backend/internal/model/chat"
	chatservice "github.com/medify-labs/medify/backend/internal/service/chat"
	"github.com/medify-labs/medify/backend/internal/service/generation"
	triageservice "github.com/medify-labs/medify/backend/internal/service/triage"
)

// Handler upgrades chat connections and relays submissions to the triage
// service.
type Handler struct {
	triageSvc *triageservice.Service
	chatSvc   *chatservice.Service
	upgrader  websocket.Upgrader
}

// New creates the websocket handler.
func New(triageSvc *triageservice.Service, chatSvc *chatservice.Service) *Handler {
	return &Handler{
		triageSvc: triageSvc,
		chatSvc:   chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outboundMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Turns     []chat.Turn `json:"turns,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.send(conn, outboundMessage{Type: "connected", SessionID: sessionID})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[ws] read error: %v", err)
				}
				return
			}

			h.handleMessage(ctx, conn, sessionID, msg)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, sessionID string, msg inboundMessage) {
	switch msg.Type {
	case "message":
		h.handleSubmission(ctx, conn, sessionID, msg.Text)
	default:
		h.sendError(conn, sessionID, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) handleSubmission(ctx context.Context, conn *websocket.Conn, sessionID, text string) {
	turns, err := h.triageSvc.Submit(ctx, sessionID, text)
	if err != nil {
		var genErr *generation.Error
		switch {
		case errors.Is(err, triageservice.ErrEmptyMessage):
			h.sendError(conn, sessionID, "message text is required")
		case errors.As(err, &genErr):
			// The user turn stays recorded; the client may resubmit.
			h.sendError(conn, sessionID, "failed to fetch response, please try again")
		default:
			h.sendError(conn, sessionID, err.Error())
		}
		return
	}

	h.send(conn, outboundMessage{Type: "reply", SessionID: sessionID, Turns: turns})
}

func (h *Handler) send(conn *websocket.Conn, msg outboundMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID, message string) {
	h.send(conn, outboundMessage{Type: "error", SessionID: sessionID, Error: message})
}
