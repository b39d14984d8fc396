package ws

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	model "github.com/medify-labs/medify/backend/internal/model/chat"
	chatservice "github.com/medify-labs/medify/backend/internal/service/chat"
	triageservice "github.com/medify-labs/medify/backend/internal/service/triage"
)

type stubGenerator struct {
	reply string
}

func (g *stubGenerator) Generate(context.Context, string) (string, error) {
	return g.reply, nil
}

func setupServer(t *testing.T, gen triageservice.Generator) (*httptest.Server, string) {
	t.Helper()
	chatSvc := chatservice.NewService()
	triageSvc := triageservice.NewService(chatSvc, gen, rand.New(rand.NewSource(1)))

	session, err := chatSvc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	r := chi.NewRouter()
	New(triageSvc, chatSvc).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, session.ID
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketSubmission(t *testing.T) {
	srv, sessionID := setupServer(t, &stubGenerator{reply: "Breathe in. Breathe out."})
	conn := dial(t, srv, sessionID)

	var connected outboundMessage
	if err := conn.ReadJSON(&connected); err != nil {
		t.Fatalf("read connected: %v", err)
	}
	if connected.Type != "connected" {
		t.Fatalf("expected connected message, got %s", connected.Type)
	}

	if err := conn.WriteJSON(inboundMessage{Type: "message", Text: "I worry all the time"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var reply outboundMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Type != "reply" {
		t.Fatalf("expected reply, got %s (%s)", reply.Type, reply.Error)
	}
	if len(reply.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(reply.Turns))
	}
	if reply.Turns[1].Speaker != model.SpeakerAssistant {
		t.Fatalf("expected assistant turn, got %s", reply.Turns[1].Speaker)
	}
}

func TestWebSocketEmptyMessage(t *testing.T) {
	srv, sessionID := setupServer(t, &stubGenerator{})
	conn := dial(t, srv, sessionID)

	var connected outboundMessage
	if err := conn.ReadJSON(&connected); err != nil {
		t.Fatalf("read connected: %v", err)
	}

	if err := conn.WriteJSON(inboundMessage{Type: "message", Text: "   "}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var reply outboundMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Type != "error" {
		t.Fatalf("expected error message, got %s", reply.Type)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := setupServer(t, &stubGenerator{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure for unknown session")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}

func TestWebSocketUnsupportedType(t *testing.T) {
	srv, sessionID := setupServer(t, &stubGenerator{})
	conn := dial(t, srv, sessionID)

	var connected outboundMessage
	if err := conn.ReadJSON(&connected); err != nil {
		t.Fatalf("read connected: %v", err)
	}

	if err := conn.WriteJSON(inboundMessage{Type: "audio"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var reply outboundMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Type != "error" || !strings.Contains(reply.Error, "unsupported") {
		t.Fatalf("expected unsupported-type error, got %+v", reply)
	}
}
