// Package stream serves one triage submission over Server-Sent Events. The
// connection emits a start event, then either a reply event with the
// updated transcript or an error event, and closes.
package stream

import (
	"context"
	"fmt"
	"net/http"

	chatservice "github.com/medify-labs/medify/backend/internal/service/chat"
	triageservice "github.com/medify-labs/medify/backend/internal/service/triage"
	"github.com/medify-labs/medify/backend/pkg/utils"
)

// Handler manages SSE triage responses.
type Handler struct {
	triageSvc *triageservice.Service
	chatSvc   *chatservice.Service
}

// New creates a new stream handler.
func New(triageSvc *triageservice.Service, chatSvc *chatservice.Service) *Handler {
	return &Handler{triageSvc: triageSvc, chatSvc: chatSvc}
}

// HandleStreamRequest processes one submission for an SSE client. Replies
// use the expanded inline-markup shape since the client renders them as
// structured advice.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, message string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	if _, err := h.chatSvc.GetSession(ctx, sessionID); err != nil {
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		return err
	}

	utils.SendSSEEvent(w, flusher, "start", map[string]string{"sessionId": sessionID})

	turns, err := h.triageSvc.SubmitExpanded(ctx, sessionID, message)
	if err != nil {
		// The user turn, if appended, stays; only the reply is missing.
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		return err
	}

	utils.SendSSEEvent(w, flusher, "reply", map[string]any{
		"sessionId": sessionID,
		"turns":     turns,
	})
	return nil
}
