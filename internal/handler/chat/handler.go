package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medify-labs/medify/backend/internal/model/chat"
	chatservice "github.com/medify-labs/medify/backend/internal/service/chat"
	"github.com/medify-labs/medify/backend/internal/service/generation"
	triageservice "github.com/medify-labs/medify/backend/internal/service/triage"
	"github.com/medify-labs/medify/backend/pkg/utils"
)

// Handler exposes the conversation REST surface.
type Handler struct {
	chatSvc   *chatservice.Service
	triageSvc *triageservice.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service, triageSvc *triageservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc, triageSvc: triageSvc}
}

// RegisterRoutes registers the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Post("/session/{sessionID}/messages", h.handleSubmit)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleSubmit runs one triage pass. A generation failure is reported as a
// 502 while the user's turn stays recorded; the client may retry at once.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turns, err := h.triageSvc.Submit(r.Context(), sessionID, payload.Message)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.chatSvc.Transcript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if turns == nil {
		turns = []chat.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func (h *Handler) respondSubmitError(w http.ResponseWriter, err error) {
	var genErr *generation.Error
	switch {
	case errors.Is(err, triageservice.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &genErr):
		utils.RespondError(w, http.StatusBadGateway, genErr.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
