package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/medify-labs/medify/backend/internal/handler/chat"
	"github.com/medify-labs/medify/backend/internal/handler/stream"
	"github.com/medify-labs/medify/backend/internal/handler/ws"
	middlewarePkg "github.com/medify-labs/medify/backend/internal/middleware"
	chatservice "github.com/medify-labs/medify/backend/internal/service/chat"
	triageservice "github.com/medify-labs/medify/backend/internal/service/triage"
	"github.com/medify-labs/medify/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatservice.Service, triageSvc *triageservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	conversationHandler := chatHandler.New(chatSvc, triageSvc)
	wsHandler := ws.New(triageSvc, chatSvc)
	streamHandler := stream.New(triageSvc, chatSvc)

	r.Route("/api", func(api chi.Router) {
		api.Route("/chat", func(chatRoutes chi.Router) {
			conversationHandler.RegisterRoutes(chatRoutes)
			wsHandler.RegisterRoutes(chatRoutes)
		})

		// SSE submission endpoint; one submission per connection.
		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			message := r.URL.Query().Get("message")

			if message == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, message); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}
