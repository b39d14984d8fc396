package triage

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	analysis "github.com/medify-labs/medify/backend/internal/analysis/triage"
	"github.com/medify-labs/medify/backend/internal/format"
	"github.com/medify-labs/medify/backend/internal/model/chat"
	chatservice "github.com/medify-labs/medify/backend/internal/service/chat"
	"github.com/medify-labs/medify/backend/internal/service/generation"
)

// ErrEmptyMessage rejects blank submissions before any state mutation.
var ErrEmptyMessage = errors.New("message text is required")

// Generator performs one generation round trip for raw user text.
type Generator interface {
	Generate(ctx context.Context, userText string) (string, error)
}

// Service drives one submission through validation, classification and the
// chosen response path, appending to the session as it goes. Each session
// is owned by the service instance that created its turns; the only
// blocking point per submission is the generation call.
type Service struct {
	chatSvc *chatservice.Service
	gateway Generator

	mu  sync.Mutex // guards rng, which is not safe for concurrent use
	rng *rand.Rand
}

// NewService wires the orchestrator. gateway may be nil, in which case
// open queries fail with a generation error. rng may be nil for a
// time-seeded source; tests inject a fixed seed to make greeting selection
// deterministic.
func NewService(chatSvc *chatservice.Service, gateway Generator, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{chatSvc: chatSvc, gateway: gateway, rng: rng}
}

// Submit runs one triage pass and returns the session's full transcript
// after the submission. The user turn is always appended before any
// assistant turn; on a generation failure the user turn stays in place, no
// assistant turn is appended, and the service immediately accepts new
// submissions.
func (s *Service) Submit(ctx context.Context, sessionID, text string) ([]chat.Turn, error) {
	return s.submit(ctx, sessionID, text, format.Compact)
}

// SubmitExpanded behaves like Submit but shapes generated replies with the
// inline-markup variant for clients that render structured advice.
func (s *Service) SubmitExpanded(ctx context.Context, sessionID, text string) ([]chat.Turn, error) {
	return s.submit(ctx, sessionID, text, format.Expand)
}

func (s *Service) submit(ctx context.Context, sessionID, text string, shape func(string) string) ([]chat.Turn, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.chatSvc.AppendTurn(ctx, chat.Turn{
		SessionID: sessionID,
		Speaker:   chat.SpeakerUser,
		Text:      trimmed,
	}); err != nil {
		return nil, err
	}

	category := analysis.Classify(trimmed)
	log.Printf("[triage] session=%s category=%s", sessionID, category)

	var reply chat.Turn
	switch category {
	case analysis.Crisis:
		reply = chat.Turn{
			SessionID: sessionID,
			Speaker:   chat.SpeakerAssistant,
			Text:      crisisNotice,
			Resources: append([]string(nil), crisisResources...),
		}
	case analysis.Greeting:
		reply = chat.Turn{
			SessionID: sessionID,
			Speaker:   chat.SpeakerAssistant,
			Text:      s.pickGreeting(),
		}
	default:
		raw, err := s.generate(ctx, trimmed)
		if err != nil {
			log.Printf("[triage] generation failed for session=%s: %v", sessionID, err)
			return nil, err
		}
		reply = chat.Turn{
			SessionID: sessionID,
			Speaker:   chat.SpeakerAssistant,
			Text:      shape(raw),
		}
	}

	if _, err := s.chatSvc.AppendTurn(ctx, reply); err != nil {
		return nil, err
	}
	return s.chatSvc.Transcript(ctx, sessionID)
}

func (s *Service) generate(ctx context.Context, userText string) (string, error) {
	if s.gateway == nil {
		return "", &generation.Error{Reason: "generation service not configured"}
	}
	return s.gateway.Generate(ctx, userText)
}

func (s *Service) pickGreeting() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return greetingResponses[s.rng.Intn(len(greetingResponses))]
}
