// Package generation is the gateway to the external text-generation
// service: one network round trip per call, no retries, no caching. Every
// failure surfaces as *Error so callers handle one outcome type.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medify-labs/medify/backend/internal/config"
)

// promptTemplate is the fixed instructional wrapper; only the user's raw
// text is interpolated.
const promptTemplate = `As a mental health professional, provide structured advice with:
1. Emotional validation (1 sentence)
2. Practical coping strategies (2-3 specific steps)
3. Professional resource suggestions
4. Encouraging closing statement

Format response with clear sections. Query: %s`

// Error describes a failed generation attempt. Transport failures,
// non-success statuses and empty payloads all collapse into this one type.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// provider performs one model round trip for an already-shaped prompt.
type provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service shapes prompts and translates provider failures.
type Service struct {
	provider provider
}

// NewService selects a transport from configuration: Gemini REST when a
// Gemini key is present, otherwise Ark via eino.
func NewService(ctx context.Context, cfg config.GenerationConfig) (*Service, error) {
	switch {
	case cfg.GeminiEnabled():
		return &Service{provider: newGeminiProvider(cfg)}, nil
	case cfg.ArkEnabled():
		p, err := newArkProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Service{provider: p}, nil
	default:
		return nil, fmt.Errorf("no generation transport configured: set GEMINI_API_KEY or Ark credentials")
	}
}

// Generate wraps userText in the instructional template, performs a single
// round trip and returns the raw generated text. Any failure is returned
// as *Error; the conversation state is untouched either way.
func (s *Service) Generate(ctx context.Context, userText string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, userText)

	raw, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		var genErr *Error
		if errors.As(err, &genErr) {
			return "", genErr
		}
		return "", &Error{Reason: "transport failure", Err: err}
	}

	if strings.TrimSpace(raw) == "" {
		return "", &Error{Reason: "no candidate text in response"}
	}
	return raw, nil
}
