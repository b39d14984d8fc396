package triage

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/medify-labs/medify/backend/internal/model/chat"
	chatservice "github.com/medify-labs/medify/backend/internal/service/chat"
	"github.com/medify-labs/medify/backend/internal/service/generation"
)

type stubGenerator struct {
	reply  string
	err    error
	called int
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.called++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func setup(t *testing.T, gen Generator, seed int64) (*Service, string) {
	t.Helper()
	chatSvc := chatservice.NewService()
	session, err := chatSvc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	return NewService(chatSvc, gen, rand.New(rand.NewSource(seed))), session.ID
}

func TestSubmitEmptyMessageAppendsNothing(t *testing.T) {
	gen := &stubGenerator{}
	svc, sessionID := setup(t, gen, 1)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Submit(context.Background(), sessionID, text); err != ErrEmptyMessage {
			t.Fatalf("expected ErrEmptyMessage for %q, got %v", text, err)
		}
	}

	turns, _ := svc.chatSvc.Transcript(context.Background(), sessionID)
	if len(turns) != 0 {
		t.Fatalf("expected no turns, got %d", len(turns))
	}
	if gen.called != 0 {
		t.Fatal("generator must not run for invalid submissions")
	}
}

func TestSubmitCrisisPath(t *testing.T) {
	gen := &stubGenerator{reply: "should not be used"}
	svc, sessionID := setup(t, gen, 1)

	turns, err := svc.Submit(context.Background(), sessionID, "hi, I want to kill myself")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	reply := turns[1]
	if reply.Speaker != chat.SpeakerAssistant {
		t.Fatalf("expected assistant reply, got %s", reply.Speaker)
	}
	if len(reply.Resources) == 0 {
		t.Fatal("crisis reply must carry resources")
	}
	if gen.called != 0 {
		t.Fatal("crisis path must never call the generator")
	}
}

func TestSubmitGreetingPathIsDeterministicWithSeed(t *testing.T) {
	const seed = 7
	gen := &stubGenerator{}
	svc, sessionID := setup(t, gen, seed)

	expected := greetingResponses[rand.New(rand.NewSource(seed)).Intn(len(greetingResponses))]

	turns, err := svc.Submit(context.Background(), sessionID, "hello there")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if turns[1].Text != expected {
		t.Fatalf("greeting not drawn from seeded source: got %q want %q", turns[1].Text, expected)
	}
	if gen.called != 0 {
		t.Fatal("greeting path must not call the generator")
	}
}

func TestSubmitOpenQueryFormatsReply(t *testing.T) {
	gen := &stubGenerator{reply: "That sounds hard. Try a short walk. Also call a friend."}
	svc, sessionID := setup(t, gen, 1)

	turns, err := svc.Submit(context.Background(), sessionID, "I'm feeling anxious about work")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if gen.called != 1 {
		t.Fatalf("expected one generation call, got %d", gen.called)
	}

	got := turns[1].Text
	if got != "That sounds hard. Try a short walk." {
		t.Fatalf("reply not compacted: %q", got)
	}
}

func TestSubmitExpandedKeepsInlineMarkup(t *testing.T) {
	gen := &stubGenerator{reply: "**Validation**\nYou are not alone"}
	svc, sessionID := setup(t, gen, 1)

	turns, err := svc.SubmitExpanded(context.Background(), sessionID, "I'm feeling anxious about work")
	if err != nil {
		t.Fatalf("SubmitExpanded err: %v", err)
	}
	if turns[1].Text != "<strong>Validation</strong><br/>You are not alone" {
		t.Fatalf("unexpected expanded reply: %q", turns[1].Text)
	}
}

func TestSubmitGenerationFailureKeepsUserTurn(t *testing.T) {
	gen := &stubGenerator{err: &generation.Error{Reason: "service returned 503"}}
	svc, sessionID := setup(t, gen, 1)

	_, err := svc.Submit(context.Background(), sessionID, "why do I feel like this")
	var genErr *generation.Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *generation.Error, got %v", err)
	}

	turns, _ := svc.chatSvc.Transcript(context.Background(), sessionID)
	if len(turns) != 1 {
		t.Fatalf("expected only the user turn, got %d turns", len(turns))
	}
	if turns[0].Speaker != chat.SpeakerUser {
		t.Fatalf("expected user turn, got %s", turns[0].Speaker)
	}

	// The service stays submittable after a failure.
	gen.err = nil
	gen.reply = "It will pass."
	turns, err = svc.Submit(context.Background(), sessionID, "why do I feel like this")
	if err != nil {
		t.Fatalf("Submit after failure err: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns after recovery, got %d", len(turns))
	}
}

func TestSubmitWithoutGatewayReturnsGenerationError(t *testing.T) {
	svc, sessionID := setup(t, nil, 1)

	_, err := svc.Submit(context.Background(), sessionID, "tell me something")
	var genErr *generation.Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *generation.Error, got %v", err)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	svc := NewService(chatservice.NewService(), &stubGenerator{}, rand.New(rand.NewSource(1)))

	if _, err := svc.Submit(context.Background(), "missing", "hello"); !errors.Is(err, chatservice.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSubmitOrderingUserBeforeAssistant(t *testing.T) {
	gen := &stubGenerator{reply: "One. Two."}
	svc, sessionID := setup(t, gen, 1)

	inputs := []string{"hello there", "I keep overthinking", "good morning"}
	for _, text := range inputs {
		if _, err := svc.Submit(context.Background(), sessionID, text); err != nil {
			t.Fatalf("Submit(%q) err: %v", text, err)
		}
	}

	turns, _ := svc.chatSvc.Transcript(context.Background(), sessionID)
	if len(turns) != 2*len(inputs) {
		t.Fatalf("expected %d turns, got %d", 2*len(inputs), len(turns))
	}
	for i, turn := range turns {
		want := chat.SpeakerUser
		if i%2 == 1 {
			want = chat.SpeakerAssistant
		}
		if turn.Speaker != want {
			t.Fatalf("turn %d: expected %s, got %s", i, want, turn.Speaker)
		}
	}
	for i, text := range inputs {
		if turns[2*i].Text != text {
			t.Fatalf("submission %d out of order: got %q", i, turns[2*i].Text)
		}
	}
}
