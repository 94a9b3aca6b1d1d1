package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// stubCompleter implements Completer with a function field.
type stubCompleter struct {
	complete func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.complete(ctx, systemPrompt, userPrompt)
}

func TestResolve_GroundedPromptCarriesStoredAnswer(t *testing.T) {
	var gotSystem, gotUser string
	svc := NewAnswerService(&stubCompleter{
		complete: func(_ context.Context, system, user string) (string, error) {
			gotSystem, gotUser = system, user
			return "reply", nil
		},
	})

	reply, err := svc.Resolve(context.Background(), "what are the fees?", "No fees.", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if reply != "reply" {
		t.Fatalf("reply = %q", reply)
	}
	if gotUser != "what are the fees?" {
		t.Fatalf("user prompt = %q", gotUser)
	}
	if !strings.Contains(gotSystem, "No fees.") {
		t.Fatalf("system prompt must embed the stored answer, got %q", gotSystem)
	}
	if !strings.Contains(gotSystem, "knowledge base") {
		t.Fatalf("system prompt = %q", gotSystem)
	}
}

func TestResolve_UnsourcedPromptFlagsMissingKnowledge(t *testing.T) {
	var gotSystem string
	svc := NewAnswerService(&stubCompleter{
		complete: func(_ context.Context, system, _ string) (string, error) {
			gotSystem = system
			return "reply", nil
		},
	})

	if _, err := svc.Resolve(context.Background(), "q", "", false); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(gotSystem, "no answer") {
		t.Fatalf("system prompt must state the knowledge base has no answer, got %q", gotSystem)
	}
	if !strings.Contains(gotSystem, "not based on the knowledge base") {
		t.Fatalf("system prompt must instruct flagging the reply, got %q", gotSystem)
	}
}

func TestResolve_CompleterFailure_FallbackAndTypedError(t *testing.T) {
	svc := NewAnswerService(&stubCompleter{
		complete: func(context.Context, string, string) (string, error) {
			return "", errors.New("connection refused")
		},
	})

	reply, err := svc.Resolve(context.Background(), "q", "", false)
	if reply != FallbackReply {
		t.Fatalf("reply = %q, want FallbackReply", reply)
	}
	if !errors.Is(err, ErrAnswerUnavailable) {
		t.Fatalf("expected ErrAnswerUnavailable, got %v", err)
	}
}

func TestResolve_EmptyQuestion_FallbackWithoutCallingModel(t *testing.T) {
	svc := NewAnswerService(&stubCompleter{
		complete: func(context.Context, string, string) (string, error) {
			t.Fatalf("Complete must not be called for an empty question")
			return "", nil
		},
	})

	reply, err := svc.Resolve(context.Background(), "   ", "", false)
	if reply != FallbackReply {
		t.Fatalf("reply = %q, want FallbackReply", reply)
	}
	if !errors.Is(err, ErrAnswerUnavailable) {
		t.Fatalf("expected ErrAnswerUnavailable, got %v", err)
	}
}
