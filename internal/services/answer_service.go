// Package services – AnswerService
//
// This file implements AnswerService, the failure-absorption boundary in
// front of the external chat-completion API. It builds one of two system
// prompts, grounded on a stored knowledge answer or explicitly flagged as
// unsourced, and returns the first completion. External failures surface as
// ErrAnswerUnavailable so callers can decide the user-facing message and,
// critically, skip persisting anything.
package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FallbackReply is the fixed user-facing string sent when the language model
// could not produce an answer. It must never be persisted into the
// knowledge store.
const FallbackReply = "Sorry, something went wrong while preparing the answer. Please try again."

// Completer is the chat-completion contract consumed by AnswerService.
// Implementations send one system prompt plus the raw user question and
// return the first completion's text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AnswerService resolves a question into a reply via the external model.
type AnswerService struct {
	LLM Completer
}

// NewAnswerService constructs an AnswerService on top of a Completer.
func NewAnswerService(llm Completer) *AnswerService {
	return &AnswerService{LLM: llm}
}

// Resolve produces a reply for question. When hasStored is true the prompt
// grounds the model on storedAnswer; otherwise the prompt instructs the model
// to state up front that the answer does not come from the knowledge base.
//
// On any failure it returns FallbackReply together with an error wrapping
// ErrAnswerUnavailable. Callers must not persist the reply when err != nil.
func (s *AnswerService) Resolve(ctx context.Context, question, storedAnswer string, hasStored bool) (string, error) {
	tr := otel.Tracer("services/AnswerService")
	ctx, span := tr.Start(ctx, "Resolve",
		trace.WithAttributes(attribute.Bool("knowledge.hit", hasStored)),
	)
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return FallbackReply, fmt.Errorf("%w: %s", ErrAnswerUnavailable, ErrEmptyQuestion)
	}

	var system string
	if hasStored {
		system = groundedPrompt(question, storedAnswer)
	} else {
		system = unsourcedPrompt(question)
	}

	reply, err := s.LLM.Complete(ctx, system, question)
	if err != nil {
		span.RecordError(err)
		return FallbackReply, fmt.Errorf("%w: %s", ErrAnswerUnavailable, err)
	}
	return reply, nil
}

// groundedPrompt instructs the model to answer briefly using the stored
// knowledge-base answer, supplementing from general knowledge when the
// stored answer is insufficient.
func groundedPrompt(question, storedAnswer string) string {
	var b strings.Builder
	b.WriteString("You are the bank's AI assistant.\n")
	b.WriteString("Here is what the knowledge base says:\n")
	b.WriteString("Question: " + question + "\n")
	b.WriteString("Answer: " + storedAnswer + "\n")
	b.WriteString("Answer briefly and to the point. If this is insufficient, supplement it from your own knowledge.")
	return b.String()
}

// unsourcedPrompt instructs the model to answer concisely while flagging
// that the reply is not backed by the knowledge base.
func unsourcedPrompt(question string) string {
	var b strings.Builder
	b.WriteString("You are a concise and clear AI assistant.\n")
	b.WriteString("The knowledge base has no answer for the question \"" + question + "\".\n")
	b.WriteString("Formulate an answer, but state up front that it is not based on the knowledge base.")
	return b.String()
}
