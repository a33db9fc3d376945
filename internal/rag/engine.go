package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docqa/internal/contextutil"
)

const (
	systemPrompt = "You are a helpful assistant. Answer the question based on the context provided.\n" +
		"Be concise and accurate. If you don't know the answer based on the context, say so."

	promptTemplate = "Context: %s\n\nQuestion: %s\n\nAnswer:"

	// noResultsMessage is emitted when retrieval finds nothing relevant.
	// This is a normal outcome, not a failure.
	noResultsMessage = "❌ No relevant information found in the documents."

	// generationErrorPrefix marks a mid-stream generation failure. The
	// partial answer already emitted is preserved, not discarded.
	generationErrorPrefix = "\n\n❌ Error generating answer: "

	defaultK = 5
	maxK     = 20
)

// engine implements the Engine interface.
type engine struct {
	retriever *Retriever
	generator Generator
	defaultK  int
	logger    *slog.Logger
}

// NewEngine creates a new answer engine over a retriever and a generation
// capability. topK is the number of context chunks retrieved when a request
// does not override it; a non-positive value falls back to the default.
func NewEngine(retriever *Retriever, generator Generator, topK int) Engine {
	if topK <= 0 {
		topK = defaultK
	}
	return &engine{
		retriever: retriever,
		generator: generator,
		defaultK:  topK,
		logger:    slog.Default(),
	}
}

// Ask answers a question by retrieving context and generating an answer
// conditioned on it.
func (e *engine) Ask(ctx context.Context, req AskRequest, emit func(fragment string) error) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		logger.WarnContext(ctx, "empty question rejected")
		return AskResponse{}, &ValidationError{
			Field:   "question",
			Message: "cannot be empty",
		}
	}

	k := req.K
	if k <= 0 {
		k = e.defaultK
	}
	if k > maxK {
		k = maxK
	}

	logger.InfoContext(ctx, "query started", "question", question, "k", k)

	bundle, err := e.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return AskResponse{}, WrapExternal(err, "retrieval failed")
	}

	if bundle.Empty() {
		logger.InfoContext(ctx, "no relevant context for question")
		if err := e.emit(emit, noResultsMessage); err != nil {
			return AskResponse{}, err
		}
		return AskResponse{
			Formatted: noResultsMessage,
			Sources:   []Source{},
		}, nil
	}

	prompt := fmt.Sprintf(promptTemplate, bundle.Context, question)

	var answer string
	if emit == nil {
		answer, err = e.generator.Generate(ctx, systemPrompt, prompt)
		if err != nil {
			logger.ErrorContext(ctx, "generation failed", "error", err)
			return AskResponse{}, WrapExternal(err, "generation failed")
		}
	} else {
		answer, err = e.streamAnswer(ctx, prompt, emit)
		if err != nil {
			return AskResponse{}, err
		}
	}

	formatted := FormatResponse(question, answer, bundle.Sources)
	if err := e.emit(emit, SourcesSection(bundle.Sources)); err != nil {
		return AskResponse{}, err
	}

	logger.InfoContext(ctx, "query completed",
		"question_length", len(question),
		"chunks_used", len(bundle.Sources),
		"answer_length", len(answer),
	)

	return AskResponse{
		Answer:    answer,
		Formatted: formatted,
		Sources:   bundle.Sources,
	}, nil
}

// streamAnswer relays generation fragments to the caller as they arrive and
// accumulates the full answer. A generation failure mid-stream is surfaced as
// a final error-marker fragment while the already-emitted text is kept; a
// cancelled context propagates as an error so the caller can stop quietly.
func (e *engine) streamAnswer(ctx context.Context, prompt string, emit func(fragment string) error) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var answer strings.Builder
	err := e.generator.Stream(ctx, systemPrompt, prompt, func(token string) error {
		answer.WriteString(token)
		return emit(token)
	})
	if err != nil {
		if ctx.Err() != nil {
			logger.InfoContext(ctx, "generation abandoned", "reason", ctx.Err())
			return "", ctx.Err()
		}
		logger.ErrorContext(ctx, "generation failed mid-stream", "error", err, "partial_length", answer.Len())
		marker := generationErrorPrefix + err.Error()
		answer.WriteString(marker)
		if emitErr := emit(marker); emitErr != nil {
			return "", emitErr
		}
	}

	return answer.String(), nil
}

// emit invokes the fragment callback when present, skipping empty fragments.
func (e *engine) emit(fn func(fragment string) error, fragment string) error {
	if fn == nil || fragment == "" {
		return nil
	}
	return fn(fragment)
}
