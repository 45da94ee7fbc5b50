// Package rag answers questions by retrieving the closest FAQ entries and
// asking a chat model to reply using only those documents.
package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openai/openai-go"

	"github.com/dlazzeri/faqrag/pkg/embedding"
	"github.com/dlazzeri/faqrag/pkg/vector"
)

// ErrTimeout is returned when a request exceeds the configured time budget.
var ErrTimeout = errors.New("request timed out")

// Turn is one completed user/assistant exchange.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Answer is the engine's reply with the documents that grounded it.
type Answer struct {
	Text    string
	Sources []vector.Hit
}

// Options configures an Engine.
type Options struct {
	Collection string
	TopK       int
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Engine wires the embedder, vector index, and chat model together.
type Engine struct {
	embedder  embedding.Embedder
	index     vector.Index
	completer Completer

	collection string
	topK       int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewEngine builds an Engine. Collection must name an ingested collection.
func NewEngine(embedder embedding.Embedder, index vector.Index, completer Completer, opts Options) (*Engine, error) {
	if opts.Collection == "" {
		return nil, errors.New("collection is not set")
	}
	if opts.TopK <= 0 {
		opts.TopK = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		embedder:   embedder,
		index:      index,
		completer:  completer,
		collection: opts.Collection,
		topK:       opts.TopK,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}, nil
}

// Ask answers question using the conversation history. The whole call is
// bounded by the engine timeout; a deadline overrun surfaces as ErrTimeout.
func (e *Engine) Ask(ctx context.Context, question string, history []Turn) (Answer, error) {
	return e.ask(ctx, question, history, nil)
}

// AskStreaming is Ask with completion deltas written to w as they arrive.
func (e *Engine) AskStreaming(ctx context.Context, question string, history []Turn, w io.Writer) (Answer, error) {
	return e.ask(ctx, question, history, w)
}

func (e *Engine) ask(ctx context.Context, question string, history []Turn, stream io.Writer) (Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()

	queryVec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return Answer{}, e.wrapTimeout(fmt.Errorf("embed question: %w", err))
	}

	hits, err := e.index.Search(ctx, e.collection, queryVec, e.topK)
	if err != nil {
		return Answer{}, e.wrapTimeout(fmt.Errorf("retrieve documents: %w", err))
	}
	e.logger.Debug("documents retrieved", "count", len(hits), "collection", e.collection)

	prompt := renderPrompt(hits, question)
	messages := historyMessages(history)
	messages = append(messages, openai.UserMessage(prompt))

	var text string
	if stream != nil {
		text, err = e.completer.CompleteStreaming(ctx, messages, stream)
	} else {
		text, err = e.completer.Complete(ctx, messages)
	}
	if err != nil {
		return Answer{}, e.wrapTimeout(err)
	}

	e.logger.Debug("question answered",
		"duration", time.Since(start).Round(time.Millisecond),
		"sources", len(hits),
	)
	return Answer{Text: text, Sources: hits}, nil
}

// historyMessages converts prior turns to chat messages, oldest first.
func historyMessages(history []Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2*len(history)+1)
	for _, turn := range history {
		messages = append(messages, openai.UserMessage(turn.User))
		messages = append(messages, openai.AssistantMessage(turn.Assistant))
	}
	return messages
}

// wrapTimeout maps context deadline errors onto ErrTimeout so surfaces can
// report a uniform timeout message.
func (e *Engine) wrapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
	return err
}
