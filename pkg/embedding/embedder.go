// Package embedding turns text into vectors via the OpenAI embeddings API,
// with an optional SQLite-backed cache in front.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
)

// MaxInputTokens is the input limit of the supported embedding models. Inputs
// are bounded by characters, which is conservative: a token is at least one
// character.
const MaxInputTokens = 8191

// ErrInputTooLong is returned when the input cannot fit the embedding model.
var ErrInputTooLong = errors.New("input exceeds embedding model limit")

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client openai.Client
	model  string
}

// NewOpenAIEmbedder wraps client for the given embedding model.
func NewOpenAIEmbedder(client openai.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model}
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Embed returns the embedding vector for text. Newlines are replaced with
// spaces before the call; embedding quality degrades on raw newlines.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > MaxInputTokens*4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLong, len(text))
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
