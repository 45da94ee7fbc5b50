package rag

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go"
)

// Completer produces a chat completion for a message sequence. The streaming
// variant writes deltas to w as they arrive and returns the full text.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
	CompleteStreaming(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, w io.Writer) (string, error)
}

// OpenAICompleter calls the OpenAI chat completions API.
type OpenAICompleter struct {
	client      openai.Client
	model       openai.ChatModel
	temperature float64
}

// NewOpenAICompleter wraps client for the given model and temperature.
func NewOpenAICompleter(client openai.Client, model string, temperature float64) *OpenAICompleter {
	return &OpenAICompleter{client: client, model: model, temperature: temperature}
}

func (c *OpenAICompleter) params(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	}
}

// Complete sends a single non-streaming request.
func (c *OpenAICompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, c.params(messages))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty completion choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// CompleteStreaming streams the completion, writing content deltas to w.
func (c *OpenAICompleter) CompleteStreaming(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, w io.Writer) (string, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(messages))
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		if !acc.AddChunk(chunk) {
			return "", errors.New("failed to accumulate stream")
		}
		if len(chunk.Choices) > 0 {
			if delta := chunk.Choices[0].Delta.Content; delta != "" && w != nil {
				if _, err := io.WriteString(w, delta); err != nil {
					return "", fmt.Errorf("write stream delta: %w", err)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("chat completion stream: %w", err)
	}
	if len(acc.Choices) == 0 {
		return "", errors.New("empty streamed completion choices")
	}
	return acc.Choices[0].Message.Content, nil
}
