package rag

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlazzeri/faqrag/pkg/vector"
)

// axisEmbedder maps known strings to fixed vectors so retrieval order is
// deterministic without any network.
type axisEmbedder struct {
	vectors map[string][]float32
}

func (a *axisEmbedder) Model() string { return "test-model" }

func (a *axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := a.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 1}, nil
}

// fakeCompleter records the messages it was given and returns a canned reply.
type fakeCompleter struct {
	reply    string
	messages []openai.ChatCompletionMessageParamUnion
	block    bool
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	f.messages = messages
	return f.reply, nil
}

func (f *fakeCompleter) CompleteStreaming(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, w io.Writer) (string, error) {
	reply, err := f.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(w, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func testIndex(t *testing.T) vector.Index {
	t.Helper()
	idx := vector.NewMemoryIndex()
	ctx := context.Background()
	_, err := idx.EnsureCollection(ctx, "faq", 2)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, "faq", []vector.Point{
		{ID: 0, Vector: []float32{1, 0}, Question: "What is a taxonomy?", Answer: "A classification scheme."},
		{ID: 1, Vector: []float32{0, 1}, Question: "Who maintains it?", Answer: "The data team."},
	}))
	return idx
}

func testEngine(t *testing.T, completer Completer, opts Options) *Engine {
	t.Helper()
	embedder := &axisEmbedder{vectors: map[string][]float32{
		"what is a taxonomy": {1, 0.1},
	}}
	if opts.Collection == "" {
		opts.Collection = "faq"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	engine, err := NewEngine(embedder, testIndex(t), completer, opts)
	require.NoError(t, err)
	return engine
}

// messagesJSON renders the request messages for content assertions.
func messagesJSON(t *testing.T, messages []openai.ChatCompletionMessageParamUnion) string {
	t.Helper()
	data, err := json.Marshal(messages)
	require.NoError(t, err)
	return string(data)
}

func TestAskGroundsPromptInRetrievedDocuments(t *testing.T) {
	completer := &fakeCompleter{reply: "A taxonomy is a classification scheme."}
	engine := testEngine(t, completer, Options{TopK: 1})

	answer, err := engine.Ask(context.Background(), "what is a taxonomy", nil)
	require.NoError(t, err)

	assert.Equal(t, "A taxonomy is a classification scheme.", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "What is a taxonomy?", answer.Sources[0].Question)

	payload := messagesJSON(t, completer.messages)
	assert.Contains(t, payload, "What is a taxonomy?")
	assert.Contains(t, payload, "A classification scheme.")
	assert.Contains(t, payload, "what is a taxonomy")
	// Only the closest document is in the prompt at top_k=1.
	assert.NotContains(t, payload, "The data team.")
}

func TestAskPreservesHistoryOrder(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	engine := testEngine(t, completer, Options{TopK: 1})

	history := []Turn{
		{User: "first question", Assistant: "first answer"},
		{User: "second question", Assistant: "second answer"},
	}
	_, err := engine.Ask(context.Background(), "what is a taxonomy", history)
	require.NoError(t, err)

	// Two messages per turn plus the final prompt.
	require.Len(t, completer.messages, 5)
	payload := messagesJSON(t, completer.messages)
	assert.Less(t, strings.Index(payload, "first question"), strings.Index(payload, "first answer"))
	assert.Less(t, strings.Index(payload, "first answer"), strings.Index(payload, "second question"))
	// The final prompt message comes after the history.
	assert.Less(t, strings.Index(payload, "second answer"), strings.Index(payload, "100 words"))
}

func TestAskTimesOut(t *testing.T) {
	completer := &fakeCompleter{block: true}
	engine := testEngine(t, completer, Options{TopK: 1, Timeout: 20 * time.Millisecond})

	_, err := engine.Ask(context.Background(), "what is a taxonomy", nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAskStreamingWritesDeltas(t *testing.T) {
	completer := &fakeCompleter{reply: "streamed answer"}
	engine := testEngine(t, completer, Options{TopK: 1})

	var sb captureWriter
	answer, err := engine.AskStreaming(context.Background(), "what is a taxonomy", nil, &sb)
	require.NoError(t, err)

	assert.Equal(t, "streamed answer", answer.Text)
	assert.Equal(t, "streamed answer", sb.String())
}

func TestNewEngineRequiresCollection(t *testing.T) {
	_, err := NewEngine(&axisEmbedder{}, vector.NewMemoryIndex(), &fakeCompleter{}, Options{})
	assert.Error(t, err)
}

type captureWriter struct{ data []byte }

func (w *captureWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *captureWriter) String() string { return string(w.data) }
