package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlazzeri/faqrag/pkg/rag"
)

// scriptedEngine replies with a fixed answer and records history lengths.
type scriptedEngine struct {
	reply       string
	err         error
	questions   []string
	historyLens []int
}

func (s *scriptedEngine) Ask(_ context.Context, question string, history []rag.Turn) (rag.Answer, error) {
	s.questions = append(s.questions, question)
	s.historyLens = append(s.historyLens, len(history))
	if s.err != nil {
		return rag.Answer{}, s.err
	}
	return rag.Answer{Text: s.reply}, nil
}

func (s *scriptedEngine) AskStreaming(ctx context.Context, question string, history []rag.Turn, w io.Writer) (rag.Answer, error) {
	answer, err := s.Ask(ctx, question, history)
	if err != nil {
		return rag.Answer{}, err
	}
	_, _ = io.WriteString(w, answer.Text)
	return answer, nil
}

func TestREPLAnswersAndAccumulatesHistory(t *testing.T) {
	engine := &scriptedEngine{reply: "the answer"}
	var out strings.Builder

	err := runREPL(context.Background(), engine, replOptions{},
		strings.NewReader("first question\nsecond question\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"first question", "second question"}, engine.questions)
	// The second ask sees the first completed turn.
	assert.Equal(t, []int{0, 1}, engine.historyLens)
	assert.Contains(t, out.String(), "the answer")
}

func TestREPLClearCommand(t *testing.T) {
	engine := &scriptedEngine{reply: "ok"}
	var out strings.Builder

	err := runREPL(context.Background(), engine, replOptions{},
		strings.NewReader("one\n/clear\ntwo\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0}, engine.historyLens)
	assert.Contains(t, out.String(), "Conversation history cleared.")
}

func TestREPLQuitCommand(t *testing.T) {
	engine := &scriptedEngine{reply: "ok"}
	var out strings.Builder

	err := runREPL(context.Background(), engine, replOptions{},
		strings.NewReader("/quit\nnever asked\n"), &out)
	require.NoError(t, err)

	assert.Empty(t, engine.questions)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestREPLReportsTimeout(t *testing.T) {
	engine := &scriptedEngine{err: rag.ErrTimeout}
	var out strings.Builder

	err := runREPL(context.Background(), engine, replOptions{},
		strings.NewReader("slow question\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Request timed out.")
}

func TestREPLStreamMode(t *testing.T) {
	engine := &scriptedEngine{reply: "streamed"}
	var out strings.Builder

	err := runREPL(context.Background(), engine, replOptions{Stream: true},
		strings.NewReader("question\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "streamed")
}

func TestREPLRequiresEngineAndInput(t *testing.T) {
	assert.Error(t, runREPL(context.Background(), nil, replOptions{}, strings.NewReader(""), io.Discard))
	assert.Error(t, runREPL(context.Background(), &scriptedEngine{}, replOptions{}, nil, io.Discard))
}
