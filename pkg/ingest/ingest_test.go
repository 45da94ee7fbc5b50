package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlazzeri/faqrag/pkg/vector"
)

type countingEmbedder struct{ calls int }

func (c *countingEmbedder) Model() string { return "test-model" }

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text)), 1}, nil
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testDoc = `### What is a taxonomy?
A classification scheme.

### Who maintains it?
The data team.
`

func TestRunUploadsAllPairs(t *testing.T) {
	embedder := &countingEmbedder{}
	idx := vector.NewMemoryIndex()
	ing := New(embedder, idx, slog.New(slog.DiscardHandler))

	res, err := ing.Run(context.Background(), writeDoc(t, testDoc))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Pairs)
	assert.Equal(t, 2, res.Uploaded)
	assert.False(t, res.Skipped)
	assert.Len(t, res.Collection, 64)

	hits, err := idx.Search(context.Background(), res.Collection, []float32{10, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestRunSkipsExistingCollection(t *testing.T) {
	embedder := &countingEmbedder{}
	idx := vector.NewMemoryIndex()
	ing := New(embedder, idx, slog.New(slog.DiscardHandler))
	path := writeDoc(t, testDoc)

	_, err := ing.Run(context.Background(), path)
	require.NoError(t, err)
	callsAfterFirst := embedder.calls

	res, err := ing.Run(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Zero(t, res.Uploaded)
	// Second run only probes dimensionality, it embeds no questions.
	assert.Equal(t, callsAfterFirst+1, embedder.calls)
}

func TestRunRejectsEmptyDocument(t *testing.T) {
	ing := New(&countingEmbedder{}, vector.NewMemoryIndex(), slog.New(slog.DiscardHandler))

	_, err := ing.Run(context.Background(), writeDoc(t, "just prose, no sections"))
	assert.Error(t, err)
}
