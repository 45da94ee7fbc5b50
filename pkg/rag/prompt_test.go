package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dlazzeri/faqrag/pkg/vector"
)

func TestFormatHits(t *testing.T) {
	hits := []vector.Hit{
		{Question: "Q1?", Answer: "A1."},
		{Question: "Q2?", Answer: "A2."},
	}
	assert.Equal(t, "Q1?\nA1.\n\nQ2?\nA2.", formatHits(hits))
	assert.Empty(t, formatHits(nil))
}

func TestRenderPrompt(t *testing.T) {
	hits := []vector.Hit{{Question: "Q?", Answer: "A."}}
	prompt := renderPrompt(hits, "what about it?")

	assert.Contains(t, prompt, "Q?\nA.")
	assert.Contains(t, prompt, "what about it?")
	assert.Contains(t, prompt, "at most\n100 words")
	// Placeholders must all be substituted.
	assert.NotContains(t, prompt, "%DOCUMENTS%")
	assert.NotContains(t, prompt, "%QUESTION%")
	// Documents come before the question.
	assert.Less(t, strings.Index(prompt, "Q?\nA."), strings.Index(prompt, "what about it?"))
}
