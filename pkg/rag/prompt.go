// Prompt assembly for retrieval-augmented answers.
package rag

import (
	"strings"

	"github.com/dlazzeri/faqrag/pkg/vector"
)

// answerTemplate instructs the model to answer only from the retrieved
// documents, deflect questions the documents do not cover, and stay short.
const answerTemplate = `The user asked a <<QUESTION>>. Use <<DOCUMENTS>> to effectively reply
to the question of the user. If you cannot get an answer from <<DOCUMENTS>>,
tell the user that that information cannot be retrieved within the documents
and that they should research it with other tools. You must reply in at most
100 words; your answer must be explicative but concise.

<<DOCUMENTS>>:
%DOCUMENTS%

<<QUESTION>>
%QUESTION%

<<OUTPUT>>`

// formatHits renders retrieved Q&A pairs into the block the model reads:
// question and answer on adjacent lines, pairs separated by a blank line.
func formatHits(hits []vector.Hit) string {
	var sb strings.Builder
	for _, hit := range hits {
		sb.WriteString(hit.Question)
		sb.WriteString("\n")
		sb.WriteString(hit.Answer)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// renderPrompt fills the answer template with documents and the user question.
func renderPrompt(hits []vector.Hit, question string) string {
	prompt := strings.ReplaceAll(answerTemplate, "%DOCUMENTS%", formatHits(hits))
	return strings.ReplaceAll(prompt, "%QUESTION%", question)
}
