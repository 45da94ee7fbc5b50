// Package document parses Markdown FAQ files into question/answer pairs.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// ErrNoSections is returned when a document yields no valid Q&A pairs.
var ErrNoSections = errors.New("document contains no valid question/answer sections")

// QA is a single question/answer pair extracted from the document.
type QA struct {
	Question string
	Answer   string
}

// embeddedLinkPattern matches image/link blobs exported by some editors,
// e.g. "(![](data:image/png;base64,...=)". They carry no FAQ content.
var embeddedLinkPattern = regexp.MustCompile(`\(!\[\].*?=\)`)

// headingPattern splits the document into sections. A section starts at a
// line-leading "###" heading; the heading text is the question and everything
// up to the next heading is the answer.
var headingPattern = regexp.MustCompile(`###\s*`)

// ParseFile reads and parses the Markdown FAQ file at path.
func ParseFile(path string, logger *slog.Logger) ([]QA, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	pairs, err := Parse(string(content), logger)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return pairs, nil
}

// Parse extracts question/answer pairs from Markdown content. Sections with a
// heading but no answer body are skipped with a warning; a document with zero
// valid sections is an error.
func Parse(content string, logger *slog.Logger) ([]QA, error) {
	if logger == nil {
		logger = slog.Default()
	}

	content = embeddedLinkPattern.ReplaceAllString(content, "")

	var pairs []QA
	sections := headingPattern.Split(content, -1)
	for _, section := range sections[1:] {
		lines := strings.Split(strings.TrimSpace(section), "\n")
		if len(lines) < 2 {
			logger.Warn("skipping malformed section", "section", strings.Join(lines, " "))
			continue
		}
		pairs = append(pairs, QA{
			Question: strings.TrimSpace(lines[0]),
			Answer:   strings.TrimSpace(strings.Join(lines[1:], "\n")),
		})
	}

	if len(pairs) == 0 {
		return nil, ErrNoSections
	}
	return pairs, nil
}

// Fingerprint derives a stable collection name from the parsed document: the
// hex SHA-256 of the first question concatenated with the last. An unchanged
// document keeps its collection; an edited one gets a fresh name.
func Fingerprint(pairs []QA) string {
	if len(pairs) == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(pairs[0].Question + pairs[len(pairs)-1].Question))
	return hex.EncodeToString(sum[:])
}
