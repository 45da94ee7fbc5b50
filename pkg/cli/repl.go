package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dlazzeri/faqrag/pkg/rag"
)

// asker is the slice of the engine the REPL needs.
type asker interface {
	Ask(ctx context.Context, question string, history []rag.Turn) (rag.Answer, error)
	AskStreaming(ctx context.Context, question string, history []rag.Turn, w io.Writer) (rag.Answer, error)
}

// replOptions configures REPL behavior.
type replOptions struct {
	Stream bool
}

// runREPL starts an interactive question/answer session.
func runREPL(ctx context.Context, engine asker, opts replOptions, in io.Reader, out io.Writer) error {
	if engine == nil {
		return fmt.Errorf("engine is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	var history []rag.Turn
	scanner := bufio.NewScanner(in)

	printWelcome(out)

	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			handled, shouldQuit := handleCommand(input, &history, out)
			if shouldQuit {
				break
			}
			if handled {
				continue
			}
		}

		var answer rag.Answer
		var err error
		if opts.Stream {
			answer, err = engine.AskStreaming(ctx, input, history, out)
		} else {
			answer, err = engine.Ask(ctx, input, history)
		}
		if err != nil {
			if errors.Is(err, rag.ErrTimeout) {
				_, _ = fmt.Fprintf(out, "Request timed out.\n\n")
			} else {
				_, _ = fmt.Fprintf(out, "Error: %v\n\n", err)
			}
			continue
		}

		if opts.Stream {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out)
		} else {
			_, _ = fmt.Fprintf(out, "%s\n\n", answer.Text)
		}
		history = append(history, rag.Turn{User: input, Assistant: answer.Text})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func printWelcome(out io.Writer) {
	_, _ = fmt.Fprintln(out, "=== faqrag - Interactive Mode ===")
	_, _ = fmt.Fprintln(out, "Ask a question and press Enter. Commands:")
	_, _ = fmt.Fprintln(out, "  /help  - Show this help message")
	_, _ = fmt.Fprintln(out, "  /clear - Clear conversation history")
	_, _ = fmt.Fprintln(out, "  /quit  - Exit the program")
	_, _ = fmt.Fprintln(out)
}

func handleCommand(input string, history *[]rag.Turn, out io.Writer) (bool, bool) {
	switch strings.ToLower(input) {
	case "/help", "/h":
		printWelcome(out)
		return true, false
	case "/clear", "/c":
		*history = nil
		_, _ = fmt.Fprintln(out, "Conversation history cleared.")
		_, _ = fmt.Fprintln(out)
		return true, false
	case "/quit", "/exit", "/q":
		_, _ = fmt.Fprintln(out, "Goodbye!")
		return true, true
	default:
		_, _ = fmt.Fprintf(out, "Unknown command: %s. Type /help for available commands.\n\n", input)
		return true, false
	}
}
