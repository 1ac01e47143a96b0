// Package repl runs the interactive question loop.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/slicewise/crust/internal/rag"
)

const (
	separator  = "---------------------------------------------------"
	promptText = "Enter your question about pizza restaurants (or q to quit): "
	quitWord   = "q"
)

// QuestionAnswerer is the slice of the rag service the loop needs.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (rag.Answer, error)
}

// Loop reads questions from in and writes answers to out until the user quits
// or in is exhausted.
type Loop struct {
	svc    QuestionAnswerer
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a Loop over the given streams.
func New(svc QuestionAnswerer, in io.Reader, out io.Writer, opts ...Option) *Loop {
	l := &Loop{
		svc:    svc,
		in:     in,
		out:    out,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run drives the loop. A lone "q" (any case, surrounding whitespace ignored)
// quits immediately without touching the retrieval pipeline. A failed
// iteration reports the error and the loop continues; only a read failure on
// in or context cancellation ends the loop with an error.
func (l *Loop) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(l.in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(l.out, separator)
		fmt.Fprint(l.out, promptText)

		if !scanner.Scan() {
			// EOF ends the session like a quit.
			fmt.Fprintln(l.out)
			return scanner.Err()
		}

		question := scanner.Text()
		fmt.Fprintln(l.out, separator)

		if strings.EqualFold(strings.TrimSpace(question), quitWord) {
			return nil
		}

		answer, err := l.svc.Answer(ctx, question)
		if err != nil {
			l.logger.Error("failed to answer question", "error", err)
			fmt.Fprintf(l.out, "Sorry, that question could not be answered: %v\n", err)
			continue
		}

		fmt.Fprintln(l.out, answer.Text)
	}
}
