// Package terminal runs steps typed at a prompt against a live session, which
// is handy while writing a new feature file.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
)

// Dispatcher runs typed step text. *steps.Registry satisfies it.
type Dispatcher interface {
	Run(ctx context.Context, inputs ...entities.PhraseInput) error
	Patterns() []string
}

type TerminalInterface struct {
	steps  Dispatcher
	reader *bufio.Reader
	out    io.Writer
	logger *logrus.Logger
}

func NewTerminalInterface(steps Dispatcher, in io.Reader, out io.Writer, logger *logrus.Logger) *TerminalInterface {
	return &TerminalInterface{
		steps:  steps,
		reader: bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
}

// Run - reads one phrase per line until quit, end of input or ctx is done.
// Failed steps are reported and the prompt continues.
func (t *TerminalInterface) Run(ctx context.Context) error {
	fmt.Fprintln(t.out, "Snap step console")
	fmt.Fprintln(t.out, "=================")
	fmt.Fprintln(t.out, "Type a step, 'steps' to list patterns, or 'quit' to exit")
	fmt.Fprintln(t.out)

	passed, failed := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(t.out, "> ")
		input, err := t.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		switch {
		case input == "" && eof:
			fmt.Fprintln(t.out)
			t.summary(passed, failed)
			return nil
		case input == "":
			continue
		case input == "quit" || input == "exit" || input == "q":
			t.summary(passed, failed)
			return nil
		case input == "steps":
			for _, p := range t.steps.Patterns() {
				fmt.Fprintln(t.out, p)
			}
			continue
		}

		if t.execute(ctx, stripKeyword(input)) {
			passed++
		} else {
			failed++
		}
		if eof {
			t.summary(passed, failed)
			return nil
		}
	}
}

func (t *TerminalInterface) execute(ctx context.Context, phrase string) bool {
	t.logger.Debugf("console step: %s", phrase)
	if err := t.steps.Run(ctx, entities.Literal(phrase)); err != nil {
		fmt.Fprintf(t.out, "failed [%s]: %v\n\n", errs.CodeOf(err), err)
		return false
	}
	fmt.Fprintf(t.out, "ok\n\n")
	return true
}

func (t *TerminalInterface) summary(passed, failed int) {
	fmt.Fprintf(t.out, "%d passed, %d failed\n", passed, failed)
}

// stripKeyword drops a leading Gherkin keyword so lines can be pasted from a feature file.
func stripKeyword(line string) string {
	for _, kw := range []string{"Given ", "When ", "Then ", "And ", "But ", "* "} {
		if strings.HasPrefix(line, kw) {
			return strings.TrimSpace(strings.TrimPrefix(line, kw))
		}
	}
	return line
}
