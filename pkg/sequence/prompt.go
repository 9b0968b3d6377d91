package sequence

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// Choice is one selectable answer shown to the operator.
type Choice struct {
	Key   string
	Label string
}

// Prompter asks the operator a question and returns one line of input.
// It returns an error when input ends or ctx is cancelled.
type Prompter interface {
	Ask(ctx context.Context, question string, choices []Choice) (string, error)
}

type lineResult struct {
	line string
	err  error
}

// Console is a Prompter over a line-oriented reader and writer, usually
// stdin and stdout. Lines are read on a background goroutine; Ask returns
// as soon as ctx is cancelled.
type Console struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan lineResult
}

// NewConsole creates a Console reading from in and writing prompts to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:    in,
		out:   out,
		lines: make(chan lineResult),
	}
}

// Ask prints the question and choices, then waits for one line.
func (c *Console) Ask(ctx context.Context, question string, choices []Choice) (string, error) {
	fmt.Fprintf(c.out, "  %s\n", question)
	for _, ch := range choices {
		fmt.Fprintf(c.out, "     [%s] %s\n", ch.Key, ch.Label)
	}
	fmt.Fprint(c.out, "  → ")

	c.once.Do(func() { go c.read() })

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case res, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}

func (c *Console) read() {
	defer close(c.lines)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- lineResult{line: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	c.lines <- lineResult{err: err}
}
