package client

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gookit/color"
)

// errorCode is the SGR code of error lines: reset, then red foreground.
const errorCode = "0;31"

// Result is one line of human-visible output.
type Result struct {
	Text string
	Err  bool
}

// Success creates a result for the primary output.
func Success(format string, args ...any) Result {
	return Result{Text: fmt.Sprintf(format, args...)}
}

// Failure creates a result for the error output.
func Failure(err error) Result {
	return Result{Text: err.Error(), Err: true}
}

// Writer serializes results to two sinks. Errors are printed in red.
type Writer struct {
	stdout *bufio.Writer
	stderr *bufio.Writer
}

// NewWriter creates a Writer. Colour is forced on so that error lines
// look the same whether or not stderr is a terminal.
func NewWriter(stdout, stderr io.Writer) *Writer {
	color.ForceColor()
	return &Writer{
		stdout: bufio.NewWriter(stdout),
		stderr: bufio.NewWriter(stderr),
	}
}

// Write prints one result and flushes its sink.
func (w *Writer) Write(r Result) error {
	if r.Err {
		fmt.Fprintln(w.stderr, color.RenderCode(errorCode, r.Text))
		return w.stderr.Flush()
	}
	fmt.Fprintf(w.stdout, "%s\n", r.Text)
	return w.stdout.Flush()
}

// Run writes results until the channel is closed. A failing sink does not
// stop the loop so producers are never blocked.
func (w *Writer) Run(results <-chan Result) error {
	var first error
	for r := range results {
		if err := w.Write(r); err != nil && first == nil {
			first = fmt.Errorf("failed to write output: %w", err)
		}
	}
	return first
}
