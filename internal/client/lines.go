package client

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 64 << 20

// LineReader reads logical lines. A line ending in a backslash continues
// on the next one: the backslash is replaced by a newline.
type LineReader struct {
	scanner *bufio.Scanner
	line    string
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &LineReader{scanner: scanner}
}

// Scan advances to the next logical line. A continuation still open at
// end of input is returned as is.
func (lr *LineReader) Scan() bool {
	var (
		b       strings.Builder
		pending bool
	)
	for lr.scanner.Scan() {
		text := lr.scanner.Text()
		if body, ok := strings.CutSuffix(text, `\`); ok {
			b.WriteString(body)
			b.WriteByte('\n')
			pending = true
			continue
		}
		b.WriteString(text)
		lr.line = b.String()
		return true
	}
	if pending {
		lr.line = b.String()
		return true
	}
	lr.line = ""
	return false
}

// Line returns the most recent logical line.
func (lr *LineReader) Line() string {
	return lr.line
}

// Err returns the first non-EOF read error.
func (lr *LineReader) Err() error {
	return lr.scanner.Err()
}
