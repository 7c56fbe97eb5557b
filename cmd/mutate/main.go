package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/omochice/frame-chat/internal/client"
	"github.com/omochice/frame-chat/internal/mutate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) > 1 {
		return once(os.Args[1])
	}
	interactive()
	return nil
}

// once applies the named operation to all of stdin.
func once(name string) error {
	op, err := mutate.ParseOperation(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Will apply %s:\n", op)

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	out, err := mutate.Mutate(op, string(input))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// interactive reads "<operation> <text>" lines until end of input.
func interactive() {
	w := client.NewWriter(os.Stdout, os.Stderr)
	lines := client.NewLineReader(os.Stdin)
	for lines.Scan() {
		_ = w.Write(execute(lines.Line()))
	}
	if err := lines.Err(); err != nil {
		_ = w.Write(client.Failure(err))
	}
}

func execute(line string) client.Result {
	name, text, _ := strings.Cut(line, " ")
	op, err := mutate.ParseOperation(name)
	if err != nil {
		return client.Failure(err)
	}

	if op == mutate.CSV {
		data, err := os.ReadFile(strings.TrimSpace(text))
		if err != nil {
			return client.Failure(fmt.Errorf("failed to read csv: %w", err))
		}
		text = string(data)
	}

	out, err := mutate.Mutate(op, text)
	if err != nil {
		return client.Failure(err)
	}
	return client.Success("%s", out)
}
