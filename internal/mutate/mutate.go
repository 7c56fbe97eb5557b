// Package mutate implements the text mutation operations used by the
// mutate command.
package mutate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Operation is a text mutation
type Operation int

const (
	Lowercase Operation = iota
	Uppercase
	NoSpaces
	Slugify
	LittleBig
	CamelCase
	CSV
	Help
)

// ErrUnknownOperation is returned for an operation name that is not known.
var ErrUnknownOperation = errors.New("unknown operation")

var names = map[Operation]string{
	Lowercase: "lowercase",
	Uppercase: "uppercase",
	NoSpaces:  "no-spaces",
	Slugify:   "slugify",
	LittleBig: "little-big",
	CamelCase: "camel-case",
	CSV:       "csv",
	Help:      "help",
}

// String returns the name used to select the operation
func (op Operation) String() string {
	if name, ok := names[op]; ok {
		return name
	}
	return "unknown"
}

// Operations returns every operation in declaration order.
func Operations() []Operation {
	return []Operation{Lowercase, Uppercase, NoSpaces, Slugify, LittleBig, CamelCase, CSV, Help}
}

// ParseOperation returns the operation called name.
func ParseOperation(name string) (Operation, error) {
	for op, n := range names {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w %s", ErrUnknownOperation, name)
}

// Mutate applies op to text. The csv operation renders text as a table
// sized to the terminal.
func Mutate(op Operation, text string) (string, error) {
	switch op {
	case Lowercase:
		return cases.Lower(language.Und).String(text), nil
	case Uppercase:
		return cases.Upper(language.Und).String(text), nil
	case NoSpaces:
		return strings.NewReplacer(" ", "", "\n", "").Replace(text), nil
	case Slugify:
		return slugify(text), nil
	case LittleBig:
		return littleBig(text), nil
	case CamelCase:
		return camelCase(text), nil
	case CSV:
		return Table(text, TerminalWidth())
	case Help:
		return helpText(), nil
	default:
		return "", fmt.Errorf("%w %d", ErrUnknownOperation, op)
	}
}

// Apply parses name and applies the operation to text.
func Apply(name, text string) (string, error) {
	op, err := ParseOperation(name)
	if err != nil {
		return "", err
	}
	return Mutate(op, text)
}

func slugify(text string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, text)
	if err != nil {
		plain = text
	}

	var b strings.Builder
	dash := false
	for _, r := range cases.Lower(language.Und).String(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

func littleBig(text string) string {
	lower, upper := cases.Lower(language.Und), cases.Upper(language.Und)
	words := strings.Fields(text)
	for i, w := range words {
		if i%2 == 0 {
			words[i] = lower.String(w)
		} else {
			words[i] = upper.String(w)
		}
	}
	return strings.Join(words, " ")
}

func camelCase(text string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range strings.Fields(text) {
		b.WriteString(title.String(w))
	}
	return b.String()
}

func helpText() string {
	var ops []string
	for _, op := range Operations() {
		ops = append(ops, op.String())
	}
	return "This program can perform the following operations:\n" +
		strings.Join(ops, " ") + "\n" +
		"and runs in two modes.\n" +
		"\n" +
		"Given an operation name as its argument, it applies the operation to\n" +
		"everything read from stdin. Multi-line input is supported.\n" +
		"\n" +
		"Without an argument, it reads lines where the first word is the\n" +
		"operation name and the rest of the line is its input. For csv the\n" +
		"input is the path of the file to render.\n"
}
