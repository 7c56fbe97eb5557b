package mutate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 80

// ErrMalformedCSV is returned when the csv input cannot be rendered.
var ErrMalformedCSV = errors.New("malformed csv")

// TerminalWidth returns the width of the terminal attached to stdout.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Table renders csv text as a table no wider than width. The first record
// is the header.
func Table(text string, width int) (string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return "", fmt.Errorf("%w: empty headers", ErrMalformedCSV)
	}

	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(records[0])
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(true)
	table.SetColWidth(columnWidth(width, len(records[0])))
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(records[1:])
	table.Render()
	return b.String(), nil
}

// columnWidth splits width between count columns, leaving room for the
// outer borders and the separators between columns.
func columnWidth(width, count int) int {
	separators := count - 1
	borders := 2
	if w := (width - borders - separators) / count; w > 0 {
		return w
	}
	return 1
}
