package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	// MinCellWidth is the narrowest grid column.
	MinCellWidth = 15
	// DefaultColumns is the number of passwords per grid row.
	DefaultColumns      = 5
	terminalWidthBackup = 80
)

// CellWidth returns the grid column width for the given passwords: the
// longest password plus one space, but never below MinCellWidth.
func CellWidth(passwords []string) int {
	width := MinCellWidth
	for _, pw := range passwords {
		if w := displayWidth(pw) + 1; w > width {
			width = w
		}
	}
	return width
}

// FitColumns caps columns so that a row of cellWidth cells fits in
// totalWidth. A non-positive totalWidth leaves columns unchanged.
func FitColumns(columns, cellWidth, totalWidth int) int {
	if columns <= 0 {
		columns = DefaultColumns
	}
	if totalWidth <= 0 || cellWidth <= 0 {
		return columns
	}
	if fit := totalWidth / cellWidth; fit < columns {
		columns = fit
	}
	if columns < 1 {
		columns = 1
	}
	return columns
}

// WriteGrid prints passwords left-justified in fixed-width columns. The
// last cell of each row is not padded.
func WriteGrid(w io.Writer, passwords []string, columns int) error {
	if columns <= 0 {
		columns = DefaultColumns
	}
	width := CellWidth(passwords)
	var line strings.Builder
	for i, pw := range passwords {
		last := (i+1)%columns == 0 || i == len(passwords)-1
		if last {
			line.WriteString(pw)
			if _, err := fmt.Fprintln(w, line.String()); err != nil {
				return err
			}
			line.Reset()
			continue
		}
		line.WriteString(padCell(pw, width, false))
	}
	return nil
}

// TerminalWidth returns the width of w when it is a terminal, or zero.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
