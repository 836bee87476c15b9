package report

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
)

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	axisWidth         = 8
)

// LengthHistogram counts passwords by length. Index i holds the number of
// passwords with i characters.
func LengthHistogram(passwords []string) []float64 {
	maxLen := 0
	for _, pw := range passwords {
		if len(pw) > maxLen {
			maxLen = len(pw)
		}
	}
	hist := make([]float64, maxLen+1)
	for _, pw := range passwords {
		hist[len(pw)]++
	}
	return hist
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisWidth
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

// PlotLengths renders the password length distribution of a sample. A
// non-positive width fits the plot to w.
func PlotLengths(w io.Writer, passwords []string, width int) error {
	if len(passwords) == 0 {
		return nil
	}
	hist := LengthHistogram(passwords)
	minLen := 0
	for minLen < len(hist) && hist[minLen] == 0 {
		minLen++
	}
	data := hist[minLen:]
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth(w))
	}
	if len(data) < 2 {
		_, err := fmt.Fprintf(w, "All %d sampled passwords have %d characters.\n", len(passwords), minLen)
		return err
	}
	graph := asciigraph.Plot(data,
		asciigraph.Width(width),
		asciigraph.Height(defaultPlotHeight),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("Password length %d..%d over %d samples", minLen, len(hist)-1, len(passwords))),
	)
	_, err := fmt.Fprintln(w, graph)
	return err
}
