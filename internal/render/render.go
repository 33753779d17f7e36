// Package render formats chunks and comparisons for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
	"github.com/dgallion1/chunkdown/internal/compare"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// warnStyle for chunks over the target size
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// errorStyle for failed runs and forced cuts
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// chunkBoxStyle frames one chunk
	chunkBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	// summaryBoxStyle frames a comparison summary
	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// Chunks writes every chunk in its own box with a size header. Sizes above
// chunkSize are highlighted.
func Chunks(w io.Writer, chunks []chunkdown.Chunk, chunkSize int) {
	if len(chunks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("(no chunks)"))
		return
	}
	for i, c := range chunks {
		fmt.Fprintln(w, chunkHeader(i, c, chunkSize))
		fmt.Fprintln(w, chunkBoxStyle.Render(c.Text))
	}
}

func chunkHeader(i int, c chunkdown.Chunk, chunkSize int) string {
	size := fmt.Sprintf("%d chars", c.RawSize)
	if chunkSize > 0 && c.RawSize > chunkSize {
		size = warnStyle.Render(size)
	}
	parts := []string{
		titleStyle.Render(fmt.Sprintf("Chunk %d", i+1)),
		size,
		dimStyle.Render(fmt.Sprintf("%d content", c.ContentSize)),
	}
	if c.Start >= 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("[%d:%d]", c.Start, c.End)))
	}
	if c.Forced {
		parts = append(parts, errorStyle.Render("forced"))
	}
	return strings.Join(parts, "  ")
}

// Comparison writes one summary line per run.
func Comparison(w io.Writer, results []compare.Result) {
	var lines []string
	lines = append(lines, titleStyle.Render("Comparison"))
	for _, r := range results {
		if r.Error != "" {
			lines = append(lines, fmt.Sprintf("%s %s  %s",
				r.Name, dimStyle.Render("("+string(r.Kind)+")"), errorStyle.Render("ERROR "+r.Error)))
			continue
		}
		largest := 0
		for _, c := range r.Chunks {
			largest = max(largest, c.RawSize)
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s %d  %s %d  %s %s",
			r.Name, dimStyle.Render("("+string(r.Kind)+")"),
			dimStyle.Render("chunks:"), len(r.Chunks),
			dimStyle.Render("largest:"), largest,
			dimStyle.Render("time:"), formatMicros(r.DurationUs),
		))
	}
	fmt.Fprintln(w, summaryBoxStyle.Render(strings.Join(lines, "\n")))
}

// Outline writes an indented heading outline.
func Outline(w io.Writer, lines []string) {
	if len(lines) == 0 {
		fmt.Fprintln(w, dimStyle.Render("(no headings)"))
		return
	}
	for _, l := range lines {
		trimmed := strings.TrimLeft(l, " ")
		indent := l[:len(l)-len(trimmed)]
		fmt.Fprintln(w, indent+titleStyle.Render(trimmed))
	}
}

func formatMicros(us int64) string {
	if us < 1000 {
		return fmt.Sprintf("%dµs", us)
	}
	return fmt.Sprintf("%.1fms", float64(us)/1000.0)
}
