package source

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownLoader passes markdown through with line endings normalised.
type MarkdownLoader struct{}

func (l *MarkdownLoader) Load(r io.Reader, filename string) (string, error) {
	return readNormalized(r)
}

// TextLoader handles plain text. Text is valid markdown already; paragraphs
// stay separated by blank lines.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (string, error) {
	return readNormalized(r)
}

func readNormalized(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	return strings.TrimPrefix(s, "\ufeff"), nil
}
