package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXLoader handles .docx files. Paragraphs styled "Heading N" become ATX
// headings; every other paragraph becomes a markdown paragraph.
type DOCXLoader struct{}

func (l *DOCXLoader) Load(r io.Reader, filename string) (string, error) {
	tmp, size, cleanup, err := spool(r, "chunkdown-docx-*.docx")
	if err != nil {
		return "", err
	}
	defer cleanup()

	doc, err := docx.Parse(tmp, size)
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var blocks []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		style := ""
		if para.Properties != nil && para.Properties.Style != nil {
			style = para.Properties.Style.Val
		}
		blocks = append(blocks, docxBlock(style, text))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func docxBlock(style, text string) string {
	if level := headingLevel(style); level > 0 {
		return strings.Repeat("#", level) + " " + strings.Join(strings.Fields(text), " ")
	}
	return text
}

// headingLevel maps Word heading style names ("Heading2", "heading 2") to a
// level, or 0 for body styles.
func headingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") || len(s) != len("heading")+1 {
		return 0
	}
	d := s[len(s)-1]
	if d < '1' || d > '6' {
		return 0
	}
	return int(d - '0')
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
