package source

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// pageBreak separates PDF pages in the produced markdown.
const pageBreak = "\n\n---\n\n"

// PDFLoader extracts PDF text page by page. It tries the Go library first,
// then falls back to pdftotext if enabled.
type PDFLoader struct {
	FallbackPdftotext bool
}

func (l *PDFLoader) Load(r io.Reader, filename string) (string, error) {
	// ledongthuc/pdf needs a file path, so spool to a temp file.
	tmp, _, cleanup, err := spool(r, "chunkdown-pdf-*.pdf")
	if err != nil {
		return "", err
	}
	defer cleanup()

	text, err := extractPDFText(tmp.Name())
	if err != nil && l.FallbackPdftotext {
		text, err = extractPdftotext(tmp.Name())
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return joinPages(strings.Split(text, "\f")), nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// joinPages drops blank pages and separates the rest with thematic breaks.
func joinPages(pages []string) string {
	var kept []string
	for _, p := range pages {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\r\n", "\n"))
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, pageBreak)
}
