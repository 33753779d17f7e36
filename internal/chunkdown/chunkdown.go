// Package chunkdown splits markdown into chunks that follow its structure:
// sections, paragraphs, lists, code blocks and tables stay whole unless they
// are too big, and only then are cut at the coarsest boundary available.
package chunkdown

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/chunkdown/internal/mdast"
	"github.com/dgallion1/chunkdown/internal/section"
)

// Chunk is one piece of a split document.
type Chunk struct {
	Text        string `json:"text"`
	Start       int    `json:"start"`            // Byte offset of Text in the input; -1 when unknown.
	End         int    `json:"end"`              // Exclusive end offset; -1 when unknown.
	RawSize     int    `json:"raw_size"`         // Runes in Text, markdown syntax included.
	ContentSize int    `json:"content_size"`     // Runes of visible text, syntax stripped.
	Forced      bool   `json:"forced,omitempty"` // Cut from inside an atomic unit.
}

// SplitText is Split reduced to the chunk texts.
func SplitText(text string, cfg Config) ([]string, error) {
	chunks, err := Split(text, cfg)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out, nil
}

// Split parses text, groups it into sections and packs the result into chunks
// of about cfg.ChunkSize runes. Empty or whitespace-only input yields no
// chunks and no error.
func Split(text string, cfg Config) ([]Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	blocks, err := mdast.Parse(text)
	if err != nil {
		return nil, err
	}
	root := section.Sectionize(blocks)

	w := &walker{src: text, cfg: cfg}
	if err := w.pack(root.Elements(), 0); err != nil {
		return nil, err
	}
	for i := range w.out {
		w.out[i].ContentSize = ContentSize(w.out[i].Text)
	}
	return w.out, nil
}

type walker struct {
	src string
	cfg Config
	out []Chunk
}

// pack greedily fills chunks with consecutive elements. The size of a pending
// chunk is measured on the source it would cover, separators included.
func (w *walker) pack(elems []section.Element, depth int) error {
	if depth > mdast.MaxNesting {
		return fmt.Errorf("%w: structure nested deeper than %d levels", mdast.ErrParse, mdast.MaxNesting)
	}

	var buf []section.Element
	for _, e := range elems {
		size := w.size(e)
		if size == 0 {
			continue
		}
		if size > w.cfg.ChunkSize {
			w.flush(buf)
			buf = nil
			if err := w.oversized(e, size, depth); err != nil {
				return err
			}
			continue
		}
		if len(buf) > 0 {
			next := append(buf[:len(buf):len(buf)], e)
			if txt, _ := w.join(next); runeLen(txt) > w.cfg.ChunkSize {
				w.flush(buf)
				buf = nil
			}
		}
		buf = append(buf, e)
	}
	w.flush(buf)
	return nil
}

// oversized handles an element bigger than ChunkSize. Within the overflow
// limit it is kept whole; past it, structure is descended and leaves are cut.
func (w *walker) oversized(e section.Element, size, depth int) error {
	if float64(size) <= w.cfg.Limit() {
		txt, sp := w.join([]section.Element{e})
		w.emit(txt, sp, false)
		return nil
	}

	switch v := e.(type) {
	case *section.Section:
		return w.pack(v.Elements(), depth+1)
	case *mdast.Node:
		if !v.IsLeaf() {
			return w.pack(nodeElements(v.Children), depth+1)
		}
		w.force(v)
	}
	return nil
}

func (w *walker) flush(buf []section.Element) {
	if len(buf) == 0 {
		return
	}
	txt, sp := w.join(buf)
	w.emit(txt, sp, false)
}

func (w *walker) emit(text string, sp mdast.Span, forced bool) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.out = append(w.out, Chunk{
		Text:    text,
		Start:   sp.Start,
		End:     sp.End,
		RawSize: runeLen(text),
		Forced:  forced,
	})
}

// join returns the text covered by a run of consecutive elements. With known
// positions that is the source slice from the first start to the last end;
// otherwise the element texts are joined with blank lines and no span.
func (w *walker) join(elems []section.Element) (string, mdast.Span) {
	if len(elems) == 0 {
		return "", mdast.NoSpan
	}
	first, last := elems[0].Extent(), elems[len(elems)-1].Extent()
	if w.inSource(first) && w.inSource(last) && first.Start <= last.End {
		known := true
		for _, e := range elems {
			if !w.inSource(e.Extent()) {
				known = false
				break
			}
		}
		if known {
			sp := mdast.Span{Start: first.Start, End: last.End}
			return w.src[sp.Start:sp.End], sp
		}
	}

	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		if t := w.text(e); strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), mdast.NoSpan
}

// text is an element's source slice, or its parsed text when the position is
// unknown.
func (w *walker) text(e section.Element) string {
	if sp := e.Extent(); w.inSource(sp) {
		return w.src[sp.Start:sp.End]
	}
	switch v := e.(type) {
	case *section.Section:
		txt, _ := w.join(v.Elements())
		return txt
	case *mdast.Node:
		if v.IsLeaf() {
			return v.Text
		}
		txt, _ := w.join(nodeElements(v.Children))
		return txt
	}
	return ""
}

func (w *walker) size(e section.Element) int {
	t := w.text(e)
	if strings.TrimSpace(t) == "" {
		return 0
	}
	return runeLen(t)
}

func (w *walker) inSource(sp mdast.Span) bool {
	return sp.Valid() && sp.End <= len(w.src)
}

func nodeElements(nodes []*mdast.Node) []section.Element {
	out := make([]section.Element, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
