package chunkdown

import (
	"github.com/dgallion1/chunkdown/internal/mdast"
)

// force cuts a leaf that exceeds the overflow limit. Every chunk it emits is
// at most ChunkSize runes.
func (w *walker) force(n *mdast.Node) {
	text := w.text(n)
	base := -1
	if w.inSource(n.Span) {
		base = n.Span.Start
	}

	if w.cfg.fallback() == FallbackRaw {
		w.raw(text, base, 0, len(text))
		return
	}

	pieces := boundaries(text, lineOnly(n.Kind))
	start, end := -1, -1
	for _, p := range pieces {
		if start < 0 {
			start, end = p.start, p.end
			continue
		}
		if s, e := trimRange(text, start, p.end); runeLen(text[s:e]) > w.cfg.ChunkSize {
			w.cut(text, base, start, end)
			start = p.start
		}
		end = p.end
	}
	if start >= 0 {
		w.cut(text, base, start, end)
	}
}

// cut emits text[start:end], slicing raw windows out of it when a single
// boundary-delimited run is still larger than ChunkSize.
func (w *walker) cut(text string, base, start, end int) {
	start, end = trimRange(text, start, end)
	if start == end {
		return
	}
	if runeLen(text[start:end]) <= w.cfg.ChunkSize {
		w.emitForced(text, base, start, end)
		return
	}
	w.raw(text, base, start, end)
}

// raw slices text[start:end] into windows of exactly ChunkSize runes.
func (w *walker) raw(text string, base, start, end int) {
	from, n := start, 0
	for i := range text[start:end] {
		if n == w.cfg.ChunkSize {
			w.emitForced(text, base, from, start+i)
			from, n = start+i, 0
		}
		n++
	}
	if from < end {
		w.emitForced(text, base, from, end)
	}
}

func (w *walker) emitForced(text string, base, start, end int) {
	start, end = trimRange(text, start, end)
	if start == end {
		return
	}
	sp := mdast.NoSpan
	if base >= 0 {
		sp = mdast.Span{Start: base + start, End: base + end}
	}
	w.emit(text[start:end], sp, true)
}

type piece struct {
	start, end int
}

// boundaries partitions text into consecutive pieces ending at line breaks
// and, unless lineOnly, after sentence terminators followed by whitespace.
func boundaries(text string, lineOnly bool) []piece {
	var out []piece
	start := 0
	for i := 0; i < len(text); i++ {
		cut := false
		switch text[i] {
		case '\n':
			cut = true
		case '.', '!', '?':
			cut = !lineOnly && i+1 < len(text) && isBlank(text[i+1])
		}
		if cut {
			out = append(out, piece{start: start, end: i + 1})
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, piece{start: start, end: len(text)})
	}
	return out
}

// lineOnly reports whether a kind is cut at line breaks only, since
// sentence punctuation inside it is not prose.
func lineOnly(k mdast.Kind) bool {
	switch k {
	case mdast.KindCodeBlock, mdast.KindHTML, mdast.KindTableRow:
		return true
	}
	return false
}

func trimRange(text string, start, end int) (int, int) {
	for start < end && isBlank(text[start]) {
		start++
	}
	for end > start && isBlank(text[end-1]) {
		end--
	}
	return start, end
}

func isBlank(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
