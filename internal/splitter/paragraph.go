package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
)

// paragraphSplitter packs blank-line separated paragraphs into chunks,
// breaking paragraphs that are too big at sentence ends. Consecutive chunks
// share trailing paragraphs up to Overlap runes.
type paragraphSplitter struct {
	opts ParagraphOptions
}

func (paragraphSplitter) Kind() Kind { return KindParagraph }

func (s paragraphSplitter) Split(text string) ([]chunkdown.Chunk, error) {
	var units []span
	for _, p := range paragraphs(text) {
		if runeLen(text[p.start:p.end]) <= s.opts.ChunkSize {
			units = append(units, p)
			continue
		}
		for _, sent := range sentences(text, p) {
			if runeLen(text[sent.start:sent.end]) <= s.opts.ChunkSize {
				units = append(units, sent)
				continue
			}
			units = append(units, windows(text, sent, s.opts.ChunkSize, 0)...)
		}
	}
	return toChunks(text, pack(text, units, s.opts.ChunkSize, s.opts.Overlap)), nil
}

// span is a byte range [start, end) of the input.
type span struct {
	start, end int
}

// paragraphs returns the trimmed ranges between blank lines.
func paragraphs(text string) []span {
	var out []span
	start := 0
	for start < len(text) {
		end := len(text)
		next := len(text)
		if i := blankLine(text, start); i >= 0 {
			end, next = i, skipBlank(text, i)
		}
		if s, e := trim(text, start, end); s < e {
			out = append(out, span{s, e})
		}
		start = next
	}
	return out
}

// blankLine returns the offset of the first newline at or after from that is
// followed by a whitespace-only line, or -1.
func blankLine(text string, from int) int {
	for i := strings.IndexByte(text[from:], '\n'); i >= 0; {
		at := from + i
		j := at + 1
		for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\r') {
			j++
		}
		if j < len(text) && text[j] == '\n' {
			return at
		}
		from = at + 1
		i = strings.IndexByte(text[from:], '\n')
	}
	return -1
}

func skipBlank(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

// sentences cuts p after ., ! or ? followed by a space or newline.
func sentences(text string, p span) []span {
	var out []span
	start := p.start
	for i := p.start; i < p.end; i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 < p.end && isSpace(text[i+1]) {
				if s, e := trim(text, start, i+1); s < e {
					out = append(out, span{s, e})
				}
				start = i + 1
			}
		}
	}
	if s, e := trim(text, start, p.end); s < e {
		out = append(out, span{s, e})
	}
	return out
}

// pack fills chunks with consecutive units, measuring each chunk on the
// source it covers. After a flush, the next chunk starts with the trailing
// units of the previous one that fit in overlap runes.
func pack(text string, units []span, size, overlap int) []span {
	var out []span
	var cur []span
	for _, u := range units {
		if len(cur) > 0 && runeLen(text[cur[0].start:u.end]) > size {
			out = append(out, span{cur[0].start, cur[len(cur)-1].end})
			cur = tail(text, cur, overlap)
			for len(cur) > 0 && runeLen(text[cur[0].start:u.end]) > size {
				cur = cur[1:]
			}
		}
		cur = append(cur, u)
	}
	if len(cur) > 0 {
		out = append(out, span{cur[0].start, cur[len(cur)-1].end})
	}
	return out
}

// tail returns the longest proper suffix of cur spanning at most overlap runes.
func tail(text string, cur []span, overlap int) []span {
	if overlap <= 0 {
		return nil
	}
	end := cur[len(cur)-1].end
	i := len(cur)
	for i-1 >= 1 && runeLen(text[cur[i-1].start:end]) <= overlap {
		i--
	}
	return append([]span(nil), cur[i:]...)
}

func toChunks(text string, spans []span) []chunkdown.Chunk {
	out := make([]chunkdown.Chunk, 0, len(spans))
	for _, sp := range spans {
		t := text[sp.start:sp.end]
		out = append(out, chunkdown.Chunk{
			Text:        t,
			Start:       sp.start,
			End:         sp.end,
			RawSize:     runeLen(t),
			ContentSize: chunkdown.ContentSize(t),
		})
	}
	return out
}

func trim(text string, start, end int) (int, int) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return start, end
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
