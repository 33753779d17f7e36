package splitter

import (
	"strings"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
)

// characterSplitter slices fixed windows of ChunkSize runes, each starting
// ChunkSize-Overlap runes after the previous one. Markdown is ignored.
type characterSplitter struct {
	opts CharacterOptions
}

func (characterSplitter) Kind() Kind { return KindCharacter }

func (s characterSplitter) Split(text string) ([]chunkdown.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var spans []span
	for _, w := range windows(text, span{0, len(text)}, s.opts.ChunkSize, s.opts.Overlap) {
		if strings.TrimSpace(text[w.start:w.end]) != "" {
			spans = append(spans, w)
		}
	}
	return toChunks(text, spans), nil
}

// windows slices sp into runs of size runes that advance by size-overlap.
// The last window ends at sp.end.
func windows(text string, sp span, size, overlap int) []span {
	var offs []int
	for i := range text[sp.start:sp.end] {
		offs = append(offs, sp.start+i)
	}
	offs = append(offs, sp.end)
	n := len(offs) - 1

	step := size - overlap
	var out []span
	for i := 0; i < n; i += step {
		j := i + size
		if j > n {
			j = n
		}
		out = append(out, span{offs[i], offs[j]})
		if j == n {
			break
		}
	}
	return out
}
