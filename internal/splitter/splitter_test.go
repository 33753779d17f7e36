package splitter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
)

func texts(chunks []chunkdown.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func TestNew_EachKind(t *testing.T) {
	for _, opts := range []Options{
		DefaultMarkdownOptions(),
		DefaultParagraphOptions(),
		DefaultCharacterOptions(),
	} {
		s, err := New(opts)
		require.NoError(t, err)
		assert.Equal(t, opts.Kind(), s.Kind())
	}
}

func TestNew_RejectsInvalid(t *testing.T) {
	bad := []Options{
		nil,
		MarkdownOptions{ChunkSize: 0, MaxOverflowRatio: 1.5},
		MarkdownOptions{ChunkSize: 10, MaxOverflowRatio: 0.9},
		ParagraphOptions{ChunkSize: 10, Overlap: 10},
		CharacterOptions{ChunkSize: -1},
		CharacterOptions{ChunkSize: 10, Overlap: -1},
	}
	for _, o := range bad {
		_, err := New(o)
		require.Error(t, err, "options %#v", o)
		assert.True(t, errors.Is(err, chunkdown.ErrConfig))
	}
}

func TestMarkdownSplitter_MatchesChunkdown(t *testing.T) {
	src := "# A\n\ncontent1\n\n# B\n\ncontent2"
	s, err := New(MarkdownOptions{ChunkSize: 10, MaxOverflowRatio: 1.5})
	require.NoError(t, err)
	chunks, err := s.Split(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"# A\n\ncontent1", "# B\n\ncontent2"}, texts(chunks))
}

func TestParagraphSplitter_PacksParagraphs(t *testing.T) {
	src := "alpha one\n\nbeta two\n\n\ngamma three\n  \ndelta four"
	s, err := New(ParagraphOptions{ChunkSize: 25})
	require.NoError(t, err)
	chunks, err := s.Split(src)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"alpha one\n\nbeta two",
		"gamma three\n  \ndelta four",
	}, texts(chunks))
	for _, c := range chunks {
		assert.Equal(t, src[c.Start:c.End], c.Text)
	}
}

func TestParagraphSplitter_SentenceFallback(t *testing.T) {
	src := "First sentence here. Second sentence here. Third sentence here."
	s, err := New(ParagraphOptions{ChunkSize: 45})
	require.NoError(t, err)
	chunks, err := s.Split(src)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"First sentence here. Second sentence here.",
		"Third sentence here.",
	}, texts(chunks))
}

func TestParagraphSplitter_Overlap(t *testing.T) {
	src := "aaaa\n\nbbbb\n\ncccc\n\ndddd"
	s, err := New(ParagraphOptions{ChunkSize: 16, Overlap: 4})
	require.NoError(t, err)
	chunks, err := s.Split(src)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"aaaa\n\nbbbb\n\ncccc",
		"cccc\n\ndddd",
	}, texts(chunks))
}

func TestParagraphSplitter_LongWordWindowed(t *testing.T) {
	src := strings.Repeat("w", 25)
	s, err := New(ParagraphOptions{ChunkSize: 10})
	require.NoError(t, err)
	chunks, err := s.Split(src)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 5, chunks[2].RawSize)
}

func TestCharacterSplitter_Windows(t *testing.T) {
	s, err := New(CharacterOptions{ChunkSize: 4, Overlap: 1})
	require.NoError(t, err)
	chunks, err := s.Split("abcdefghij")
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd", "defg", "ghij"}, texts(chunks))

	chunks, err = s.Split("   ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestCharacterSplitter_Unicode(t *testing.T) {
	s, err := New(CharacterOptions{ChunkSize: 2})
	require.NoError(t, err)
	chunks, err := s.Split("héllo")
	require.NoError(t, err)
	assert.Equal(t, []string{"hé", "ll", "o"}, texts(chunks))
}

func TestDecode(t *testing.T) {
	opts, err := Decode(json.RawMessage(`{"kind":"markdown","chunk_size":200}`))
	require.NoError(t, err)
	md, ok := opts.(MarkdownOptions)
	require.True(t, ok)
	assert.Equal(t, 200, md.ChunkSize)
	assert.Equal(t, 1.5, md.MaxOverflowRatio)

	opts, err = Decode(json.RawMessage(`{"kind":"character","chunk_size":50,"overlap":5}`))
	require.NoError(t, err)
	assert.Equal(t, CharacterOptions{ChunkSize: 50, Overlap: 5}, opts)
}

func TestDecode_Rejects(t *testing.T) {
	for _, raw := range []string{
		`{"chunk_size":10}`,
		`{"kind":"tiktoken"}`,
		`{"kind":"markdown","overlap":5}`,
		`{"kind":"paragraph","max_overflow_ratio":2}`,
		`{"kind":"character","chunk_size":0}`,
		`not json`,
	} {
		_, err := Decode(json.RawMessage(raw))
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, chunkdown.ErrConfig), raw)
	}
}
