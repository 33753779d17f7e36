package splitter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
)

// Kind names one of the splitting algorithms.
type Kind string

const (
	KindMarkdown  Kind = "markdown"
	KindParagraph Kind = "paragraph"
	KindCharacter Kind = "character"
)

// Kinds lists every algorithm in a stable order.
var Kinds = []Kind{KindMarkdown, KindParagraph, KindCharacter}

// Options configures one algorithm. The set of implementations is closed:
// MarkdownOptions, ParagraphOptions and CharacterOptions.
type Options interface {
	Kind() Kind
	Validate() error
	sealed()
}

// MarkdownOptions drives the structure-aware chunkdown splitter.
type MarkdownOptions struct {
	ChunkSize        int                `json:"chunk_size"`
	MaxOverflowRatio float64            `json:"max_overflow_ratio"`
	Fallback         chunkdown.Fallback `json:"fallback,omitempty"`
}

// ParagraphOptions drives blank-line packing with sentence fallback.
type ParagraphOptions struct {
	ChunkSize int `json:"chunk_size"`
	Overlap   int `json:"overlap"`
}

// CharacterOptions drives fixed rune windows.
type CharacterOptions struct {
	ChunkSize int `json:"chunk_size"`
	Overlap   int `json:"overlap"`
}

// DefaultMarkdownOptions mirrors chunkdown.DefaultConfig.
func DefaultMarkdownOptions() MarkdownOptions {
	c := chunkdown.DefaultConfig()
	return MarkdownOptions{ChunkSize: c.ChunkSize, MaxOverflowRatio: c.MaxOverflowRatio, Fallback: c.Fallback}
}

func DefaultParagraphOptions() ParagraphOptions {
	return ParagraphOptions{ChunkSize: 1000, Overlap: 0}
}

func DefaultCharacterOptions() CharacterOptions {
	return CharacterOptions{ChunkSize: 1000, Overlap: 0}
}

func (MarkdownOptions) Kind() Kind  { return KindMarkdown }
func (ParagraphOptions) Kind() Kind { return KindParagraph }
func (CharacterOptions) Kind() Kind { return KindCharacter }

func (MarkdownOptions) sealed()  {}
func (ParagraphOptions) sealed() {}
func (CharacterOptions) sealed() {}

// Config converts the options into a chunkdown configuration.
func (o MarkdownOptions) Config() chunkdown.Config {
	return chunkdown.Config{ChunkSize: o.ChunkSize, MaxOverflowRatio: o.MaxOverflowRatio, Fallback: o.Fallback}
}

func (o MarkdownOptions) Validate() error {
	return o.Config().Validate()
}

func (o ParagraphOptions) Validate() error {
	return validateWindow(o.ChunkSize, o.Overlap)
}

func (o CharacterOptions) Validate() error {
	return validateWindow(o.ChunkSize, o.Overlap)
}

func validateWindow(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", chunkdown.ErrConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", chunkdown.ErrConfig, size, overlap)
	}
	return nil
}

// Decode reads a {"kind": ..., ...} object into the matching Options variant.
// Fields missing from the object keep their defaults; fields that belong to
// another variant are rejected.
func Decode(raw json.RawMessage) (Options, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", chunkdown.ErrConfig, err)
	}

	var opts Options
	var err error
	switch head.Kind {
	case KindMarkdown:
		o := DefaultMarkdownOptions()
		err = decodeStrict(raw, &struct {
			Kind Kind `json:"kind"`
			*MarkdownOptions
		}{MarkdownOptions: &o})
		opts = o
	case KindParagraph:
		o := DefaultParagraphOptions()
		err = decodeStrict(raw, &struct {
			Kind Kind `json:"kind"`
			*ParagraphOptions
		}{ParagraphOptions: &o})
		opts = o
	case KindCharacter:
		o := DefaultCharacterOptions()
		err = decodeStrict(raw, &struct {
			Kind Kind `json:"kind"`
			*CharacterOptions
		}{CharacterOptions: &o})
		opts = o
	case "":
		return nil, fmt.Errorf("%w: missing kind", chunkdown.ErrConfig)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", chunkdown.ErrConfig, head.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s options: %v", chunkdown.ErrConfig, head.Kind, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func decodeStrict(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
