// Package splitter exposes the chunking algorithms behind one interface so
// they can be run and compared side by side.
package splitter

import (
	"fmt"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
)

// Splitter cuts a document into chunks.
type Splitter interface {
	Kind() Kind
	Split(text string) ([]chunkdown.Chunk, error)
}

// New validates opts and returns the splitter it configures.
func New(opts Options) (Splitter, error) {
	if opts == nil {
		return nil, fmt.Errorf("%w: no options", chunkdown.ErrConfig)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch o := opts.(type) {
	case MarkdownOptions:
		return markdownSplitter{cfg: o.Config()}, nil
	case ParagraphOptions:
		return paragraphSplitter{opts: o}, nil
	case CharacterOptions:
		return characterSplitter{opts: o}, nil
	}
	return nil, fmt.Errorf("%w: unsupported options %T", chunkdown.ErrConfig, opts)
}

type markdownSplitter struct {
	cfg chunkdown.Config
}

func (markdownSplitter) Kind() Kind { return KindMarkdown }

func (s markdownSplitter) Split(text string) ([]chunkdown.Chunk, error) {
	return chunkdown.Split(text, s.cfg)
}
