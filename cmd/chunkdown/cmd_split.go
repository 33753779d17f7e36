package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
	"github.com/dgallion1/chunkdown/internal/render"
	"github.com/dgallion1/chunkdown/internal/splitter"
)

type splitFlags struct {
	kind      string
	chunkSize int
	ratio     float64
	fallback  string
	overlap   int
}

func (f *splitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kind, "kind", "k", string(splitter.KindMarkdown), "splitter: markdown, paragraph or character")
	cmd.Flags().IntVarP(&f.chunkSize, "chunk-size", "s", 0, "target chunk size in characters (default from config)")
	cmd.Flags().Float64Var(&f.ratio, "max-overflow-ratio", 0, "markdown: how far an intact unit may exceed the chunk size (default from config)")
	cmd.Flags().StringVar(&f.fallback, "fallback", "", "markdown: boundary or raw (default from config)")
	cmd.Flags().IntVar(&f.overlap, "overlap", 0, "paragraph and character: characters repeated between chunks")
}

// options builds splitter options from the configured defaults and any flags
// the user set.
func (f *splitFlags) options(cmd *cobra.Command) (splitter.Options, error) {
	opts, err := kindOptions(splitter.Kind(f.kind), f.size(cmd), f.overlap)
	if err != nil {
		return nil, err
	}
	if md, ok := opts.(splitter.MarkdownOptions); ok {
		if cmd.Flags().Changed("max-overflow-ratio") {
			md.MaxOverflowRatio = f.ratio
		}
		if cmd.Flags().Changed("fallback") {
			md.Fallback = chunkdown.Fallback(f.fallback)
		}
		opts = md
	}
	return opts, nil
}

func (f *splitFlags) size(cmd *cobra.Command) int {
	if cmd.Flags().Changed("chunk-size") {
		return f.chunkSize
	}
	return cfg.Chunking.ChunkSize
}

func splitCmd() *cobra.Command {
	var (
		flags   splitFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Split a document into chunks",
		Long: `Split a document into chunks and print them.

The file may be markdown, text, HTML, CSV, PDF or DOCX; it is converted to
markdown first. Without a file, markdown is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			sp, err := splitter.New(opts)
			if err != nil {
				return err
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			chunks, err := sp.Split(text)
			if err != nil {
				return fmt.Errorf("split: %w", err)
			}
			logger.Debug("split finished", "kind", sp.Kind(), "bytes", len(text), "chunks", len(chunks))

			out := cmd.OutOrStdout()
			if jsonOut {
				if chunks == nil {
					chunks = []chunkdown.Chunk{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(chunks)
			}
			render.Chunks(out, chunks, flags.size(cmd))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print chunks as JSON")
	return cmd
}
