package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/chunkdown/internal/compare"
	"github.com/dgallion1/chunkdown/internal/render"
	"github.com/dgallion1/chunkdown/internal/splitter"
)

func compareCmd() *cobra.Command {
	var (
		sizes   []int
		kinds   []string
		overlap int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "compare [file]",
		Short: "Run several splitters over one document and summarise the results",
		Long: `Run every requested splitter at every requested chunk size concurrently and
print a summary per run: chunk count, largest chunk and time taken.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			if len(sizes) == 0 {
				sizes = []int{cfg.Chunking.ChunkSize}
			}
			var runs []compare.Run
			for _, size := range sizes {
				for _, k := range kinds {
					opts, err := kindOptions(splitter.Kind(k), size, overlap)
					if err != nil {
						return err
					}
					runs = append(runs, compare.Run{Name: fmt.Sprintf("%s/%d", k, size), Options: opts})
				}
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			stats := compare.NewStats(cfg.Compare.StatsWindow)
			runner := compare.NewRunner(cfg.Compare.Concurrency, stats, logger)
			results, err := runner.Compare(cmd.Context(), text, runs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			render.Comparison(out, results)
			return nil
		},
	}

	cmd.Flags().IntSliceVarP(&sizes, "chunk-sizes", "s", nil, "chunk sizes to try (default: the configured size)")
	cmd.Flags().StringSliceVarP(&kinds, "kinds", "k", []string{"markdown", "paragraph", "character"}, "splitters to run")
	cmd.Flags().IntVar(&overlap, "overlap", 0, "overlap for paragraph and character runs")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	return cmd
}

// kindOptions configures kind at size, taking the other markdown settings
// from config.
func kindOptions(kind splitter.Kind, size, overlap int) (splitter.Options, error) {
	switch kind {
	case splitter.KindMarkdown:
		def := cfg.ChunkConfig()
		return splitter.MarkdownOptions{ChunkSize: size, MaxOverflowRatio: def.MaxOverflowRatio, Fallback: def.Fallback}, nil
	case splitter.KindParagraph:
		return splitter.ParagraphOptions{ChunkSize: size, Overlap: overlap}, nil
	case splitter.KindCharacter:
		return splitter.CharacterOptions{ChunkSize: size, Overlap: overlap}, nil
	}
	return nil, fmt.Errorf("unknown splitter kind %q (want one of %v)", kind, splitter.Kinds)
}
