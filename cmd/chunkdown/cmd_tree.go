package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/chunkdown/internal/mdast"
	"github.com/dgallion1/chunkdown/internal/render"
	"github.com/dgallion1/chunkdown/internal/section"
)

func treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [file]",
		Short: "Print the heading outline the splitter sees",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			blocks, err := mdast.Parse(text)
			if err != nil {
				return err
			}
			render.Outline(cmd.OutOrStdout(), section.Outline(section.Sectionize(blocks)))
			return nil
		},
	}
}
