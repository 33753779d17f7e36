package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/chunkdown/internal/config"
	"github.com/dgallion1/chunkdown/internal/source"
	"github.com/dgallion1/chunkdown/internal/version"
)

var (
	cfg        *config.Config
	configPath string
)

func main() {
	// CHUNKDOWN_* variables may also come from a .env file.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "chunkdown",
		Short: "Structure-aware markdown chunking",
		Long: `chunkdown splits markdown into chunks that follow the document's structure.
Sections, lists, code blocks and tables stay whole while they fit; oversized
parts are cut at the coarsest boundary available.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("chunkdown %s\n", version.String()))
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a chunkdown.yaml config file")

	rootCmd.AddCommand(
		splitCmd(),
		compareCmd(),
		treeCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		if lvl, err := config.ParseLevel(cfg.Logging.Level); err == nil {
			level = lvl
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// readInput loads the named document as markdown, or reads stdin when no
// file or "-" is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	return source.LoadFile(args[0], source.Options{PDFFallbackPdftotext: cfg.Source.PDFFallbackPdftotext})
}
