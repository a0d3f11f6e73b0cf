// Package cli implements the pdfmerge command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pdfmerge/config"
	"pdfmerge/merge"
	"pdfmerge/observability"
	"pdfmerge/parser"
)

var (
	flagConfig  string
	flagVersion string
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfmerge <input.pdf>... <output.pdf>",
	Short: "Merge PDF files into one",
	Long: `pdfmerge concatenates the pages of the given input files, in
argument order, into a single output file. The output is written
atomically: on any failure no partial file is left behind.`,
	Args:          cobra.MinimumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file")
	rootCmd.Flags().StringVar(&flagVersion, "pdf-version", "", "Header version of the output (overrides config)")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	inputs := args[:len(args)-1]
	output := args[len(args)-1]

	if err := validateInputs(inputs); err != nil {
		return err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	version := cfg.Version
	if flagVersion != "" {
		version = flagVersion
	}

	level := observability.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = observability.LevelDebug
	}
	var logger observability.Logger = observability.NopLogger{}
	if flagVerbose {
		logger = observability.NewTextLogger(cmd.ErrOrStderr(), level)
	}

	opts := merge.Options{
		Version: version,
		Logger:  logger,
		Limits: parser.Limits{
			MaxStringLength:     cfg.MaxStringLength,
			MaxStreamLength:     cfg.MaxStreamLength,
			MaxDecompressedSize: cfg.MaxDecompressedSize,
			MaxXRefDepth:        cfg.MaxXRefDepth,
		},
	}
	if !flagQuiet {
		opts.Progress = func(done, total int, path string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", done, total, path)
		}
	}

	if err := merge.Merge(cmd.Context(), inputs, output, opts); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
	}
	return nil
}

// validateInputs runs before any file is parsed.
func validateInputs(inputs []string) error {
	for _, path := range inputs {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s: is a directory", path)
		}
		if info.Size() == 0 {
			return fmt.Errorf("%s: file is empty", path)
		}
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return fmt.Errorf("%s: not a .pdf file", path)
		}
	}
	return nil
}
