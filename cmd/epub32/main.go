package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuanying/epub32/internal/converter"
)

type cliOptions struct {
	InputPath  string
	OutputPath string
	Logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epub32 <input.epub | directory>",
		Short: "Downgrade EPUB 3 files for EPUB 2 reading systems",
		Long: `epub32 rewrites an EPUB 3 publication so that EPUB 2 reading systems
can open it: it derives a legacy toc.ncx from the EPUB 3 navigation
document, downgrades the package version and registers the NCX in the
manifest and spine. All other entries are copied byte-for-byte.

Given a directory, every *.epub file in it is converted; a failing file
is reported and skipped, the rest of the batch continues.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}

			info, err := os.Stat(opts.InputPath)
			if err != nil {
				return fmt.Errorf("cannot read input: %w", err)
			}
			if info.IsDir() {
				return runBatch(opts)
			}
			return runSingle(opts)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file (or output directory in batch mode)")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().String("log-format", "text", "Log format: text, json")
	cmd.Flags().BoolP("verbose", "v", false, "Shorthand for --log-level debug")

	return cmd
}

// readCLIOptions validates flags and assembles the options for a run.
// The default output path is resolved later, once the input is known to
// be a file or a directory.
func readCLIOptions(cmd *cobra.Command, args []string) (cliOptions, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	switch strings.ToLower(logLevel) {
	case "debug", "info", "warn", "error":
	default:
		return cliOptions{}, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", logLevel)
	}

	logFormat, _ := cmd.Flags().GetString("log-format")
	switch strings.ToLower(logFormat) {
	case "text", "json":
	default:
		return cliOptions{}, fmt.Errorf("invalid --log-format %q (want text or json)", logFormat)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = "debug"
	}

	output, _ := cmd.Flags().GetString("output")

	return cliOptions{
		InputPath:  args[0],
		OutputPath: output,
		Logger:     buildLogger(os.Stderr, logLevel, logFormat),
	}, nil
}

// buildLogger constructs the slog logger for the run.
func buildLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// defaultOutputPath derives the output filename for a single input file.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_epub2" + ext
}

func runSingle(opts cliOptions) error {
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = defaultOutputPath(opts.InputPath)
	}

	opts.Logger.Info("converting", "input", opts.InputPath, "output", outputPath)

	p := converter.NewPipeline(converter.ConvertOptions{
		InputPath:  opts.InputPath,
		OutputPath: outputPath,
		Logger:     opts.Logger,
	})
	if err := p.Convert(); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	opts.Logger.Info("done", "output", outputPath)
	return nil
}

// runBatch converts every *.epub in the input directory. A failing file
// is logged and skipped; the batch only errors out when nothing
// converted at all.
func runBatch(opts cliOptions) error {
	outDir := opts.OutputPath
	if outDir == "" {
		outDir = strings.TrimRight(opts.InputPath, "/\\") + "_epub2"
	}

	files, err := filepath.Glob(filepath.Join(opts.InputPath, "*.epub"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		opts.Logger.Warn("no .epub files found", "dir", opts.InputPath)
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	failed := 0
	for _, file := range files {
		outputPath := filepath.Join(outDir, filepath.Base(file))
		p := converter.NewPipeline(converter.ConvertOptions{
			InputPath:  file,
			OutputPath: outputPath,
			Logger:     opts.Logger,
		})
		if err := p.Convert(); err != nil {
			failed++
			opts.Logger.Error("conversion failed", "file", filepath.Base(file), "error", err)
			continue
		}
		opts.Logger.Info("converted", "file", filepath.Base(file), "output", outputPath)
	}

	opts.Logger.Info("batch complete", "total", len(files), "failed", failed)
	if failed == len(files) {
		return fmt.Errorf("all %d conversions failed", failed)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
