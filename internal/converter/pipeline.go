package converter

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/yuanying/epub32/internal/epub"
)

// ConvertOptions holds options for the conversion pipeline.
type ConvertOptions struct {
	InputPath  string
	OutputPath string
	Logger     *slog.Logger // nil means slog.Default()
}

// Pipeline orchestrates the EPUB 3 to EPUB 2 downgrade of one file.
// Each pipeline is fully self-contained, so a batch caller may run one
// per file concurrently.
type Pipeline struct {
	Options ConvertOptions
}

// NewPipeline creates a new conversion pipeline.
func NewPipeline(opts ConvertOptions) *Pipeline {
	return &Pipeline{Options: opts}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Options.Logger != nil {
		return p.Options.Logger
	}
	return slog.Default()
}

// Convert executes the conversion. The output archive is buffered fully
// in memory and published only after every stage succeeded, so a failed
// conversion never leaves a partially-written file behind.
func (p *Pipeline) Convert() error {
	reader, err := epub.Open(p.Options.InputPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	opfData, err := reader.ReadFile(reader.OPFPath())
	if err != nil {
		return fmt.Errorf("failed to read package document: %w", err)
	}

	opf, err := epub.ParseOPF(opfData)
	if err != nil {
		return fmt.Errorf("failed to parse package document: %w", err)
	}

	items, err := epub.LoadNavTree(reader, opf)
	if err != nil {
		if !errors.Is(err, epub.ErrEntryNotFound) {
			return fmt.Errorf("failed to load navigation document: %w", err)
		}
		// A declared but missing nav document still converts, with an
		// empty table of contents.
		p.logger().Warn("navigation document missing, emitting empty TOC", "error", err)
		items = nil
	}

	ncx := BuildNCX(items, opf.Metadata)

	patched, err := PatchOPF(opfData)
	if err != nil {
		return fmt.Errorf("failed to patch package document: %w", err)
	}

	ncxPath := "toc.ncx"
	if opfDir := path.Dir(reader.OPFPath()); opfDir != "." {
		ncxPath = path.Join(opfDir, "toc.ncx")
	}

	var buf bytes.Buffer
	if err := writeArchive(&buf, reader, patched, ncxPath, []byte(ncx)); err != nil {
		return fmt.Errorf("failed to write output archive: %w", err)
	}

	if err := os.WriteFile(p.Options.OutputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	return nil
}
