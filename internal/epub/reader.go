package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reader provides access to EPUB container contents
type Reader struct {
	zipReader *zip.ReadCloser
	files     map[string]*zip.File
	opfPath   string
}

// container.xml structure
type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

var (
	ErrInvalidArchive     = errors.New("input is not a valid zip archive")
	ErrMalformedContainer = errors.New("META-INF/container.xml missing or malformed")
	ErrEntryNotFound      = errors.New("archive entry not found")
)

// Open opens an EPUB container and locates its package document.
// The mimetype entry is deliberately not validated here: the point of a
// downgrade tool is to accept sloppy EPUB 3 input, and the writer
// re-emits the mimetype first and uncompressed on output anyway.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	reader := &Reader{
		zipReader: zr,
		files:     make(map[string]*zip.File),
	}

	// Build file map with normalized paths
	for _, f := range zr.File {
		name := normalizePath(f.Name)
		reader.files[name] = f
	}

	// Parse container.xml to get OPF path
	if err := reader.parseContainer(); err != nil {
		zr.Close()
		return nil, err
	}

	return reader, nil
}

// Close closes the underlying archive
func (r *Reader) Close() error {
	return r.zipReader.Close()
}

// OPFPath returns the path to the package document
func (r *Reader) OPFPath() string {
	return r.opfPath
}

// Entries returns the archive entries in their original order
func (r *Reader) Entries() []*zip.File {
	return r.zipReader.File
}

// HasEntry reports whether an entry exists under the given name
func (r *Reader) HasEntry(path string) bool {
	_, ok := r.files[normalizePath(path)]
	return ok
}

// ReadFile reads the contents of a file from the container
func (r *Reader) ReadFile(path string) ([]byte, error) {
	path = normalizePath(path)
	f, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", path, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// parseContainer parses container.xml to extract the OPF path
func (r *Reader) parseContainer() error {
	content, err := r.ReadFile("META-INF/container.xml")
	if err != nil {
		return ErrMalformedContainer
	}

	var c container
	if err := xml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}

	// Find the OPF file path
	for _, rf := range c.Rootfiles.Rootfile {
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			r.opfPath = normalizePath(rf.FullPath)
			return nil
		}
	}

	// If no media-type match, use the first one
	if len(c.Rootfiles.Rootfile) > 0 {
		r.opfPath = normalizePath(c.Rootfiles.Rootfile[0].FullPath)
		return nil
	}

	return fmt.Errorf("%w: no rootfile declared", ErrMalformedContainer)
}

// normalizePath normalizes file paths (removes ./ prefix)
func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "./")
	return path
}
