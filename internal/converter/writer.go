package converter

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/yuanying/epub32/internal/epub"
)

// writeArchive emits the output container: the mimetype entry first and
// stored uncompressed (the OCF convention readers sniff for), then every
// input entry in its original order with standard compression, swapping
// in the patched package document, and finally the synthesized NCX.
func writeArchive(w io.Writer, r *epub.Reader, patchedOPF []byte, ncxPath string, ncx []byte) error {
	zw := zip.NewWriter(w)

	if r.HasEntry("mimetype") {
		data, err := r.ReadFile("mimetype")
		if err != nil {
			return err
		}
		mw, err := zw.CreateHeader(&zip.FileHeader{
			Name:   "mimetype",
			Method: zip.Store,
		})
		if err != nil {
			return fmt.Errorf("failed to create mimetype entry: %w", err)
		}
		if _, err := mw.Write(data); err != nil {
			return fmt.Errorf("failed to write mimetype entry: %w", err)
		}
	}

	opfPath := r.OPFPath()
	for _, f := range r.Entries() {
		if f.Name == "mimetype" {
			continue
		}

		data, err := r.ReadFile(f.Name)
		if err != nil {
			return err
		}
		if f.Name == opfPath {
			data = patchedOPF
		}

		ew, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", f.Name, err)
		}
		if _, err := ew.Write(data); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", f.Name, err)
		}
	}

	// An input that already carries an NCX at this path (a previous
	// conversion, or a dual EPUB 2/3 publication) keeps it; appending a
	// second entry under the same name would break idempotence.
	if !r.HasEntry(ncxPath) {
		nw, err := zw.Create(ncxPath)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", ncxPath, err)
		}
		if _, err := nw.Write(ncx); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", ncxPath, err)
		}
	}

	return zw.Close()
}
