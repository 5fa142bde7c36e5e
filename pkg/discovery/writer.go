package discovery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// Encode renders a document the way it is published: indented with four
// spaces, slashes and non-ASCII text left as is, ending in a newline.
func Encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Writer stores documents with compressed copies under an output directory.
type Writer struct {
	fs     afero.Fs
	root   string
	brotli bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithBrotli also writes a .br copy of every document.
func WithBrotli(enabled bool) WriterOption {
	return func(w *Writer) {
		w.brotli = enabled
	}
}

// NewWriter returns a writer for root on fs. A nil fs selects the OS file system.
func NewWriter(fs afero.Fs, root string, opts ...WriterOption) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	w := &Writer{fs: fs, root: root}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the location of the file for seq.
func (w *Writer) Path(f File, seq int) string {
	return filepath.Join(w.root, filepath.FromSlash(f.Name(seq)))
}

func (w *Writer) variants(f File, seq int) []string {
	p := w.Path(f, seq)
	out := []string{p, p + ".gz"}
	if w.brotli {
		out = append(out, p+".br")
	}
	return out
}

// Write stores the JSON document for seq and its compressed copies, and
// returns the paths written.
func (w *Writer) Write(f File, seq int) ([]string, error) {
	data, err := Encode(f.Doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Name(seq), err)
	}
	p := w.Path(f, seq)
	if err := w.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	written := []string{p}
	if err := w.writeFile(p, data); err != nil {
		return nil, err
	}

	gz, err := gzipBytes(data)
	if err != nil {
		return written, fmt.Errorf("gzip %s: %w", p, err)
	}
	if err := w.writeFile(p+".gz", gz); err != nil {
		return written, err
	}
	written = append(written, p+".gz")

	if w.brotli {
		br, err := brotliBytes(data)
		if err != nil {
			return written, fmt.Errorf("brotli %s: %w", p, err)
		}
		if err := w.writeFile(p+".br", br); err != nil {
			return written, err
		}
		written = append(written, p+".br")
	}
	return written, nil
}

// Remove deletes the files written for seq. Missing files are ignored.
func (w *Writer) Remove(f File, seq int) error {
	var errs []error
	for _, p := range w.variants(f, seq) {
		if err := w.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Read returns the JSON document written for seq.
func (w *Writer) Read(f File, seq int) ([]byte, error) {
	return afero.ReadFile(w.fs, w.Path(f, seq))
}

// writeFile replaces path through a temporary file and a rename.
func (w *Writer) writeFile(path string, data []byte) error {
	tmp, err := afero.TempFile(w.fs, filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to write file %s: %w", path, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = w.fs.Remove(name)
		return fmt.Errorf("unable to write file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = w.fs.Remove(name)
		return fmt.Errorf("unable to write file %s: %w", path, err)
	}
	if err := w.fs.Rename(name, path); err != nil {
		_ = w.fs.Remove(name)
		return fmt.Errorf("unable to write file %s: %w", path, err)
	}
	return nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func brotliBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := io.Copy(bw, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
