package discovery

import (
	"context"
	"fmt"
	"path"
)

// File is one document produced by a Strategy.
type File struct {
	// Dir is the directory relative to the output root.
	Dir string
	// Base is the file name without sequence number and extension.
	Base string
	Doc  any
}

// Name returns the path of the file for seq, relative to the output root.
func (f File) Name(seq int) string {
	return path.Join(f.Dir, fmt.Sprintf("%s-%d.json", f.Base, seq))
}

// Strategy generates the files of one document version.
type Strategy interface {
	// Version returns the document version.
	Version() int
	// Generate builds every file of the version, stamped with seq.
	// The first file is the entry point that clients download.
	Generate(ctx context.Context, seq int) ([]File, error)
}
