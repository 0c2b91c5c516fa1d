// Package source reads the water-quality dataset from a configured
// location and turns it into a tagged load result.
package source

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Source fetches the raw text of a delimited dataset.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	Location() string
}

// Open picks a Source for location: http(s) URLs are fetched over HTTP,
// file:// URLs and bare paths are read from disk.
func Open(location string, opts HTTPOptions) (Source, error) {
	loc := strings.TrimSpace(location)
	switch {
	case loc == "":
		return nil, eris.New("source: empty location")
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return NewHTTPSource(loc, opts), nil
	case strings.HasPrefix(loc, "file://"):
		return &FileSource{Path: strings.TrimPrefix(loc, "file://")}, nil
	default:
		return &FileSource{Path: loc}, nil
	}
}

// FileSource reads the dataset from the local filesystem.
type FileSource struct {
	Path string
}

// Fetch reads the whole file.
func (f *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "source: file read cancelled")
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", eris.Wrapf(err, "source: read %s", f.Path)
	}
	return string(data), nil
}

// Location returns the file path.
func (f *FileSource) Location() string {
	return f.Path
}
