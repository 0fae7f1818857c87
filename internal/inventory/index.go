package inventory

import (
	"path"
	"strings"

	"github.com/couchcryptid/mera-explorer/internal/mera"
)

// Index is a name set over a manifest's files for constant-time lookups.
type Index struct {
	names map[string]struct{}
}

// NewIndex indexes the files of m.
func NewIndex(m Manifest) *Index {
	names := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		names[f] = struct{}{}
	}
	return &Index{names: names}
}

// Has reports whether name is listed verbatim.
func (ix *Index) Has(name string) bool {
	_, ok := ix.names[name]
	return ok
}

// Len returns the number of distinct files.
func (ix *Index) Len() int {
	return len(ix.names)
}

// Present returns the manifest entries matching a requested file, compared by
// base name. Unless excludeCompressed, the ".bz2" copy matches as well.
func (ix *Index) Present(requested string, excludeCompressed bool) []string {
	base := path.Base(requested)
	var found []string
	if !(excludeCompressed && strings.HasSuffix(base, mera.CompressionSuffix)) && ix.Has(base) {
		found = append(found, base)
	}
	if !excludeCompressed && ix.Has(base+mera.CompressionSuffix) {
		found = append(found, base+mera.CompressionSuffix)
	}
	return found
}
