package inventory

import (
	"context"
	"fmt"
	"io/fs"
)

// Loader returns the manifest of a named medium.
type Loader interface {
	Load(ctx context.Context, medium string) (Manifest, error)
}

// FSLoader reads manifests from a directory of an fs.FS, typically os.DirFS.
type FSLoader struct {
	fsys fs.FS
	dir  string
}

// NewFSLoader creates a loader for manifests stored under dir in fsys.
func NewFSLoader(fsys fs.FS, dir string) *FSLoader {
	if dir == "" {
		dir = "."
	}
	return &FSLoader{fsys: fsys, dir: dir}
}

func (l *FSLoader) Load(ctx context.Context, medium string) (Manifest, error) {
	if err := ctx.Err(); err != nil {
		return Manifest{}, err
	}
	name := ManifestPath(l.dir, medium)
	f, err := l.fsys.Open(name)
	if err != nil {
		return Manifest{}, fmt.Errorf("open manifest for medium %q: %w", medium, err)
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("medium %q: %w", medium, err)
	}
	return m, nil
}
