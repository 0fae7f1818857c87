package transfer

import (
	"compress/bzip2"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/mera-explorer/internal/mera"
)

// Uncompress expands a .bz2 file next to itself, removes the archive, and
// returns the path of the expanded file.
func Uncompress(path string) (string, error) {
	if !strings.HasSuffix(path, mera.CompressionSuffix) {
		return "", fmt.Errorf("uncompress %s: no %s suffix", path, mera.CompressionSuffix)
	}
	target := strings.TrimSuffix(path, mera.CompressionSuffix)

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("uncompress %s: %w", path, err)
	}
	defer in.Close()

	if err := copyTo(target, bzip2.NewReader(in), 0o644); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("uncompress %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", err
	}
	return target, nil
}

// UncompressAll expands every .bz2 file below root and returns the expanded
// paths in walk order.
func UncompressAll(root string) ([]string, error) {
	var archives []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), mera.CompressionSuffix) {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(archives))
	for _, a := range archives {
		p, err := Uncompress(a)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}
