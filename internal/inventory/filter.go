package inventory

import (
	"sort"

	"github.com/couchcryptid/mera-explorer/internal/mera"
)

// FilterPresent returns the requested file names found in the manifest,
// sorted. Requests are compared by base name. With excludeCompressed the
// compressed manifest entries are ignored; otherwise a request also matches
// its ".bz2" copy and that entry is returned.
func FilterPresent(requested []string, m Manifest, excludeCompressed bool) []string {
	ix := NewIndex(m)
	seen := make(map[string]struct{}, len(requested))
	present := make([]string, 0, len(requested))
	for _, r := range requested {
		for _, name := range ix.Present(r, excludeCompressed) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			present = append(present, name)
		}
	}
	sort.Strings(present)
	return present
}

// PresentVariables returns the variables, in input order, with at least one
// file in the manifest. Matching is on the resolved code, not on substrings
// of the file name.
func PresentVariables(t mera.Table, vars []mera.Variable, m Manifest) ([]mera.Variable, error) {
	codes := make(map[mera.Code]struct{})
	entries, _ := m.Entries()
	for _, e := range entries {
		codes[e.File.Code] = struct{}{}
	}

	var present []mera.Variable
	for _, v := range vars {
		c, err := t.Resolve(v)
		if err != nil {
			return nil, err
		}
		if _, ok := codes[c]; ok {
			present = append(present, v)
		}
	}
	return present, nil
}

// CountFiles returns, per variable in input order, how many manifest files
// hold its code in any stream.
func CountFiles(t mera.Table, vars []mera.Variable, m Manifest) ([]int, error) {
	perCode := make(map[mera.Code]int)
	entries, _ := m.Entries()
	for _, e := range entries {
		perCode[e.File.Code]++
	}

	counts := make([]int, len(vars))
	for i, v := range vars {
		c, err := t.Resolve(v)
		if err != nil {
			return nil, err
		}
		counts[i] = perCode[c]
	}
	return counts, nil
}

// FilesForVariables returns every manifest file holding one of the variables
// in the given stream, in manifest order.
func FilesForVariables(t mera.Table, vars []mera.Variable, m Manifest, stream mera.Stream, excludeCompressed bool) ([]string, error) {
	codes := make(map[mera.Code]struct{}, len(vars))
	for _, v := range vars {
		c, err := t.Resolve(v)
		if err != nil {
			return nil, err
		}
		codes[c] = struct{}{}
	}

	entries, _ := m.Entries()
	var files []string
	for _, e := range entries {
		if e.File.Stream != stream || (excludeCompressed && e.Compressed) {
			continue
		}
		if _, ok := codes[e.File.Code]; ok {
			files = append(files, e.Name)
		}
	}
	return files, nil
}
