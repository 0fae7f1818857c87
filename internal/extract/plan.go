// Package extract plans and collects gridded fields from the archive for a
// set of variables and validity times.
package extract

import (
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/mera"
)

// Item is one field to read: a variable at a validity time, located in a file
// under the archive root.
type Item struct {
	Location mera.Location
	Path     string
	Missing  bool
}

// Job is an ordered extraction plan, variable-major.
type Job struct {
	Root  string
	Items []Item
}

// Plan resolves every (variable, time) pair under root and checks the file
// with exists. Absent files are flagged, not fatal; only resolution errors
// abort. A nil exists uses FileExists.
func Plan(r *mera.Resolver, root string, vars []mera.Variable, times []time.Time, exists func(string) bool) (Job, error) {
	if exists == nil {
		exists = FileExists
	}
	locs, err := r.ResolveAll(vars, times)
	if err != nil {
		return Job{}, err
	}

	job := Job{Root: root, Items: make([]Item, len(locs))}
	checked := make(map[string]bool)
	for i, loc := range locs {
		p := filepath.Join(root, filepath.FromSlash(loc.PathFromRoot()))
		ok, seen := checked[p]
		if !seen {
			ok = exists(p)
			checked[p] = ok
		}
		job.Items[i] = Item{Location: loc, Path: p, Missing: !ok}
	}
	return job, nil
}

// Missing returns a MissingFile error for each distinct absent path.
func (j Job) Missing() []error {
	var errs []error
	seen := make(map[string]struct{})
	for _, it := range j.Items {
		if !it.Missing {
			continue
		}
		if _, dup := seen[it.Path]; dup {
			continue
		}
		seen[it.Path] = struct{}{}
		errs = append(errs, mera.MissingFile(it.Path))
	}
	return errs
}

// Files returns the distinct present file paths in plan order.
func (j Job) Files() []string {
	var files []string
	seen := make(map[string]struct{})
	for _, it := range j.Items {
		if it.Missing {
			continue
		}
		if _, dup := seen[it.Path]; dup {
			continue
		}
		seen[it.Path] = struct{}{}
		files = append(files, it.Path)
	}
	return files
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
