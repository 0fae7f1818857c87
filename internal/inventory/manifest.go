// Package inventory reads the text manifests listing which archive files each
// storage medium holds, and intersects requests with them.
//
// A manifest is a plain listing of file base names, one per line, with
// optional marker lines:
//
//	#!HOSTNAME=realin15
//	#!MERAROOT=/run/media/archive/reaext03
//	MERA_PRODYEAR_2017_09_11_105_2_0_ANALYSIS
//	MERA_PRODYEAR_2017_10_11_105_2_0_ANALYSIS.bz2
//
// Lines not starting with "MERA" (blank lines, other markers, directory
// listings) are ignored.
package inventory

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/mera"
)

const (
	hostMarker      = "#!HOSTNAME="
	rootMarker      = "#!MERAROOT="
	generatedMarker = "#!GENERATED="

	// AllMedia names the merged manifest covering every medium.
	AllMedia = "all"
)

// Manifest lists the archive files present on one medium.
type Manifest struct {
	Host  string
	Root  string
	Files []string
}

// ParseManifest reads a manifest. The first HOSTNAME and MERAROOT markers win.
func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, hostMarker):
			if m.Host == "" {
				m.Host = strings.TrimSpace(strings.TrimPrefix(line, hostMarker))
			}
		case strings.HasPrefix(line, rootMarker):
			if m.Root == "" {
				m.Root = strings.TrimSpace(strings.TrimPrefix(line, rootMarker))
			}
		case strings.HasPrefix(line, mera.ArchiveTag):
			m.Files = append(m.Files, line)
		}
	}
	if err := sc.Err(); err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return m, nil
}

// ManifestPath returns the manifest file of a medium inside dir.
func ManifestPath(dir, medium string) string {
	if medium == AllMedia {
		return path.Join(dir, "allmerafiles.txt")
	}
	return path.Join(dir, "merafiles_"+medium+".txt")
}

// WriteManifest writes m with its markers and a generation stamp.
func WriteManifest(w io.Writer, m Manifest, generated time.Time) error {
	bw := bufio.NewWriter(w)
	if m.Host != "" {
		fmt.Fprintf(bw, "%s%s\n", hostMarker, m.Host)
	}
	if m.Root != "" {
		fmt.Fprintf(bw, "%s%s\n", rootMarker, m.Root)
	}
	if !generated.IsZero() {
		fmt.Fprintf(bw, "%s%s\n", generatedMarker, generated.UTC().Format(time.RFC3339))
	}
	for _, f := range m.Files {
		fmt.Fprintln(bw, f)
	}
	return bw.Flush()
}

// Entry is a manifest line parsed as an archive file name.
type Entry struct {
	Name       string
	File       mera.FileName
	Compressed bool
}

// Entries parses every manifest line. Lines that do not follow the archive
// naming convention are returned separately.
func (m Manifest) Entries() (entries []Entry, malformed []string) {
	entries = make([]Entry, 0, len(m.Files))
	for _, name := range m.Files {
		f, err := mera.ParseFileName(name)
		if err != nil {
			malformed = append(malformed, name)
			continue
		}
		entries = append(entries, Entry{
			Name:       name,
			File:       f,
			Compressed: strings.HasSuffix(name, mera.CompressionSuffix),
		})
	}
	return entries, malformed
}

// Months returns the first-of-month date of every parseable file.
func (m Manifest) Months() []time.Time {
	entries, _ := m.Entries()
	months := make([]time.Time, len(entries))
	for i, e := range entries {
		months[i] = e.File.MonthStart()
	}
	return months
}

// RemotePath returns the absolute path of an archive file on the medium.
func (m Manifest) RemotePath(name string) (string, error) {
	rel, err := mera.ExpandPathFromRoot(name)
	if err != nil {
		return "", err
	}
	return path.Join(m.Root, rel), nil
}
