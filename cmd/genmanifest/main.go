// Command genmanifest writes a synthetic medium manifest listing every
// archive file of a variable set over a range of months. It also writes a
// matching resolve-request fixture for pipeline tests and dry runs.
//
// Usage:
//
//	go run ./cmd/genmanifest \
//	  -preset mydata -start 2016-12-01 -stop 2017-03-01 \
//	  -host realin15 -root /run/media/archive/reaext03 \
//	  -out filesystems/merafiles_reaext03.txt \
//	  -requests-out internal/integration/testdata/requests.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/inventory"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/varset"
	"github.com/jonboulle/clockwork"
)

// fixedGenerated stamps reproducible manifests.
var fixedGenerated = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)

type options struct {
	vars        []mera.Variable
	start, stop time.Time
	streams     []mera.Stream
	host, root  string
	compressed  int // every n-th file gets the .bz2 suffix; 0 disables
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	preset := flag.String("preset", varset.PresetSample, "built-in variable set")
	varsetPath := flag.String("varset", "", "YAML variable-set document (overrides -preset)")
	start := flag.String("start", "", "first month, YYYY-MM-DD")
	stop := flag.String("stop", "", "end month, exclusive, YYYY-MM-DD")
	streams := flag.String("streams", "ANALYSIS,FC3hr", "comma-separated streams")
	host := flag.String("host", "localhost", "HOSTNAME marker")
	root := flag.String("root", "/data/mera", "MERAROOT marker")
	compressed := flag.Int("compressed-every", 0, "mark every n-th file as .bz2")
	out := flag.String("out", "", "manifest output path")
	requestsOut := flag.String("requests-out", "", "optional resolve-request fixture output path")
	realClock := flag.Bool("real-clock", false, "stamp the current time instead of a fixed one")
	flag.Parse()

	if *start == "" || *stop == "" || *out == "" {
		flag.Usage()
		return errors.New("missing required flags: -start, -stop, -out")
	}

	opts := options{host: *host, root: *root, compressed: *compressed}
	var err error
	if *varsetPath != "" {
		opts.vars, err = varset.ReadFile(*varsetPath)
	} else {
		var ok bool
		opts.vars, ok = varset.ByName(*preset)
		if !ok {
			err = fmt.Errorf("unknown preset %q", *preset)
		}
	}
	if err != nil {
		return err
	}
	if opts.start, err = mera.ParseDate(*start); err != nil {
		return err
	}
	if opts.stop, err = mera.ParseDate(*stop); err != nil {
		return err
	}
	for _, s := range strings.Split(*streams, ",") {
		st, err := mera.ParseStream(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		opts.streams = append(opts.streams, st)
	}

	var clock clockwork.Clock = clockwork.NewFakeClockAt(fixedGenerated)
	if *realClock {
		clock = clockwork.NewRealClock()
	}

	m, err := buildManifest(mera.NewResolver(mera.DefaultTable()), opts)
	if err != nil {
		return err
	}
	if err := writeManifest(*out, m, clock.Now()); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	log.Printf("wrote %d files to %s", len(m.Files), *out)

	if *requestsOut != "" {
		reqs, err := buildRequests(opts)
		if err != nil {
			return err
		}
		if err := writeJSON(*requestsOut, reqs); err != nil {
			return fmt.Errorf("writing request fixture: %w", err)
		}
		log.Printf("wrote %d requests to %s", len(reqs), *requestsOut)
	}
	return nil
}

// buildManifest lists every file of the variables for each month in
// [start, stop) and stream.
func buildManifest(r *mera.Resolver, opts options) (inventory.Manifest, error) {
	months, err := monthRange(opts.start, opts.stop)
	if err != nil {
		return inventory.Manifest{}, err
	}
	names, err := r.FileNames(opts.vars, months, opts.streams)
	if err != nil {
		return inventory.Manifest{}, err
	}
	m := inventory.Manifest{Host: opts.host, Root: opts.root, Files: names}
	if opts.compressed > 0 {
		for i := range m.Files {
			if (i+1)%opts.compressed == 0 {
				m.Files[i] += mera.CompressionSuffix
			}
		}
	}
	return m, nil
}

// buildRequests emits one request per variable at noon on the 15th of each
// month.
func buildRequests(opts options) ([]mera.ResolveRequest, error) {
	months, err := monthRange(opts.start, opts.stop)
	if err != nil {
		return nil, err
	}
	reqs := make([]mera.ResolveRequest, 0, len(months)*len(opts.vars))
	for _, m := range months {
		for _, v := range opts.vars {
			reqs = append(reqs, mera.ResolveRequest{
				Variable:  v.String(),
				ValidTime: m.AddDate(0, 0, 14).Add(12 * time.Hour),
			})
		}
	}
	return reqs, nil
}

func monthRange(start, stop time.Time) ([]time.Time, error) {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !stop.After(first) {
		return nil, fmt.Errorf("stop %s is not after start %s", stop.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	var months []time.Time
	for m := first; m.Before(stop); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months, nil
}

func writeManifest(path string, m inventory.Manifest, generated time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := inventory.WriteManifest(f, m, generated); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
