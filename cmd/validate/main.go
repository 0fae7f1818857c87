// Command validate checks a medium manifest against the archive naming
// convention and the standard name table: malformed lines, unknown codes,
// codes shared by several names, compressed duplicates, and optionally the
// monthly coverage of a variable set.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -manifest filesystems/merafiles_reaext03.txt \
//	  -preset neurallam -start 2015-01-01 -stop 2017-01-01
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/inventory"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/varset"
)

// phase tracks pass/fail for a validation phase. Warnings never fail it.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// coverage is the optional expected month range of a variable set.
type coverage struct {
	vars        []mera.Variable
	start, stop time.Time
}

func main() {
	manifestPath := flag.String("manifest", "", "manifest file to validate")
	preset := flag.String("preset", "", "variable set whose coverage is checked")
	start := flag.String("start", "", "first expected month, YYYY-MM-DD")
	stop := flag.String("stop", "", "end of expected months, exclusive")
	flag.Parse()

	if *manifestPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	var cov *coverage
	if *preset != "" {
		c, err := parseCoverage(*preset, *start, *stop)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(1)
		}
		cov = c
	}

	os.Exit(run(os.Stdout, *manifestPath, cov))
}

func parseCoverage(preset, start, stop string) (*coverage, error) {
	vars, ok := varset.ByName(preset)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", preset)
	}
	t0, err := mera.ParseDate(start)
	if err != nil {
		return nil, err
	}
	t1, err := mera.ParseDate(stop)
	if err != nil {
		return nil, err
	}
	return &coverage{vars: vars, start: t0, stop: t1}, nil
}

func run(w io.Writer, manifestPath string, cov *coverage) int {
	fmt.Fprintln(w, "=== MERA Manifest Validation ===")
	fmt.Fprintln(w)

	f, err := os.Open(manifestPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: open manifest: %v\n", err)
		return 1
	}
	m, err := inventory.ParseManifest(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}

	table := mera.DefaultTable()
	entries, malformed := m.Entries()

	phases := []*phase{
		validateStructure(m, malformed),
		validateCodes(table, entries),
		validateSharedCodes(table, entries),
		validateCompression(entries),
	}
	if cov != nil {
		phases = append(phases, validateCoverage(w, table, m, cov))
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %d listed, %d parsed, %d malformed (host %s, root %s)\n",
		len(m.Files), len(entries), len(malformed), m.Host, m.Root)

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
		for _, warn := range p.warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func validateStructure(m inventory.Manifest, malformed []string) *phase {
	p := &phase{name: "Manifest structure"}
	if m.Host == "" {
		p.warnf("no HOSTNAME marker")
	}
	if m.Root == "" {
		p.errorf("no MERAROOT marker: remote paths cannot be built")
	}
	if len(m.Files) == 0 {
		p.errorf("no archive files listed")
	}
	for _, name := range malformed {
		p.errorf("malformed file name %q", name)
	}
	return p
}

// validateCodes reports files whose parameter and time range match no table
// entry. Levels are not compared since any level can be requested by suffix.
func validateCodes(table mera.Table, entries []inventory.Entry) *phase {
	p := &phase{name: "Codes known to the name table"}
	type key struct{ param, timeRange int }
	known := make(map[key]struct{})
	for _, name := range table.Names() {
		c, _ := table.Lookup(name)
		known[key{c.Parameter, c.TimeRange}] = struct{}{}
	}

	unknown := make(map[mera.Code]int)
	for _, e := range entries {
		if _, ok := known[key{e.File.Code.Parameter, e.File.Code.TimeRange}]; !ok {
			unknown[e.File.Code]++
		}
	}
	for _, c := range sortedCodes(unknown) {
		p.errorf("code %s (%d files) has no standard name", c, unknown[c])
	}
	return p
}

// validateSharedCodes warns about files whose code more than one standard
// name resolves to.
func validateSharedCodes(table mera.Table, entries []inventory.Entry) *phase {
	p := &phase{name: "Shared table codes"}
	dups := table.Duplicates()
	hits := make(map[mera.Code]int)
	for _, e := range entries {
		if _, ok := dups[e.File.Code]; ok {
			hits[e.File.Code]++
		}
	}
	for _, c := range sortedCodes(hits) {
		p.warnf("code %s (%d files) is shared by %v", c, hits[c], dups[c])
	}
	return p
}

func validateCompression(entries []inventory.Entry) *phase {
	p := &phase{name: "Compressed duplicates"}
	plain := make(map[string]bool)
	for _, e := range entries {
		if !e.Compressed {
			plain[e.File.String()] = true
		}
	}
	for _, e := range entries {
		if e.Compressed && plain[e.File.String()] {
			p.warnf("%s is listed both plain and compressed", e.File)
		}
	}
	return p
}

// validateCoverage requires one analysis file per variable and expected
// month, and prints the per-month difference table.
func validateCoverage(w io.Writer, table mera.Table, m inventory.Manifest, cov *coverage) *phase {
	p := &phase{name: "Monthly coverage"}
	times, err := mera.TimeRange(cov.start, cov.stop, 24*time.Hour)
	if err != nil {
		p.errorf("expected range: %v", err)
		return p
	}
	months := firstOfMonths(times)

	resolver := mera.NewResolver(table)
	expected, err := resolver.FileNames(cov.vars, months, []mera.Stream{mera.StreamAnalysis})
	if err != nil {
		p.errorf("resolve variable set: %v", err)
		return p
	}
	present := inventory.FilterPresent(expected, m, false)
	have := make(map[string]bool, len(present))
	for _, name := range present {
		f, err := mera.ParseFileName(name)
		if err == nil {
			have[f.String()] = true
		}
	}

	var available, wanted []time.Time
	for _, name := range expected {
		f, _ := mera.ParseFileName(name)
		wanted = append(wanted, f.MonthStart())
		if have[name] {
			available = append(available, f.MonthStart())
			continue
		}
		p.errorf("missing %s", name)
	}

	fmt.Fprintln(w)
	mera.CountMonths(available, wanted).Format(w) //nolint:errcheck // report output
	return p
}

func firstOfMonths(times []time.Time) []time.Time {
	var months []time.Time
	var last time.Time
	for _, t := range times {
		m := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		if m.Equal(last) {
			continue
		}
		months = append(months, m)
		last = m
	}
	return months
}

func sortedCodes(counts map[mera.Code]int) []mera.Code {
	codes := make([]mera.Code, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].String() < codes[j].String() })
	return codes
}
