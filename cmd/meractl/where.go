package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/inventory"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/urfave/cli/v2"
)

func whereCommand() *cli.Command {
	flags := append(variableFlags(), timeFlags(false)...)
	flags = append(flags,
		&cli.StringFlag{Name: "medium", Value: inventory.AllMedia, Usage: "medium whose manifest is read"},
		&cli.BoolFlag{Name: "months", Usage: "print the per-month file table"},
	)
	return &cli.Command{
		Name:      "where",
		Usage:     "report which variables a medium holds",
		ArgsUsage: "[variables...]",
		Flags:     flags,
		Action:    runWhere,
	}
}

func runWhere(cCtx *cli.Context) error {
	vars, err := loadVariables(cCtx)
	if err != nil {
		return err
	}
	medium := cCtx.String("medium")
	m, _, err := loadManifest(cCtx, medium)
	if err != nil {
		return err
	}
	table := mera.DefaultTable()

	if entries, malformed := m.Entries(); len(malformed) > 0 {
		slog.Warn("manifest has malformed lines", "medium", medium, "malformed", len(malformed), "entries", len(entries))
	}

	counts, err := inventory.CountFiles(table, vars, m)
	if err != nil {
		return err
	}

	out := cCtx.App.Writer
	fmt.Fprintf(out, "medium %s on %s (root %s), %d files\n", medium, m.Host, m.Root, len(m.Files))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tCODE\tFILES")
	var missing []mera.Variable
	for i, v := range vars {
		c, _ := table.Resolve(v)
		fmt.Fprintf(tw, "%s\t%s\t%d\n", v, c, counts[i])
		if counts[i] == 0 {
			missing = append(missing, v)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d of %d variables are missing\n", len(missing), len(vars))
	for _, v := range missing {
		fmt.Fprintf(out, "  %s\n", v)
	}

	if !cCtx.Bool("months") {
		return nil
	}

	names, err := inventory.FilesForVariables(table, vars, m, mera.StreamAnalysis, false)
	if err != nil {
		return err
	}
	available := make([]time.Time, 0, len(names))
	for _, n := range names {
		f, err := mera.ParseFileName(n)
		if err != nil {
			continue
		}
		available = append(available, f.MonthStart())
	}

	// with a time range, each cell is files present minus files expected
	var expected []time.Time
	if cCtx.String("start") != "" {
		times, err := timesFrom(cCtx)
		if err != nil {
			return err
		}
		months := monthStarts(times)
		for range vars {
			expected = append(expected, months...)
		}
	}
	fmt.Fprintln(out)
	return mera.CountMonths(available, expected).Format(out)
}

// monthStarts reduces times to the distinct first-of-month dates.
func monthStarts(times []time.Time) []time.Time {
	var months []time.Time
	seen := make(map[time.Time]struct{})
	for _, t := range times {
		t = t.UTC()
		m := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	return months
}
