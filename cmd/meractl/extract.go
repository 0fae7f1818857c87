package main

import (
	"fmt"
	"log/slog"
	"sort"
	"text/tabwriter"

	"github.com/couchcryptid/mera-explorer/internal/extract"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/urfave/cli/v2"
)

func extractCommand() *cli.Command {
	flags := append(variableFlags(), timeFlags(true)...)
	flags = append(flags,
		&cli.StringFlag{Name: "root", Required: true, Usage: "local archive root containing mera/", EnvVars: []string{"MERA_ROOT_DIR"}},
		&cli.StringFlag{Name: "suffix", Value: ".nc", Usage: "suffix of the NetCDF conversion next to each archive file"},
		&cli.BoolFlag{Name: "plan", Usage: "print the plan without reading fields"},
	)
	return &cli.Command{
		Name:      "extract",
		Usage:     "read fields for variables and times and summarise them",
		ArgsUsage: "[variables...]",
		Flags:     flags,
		Action:    runExtract,
	}
}

func runExtract(cCtx *cli.Context) error {
	vars, err := loadVariables(cCtx)
	if err != nil {
		return err
	}
	times, err := timesFrom(cCtx)
	if err != nil {
		return err
	}

	src := extract.NewNetCDFSource()
	src.Suffix = cCtx.String("suffix")
	exists := func(p string) bool { return extract.FileExists(p + src.Suffix) }

	job, err := extract.Plan(mera.NewResolver(mera.DefaultTable()), cCtx.String("root"), vars, times, exists)
	if err != nil {
		return err
	}
	for _, err := range job.Missing() {
		slog.Warn("missing file", "error", err)
	}

	out := cCtx.App.Writer
	if cCtx.Bool("plan") {
		for _, it := range job.Items {
			state := "ok"
			if it.Missing {
				state = "missing"
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%d\t%s\n", it.Location.Variable, it.Location.ValidTime.Format("2006-01-02 15:04"), it.Path, it.Location.Index, state)
		}
		return nil
	}

	report, err := extract.Collect(cCtx.Context, job, src)
	if err != nil {
		return err
	}
	for _, f := range report.Failures {
		slog.Warn("read failed", "error", f.Err)
	}

	byVar := report.ByVariable()
	names := make([]string, 0, len(byVar))
	for name := range byVar {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tFIELDS\tMIN\tMEAN\tMAX")
	for _, name := range names {
		s := extract.Stats(byVar[name]...)
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%.4g\t%.4g\n", name, len(byVar[name]), s.Min, s.Mean, s.Max)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d fields, %d skipped, %d failed\n", len(report.Fields), len(report.Skipped), len(report.Failures))
	return nil
}
