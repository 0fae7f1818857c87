package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/urfave/cli/v2"
)

func resolveCommand() *cli.Command {
	flags := append(variableFlags(), timeFlags(false)...)
	flags = append(flags,
		&cli.BoolFlag{Name: "files", Usage: "print the distinct file names only"},
		&cli.StringSliceFlag{Name: "stream", Usage: "streams for --files (ANALYSIS, FC3hr, FC33hr)"},
		&cli.BoolFlag{Name: "json", Usage: "print locations as JSON lines"},
	)
	return &cli.Command{
		Name:      "resolve",
		Usage:     "map variables and validity times to archive files",
		ArgsUsage: "[variables...]",
		Flags:     flags,
		Action:    runResolve,
	}
}

func runResolve(cCtx *cli.Context) error {
	vars, err := loadVariables(cCtx)
	if err != nil {
		return err
	}
	resolver := mera.NewResolver(mera.DefaultTable())
	out := cCtx.App.Writer

	if cCtx.String("start") == "" {
		// no time: print codes only
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VARIABLE\tCODE")
		for _, v := range vars {
			c, err := resolver.Code(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\n", v, c)
		}
		return tw.Flush()
	}

	times, err := timesFrom(cCtx)
	if err != nil {
		return err
	}

	if cCtx.Bool("files") {
		streams, err := parseStreams(cCtx.StringSlice("stream"))
		if err != nil {
			return err
		}
		names, err := resolver.FileNames(vars, times, streams)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return nil
	}

	locs, err := resolver.ResolveAll(vars, times)
	if err != nil {
		return err
	}
	if cCtx.Bool("json") {
		enc := json.NewEncoder(out)
		for _, loc := range locs {
			if err := enc.Encode(mera.NewResolvedLocation(loc)); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tVALID\tPATH\tINDEX\tLEAD")
	for _, loc := range locs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			loc.Variable, loc.ValidTime.Format(time.DateTime), loc.PathFromRoot(), loc.Index, loc.LeadTime)
	}
	return tw.Flush()
}
