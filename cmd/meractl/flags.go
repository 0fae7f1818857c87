package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/config"
	"github.com/couchcryptid/mera-explorer/internal/inventory"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/varset"
	"github.com/urfave/cli/v2"
)

// variableFlags select variables by preset, YAML document, or positional args.
func variableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "preset",
			Usage: fmt.Sprintf("built-in variable set (%s, %s, %s, %s)", varset.PresetNeuralLAM, varset.PresetAdditional, varset.PresetAll, varset.PresetSample),
		},
		&cli.StringFlag{
			Name:  "varset",
			Usage: "YAML variable-set document",
		},
	}
}

func timeFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "start", Usage: "first validity time, YYYY-MM-DD[ HH[:MM]]", Required: required},
		&cli.StringFlag{Name: "stop", Usage: "end of the range, exclusive (default: start + step)"},
		&cli.StringFlag{Name: "step", Value: "3h", Usage: "time step, <n><d|h|m|s>"},
	}
}

// loadVariables merges the preset, document and positional variables in
// that order.
func loadVariables(cCtx *cli.Context) ([]mera.Variable, error) {
	var vars []mera.Variable
	if name := cCtx.String("preset"); name != "" {
		preset, ok := varset.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", name)
		}
		vars = append(vars, preset...)
	}
	if path := cCtx.String("varset"); path != "" {
		doc, err := varset.ReadFile(path)
		if err != nil {
			return nil, err
		}
		vars = append(vars, doc...)
	}
	args, err := mera.ParseVariables(cCtx.Args().Slice())
	if err != nil {
		return nil, err
	}
	vars = append(vars, args...)
	if len(vars) == 0 {
		return nil, errors.New("no variables: pass names, --preset or --varset")
	}
	return vars, nil
}

// parseTimes expands start, stop and step into validity times. An empty
// stop yields the start time alone.
func parseTimes(start, stop, step string) ([]time.Time, error) {
	t0, err := mera.ParseDate(start)
	if err != nil {
		return nil, err
	}
	dt, err := mera.ParseDuration(step)
	if err != nil {
		return nil, err
	}
	if stop == "" {
		return []time.Time{t0}, nil
	}
	t1, err := mera.ParseDate(stop)
	if err != nil {
		return nil, err
	}
	return mera.TimeRange(t0, t1, dt)
}

func timesFrom(cCtx *cli.Context) ([]time.Time, error) {
	return parseTimes(cCtx.String("start"), cCtx.String("stop"), cCtx.String("step"))
}

func parseStreams(values []string) ([]mera.Stream, error) {
	if len(values) == 0 {
		return []mera.Stream{mera.StreamAnalysis}, nil
	}
	streams := make([]mera.Stream, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			s, err := mera.ParseStream(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			streams = append(streams, s)
		}
	}
	return streams, nil
}

// openMedia loads the catalogue when --media is set. The returned manifest
// directory prefers the catalogue's setting over --manifest-dir.
func openMedia(cCtx *cli.Context) (*config.Media, string, error) {
	dir := cCtx.String("manifest-dir")
	path := cCtx.String("media")
	if path == "" {
		return nil, dir, nil
	}
	media, err := config.LoadMedia(path)
	if err != nil {
		return nil, "", err
	}
	if media.ManifestDir != "" {
		dir = media.ManifestDir
	}
	return media, dir, nil
}

func loadManifest(cCtx *cli.Context, medium string) (inventory.Manifest, *config.Media, error) {
	media, dir, err := openMedia(cCtx)
	if err != nil {
		return inventory.Manifest{}, nil, err
	}
	m, err := inventory.NewFSLoader(os.DirFS(dir), ".").Load(cCtx.Context, medium)
	if err != nil {
		return inventory.Manifest{}, nil, err
	}
	return m, media, nil
}
