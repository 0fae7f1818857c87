// Command meractl explores the MERA archive from the command line: resolve
// variables to files, check what a medium holds, copy files off it, and
// prepare extraction inputs.
//
// Usage:
//
//	meractl resolve --start 2017-01-01 --stop 2017-01-02 air_temperature_at_2_metres
//	meractl where --medium reaext03 --preset neurallam
//	meractl copy --medium reaext03 --dest /scratch --preset mydata --uncompress
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/mera-explorer/internal/observability"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "meractl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "meractl",
		Usage:     "explore the MERA reanalysis archive",
		UsageText: "meractl [global options] command [command options] [variables...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "text or json",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "media",
				Usage:   "TOML media catalogue",
				EnvVars: []string{"MEDIA_FILE"},
			},
			&cli.StringFlag{
				Name:    "manifest-dir",
				Value:   "filesystems",
				Usage:   "directory holding merafiles_<medium>.txt manifests",
				EnvVars: []string{"MERA_MANIFEST_DIR"},
			},
		},
		Before: func(cCtx *cli.Context) error {
			logger := observability.NewLoggerTo(cCtx.App.ErrWriter, cCtx.String("log-level"), cCtx.String("log-format"))
			slog.SetDefault(logger)
			return nil
		},
		Commands: []*cli.Command{
			resolveCommand(),
			whereCommand(),
			copyCommand(),
			varsetCommand(),
			forecastPathCommand(),
			extractCommand(),
		},
	}
}
