package main

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/urfave/cli/v2"
)

func forecastPathCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast-path",
		Usage: "print the output paths of an inference forecast",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Value: ".", Usage: "forecast output root"},
			&cli.StringFlag{Name: "id", Value: mera.DefaultInferenceID, Usage: "inference identifier"},
			&cli.StringFlag{Name: "base", Required: true, Usage: "base time, YYYY-MM-DD[ HH[:MM]]"},
			&cli.StringFlag{Name: "max-lead", Value: "54h", Usage: "maximum lead time"},
			&cli.StringFlag{Name: "step", Value: "3h", Usage: "lead time step"},
			&cli.BoolFlag{Name: "analysis", Usage: "print the analysis validity times the forecast needs"},
		},
		Action: func(cCtx *cli.Context) error {
			base, err := mera.ParseDate(cCtx.String("base"))
			if err != nil {
				return err
			}
			maxLead, err := mera.ParseDuration(cCtx.String("max-lead"))
			if err != nil {
				return err
			}
			step, err := mera.ParseDuration(cCtx.String("step"))
			if err != nil {
				return err
			}

			out := cCtx.App.Writer
			if cCtx.Bool("analysis") {
				times, err := mera.AnalysisTimes(base, maxLead, step)
				if err != nil {
					return err
				}
				for _, t := range times {
					fmt.Fprintln(out, t.Format("2006-01-02 15:04"))
				}
				return nil
			}

			if step <= 0 {
				return errors.New("step must be positive")
			}
			for lead := step; lead <= maxLead; lead += step {
				fmt.Fprintln(out, mera.ForecastPath(cCtx.String("root"), cCtx.String("id"), base, lead))
			}
			return nil
		},
	}
}
