package main

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/varset"
	"github.com/urfave/cli/v2"
)

func varsetCommand() *cli.Command {
	return &cli.Command{
		Name:      "varset",
		Usage:     "write a variable-set YAML document",
		ArgsUsage: "[variables...]",
		Flags: append(variableFlags(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
			&cli.BoolFlag{Name: "check", Usage: "fail if a variable does not resolve"},
		),
		Action: func(cCtx *cli.Context) error {
			vars, err := loadVariables(cCtx)
			if err != nil {
				return err
			}
			if cCtx.Bool("check") {
				var errs []error
				for _, v := range vars {
					if _, err := mera.DefaultTable().Resolve(v); err != nil {
						errs = append(errs, err)
					}
				}
				if err := errors.Join(errs...); err != nil {
					return err
				}
			}
			if out := cCtx.String("out"); out != "" {
				if err := varset.WriteFile(out, vars); err != nil {
					return err
				}
				fmt.Fprintf(cCtx.App.ErrWriter, "wrote %d variables to %s\n", len(vars), out)
				return nil
			}
			return varset.Write(cCtx.App.Writer, vars)
		},
	}
}
