package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/mera-explorer/internal/config"
	"github.com/couchcryptid/mera-explorer/internal/inventory"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/transfer"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func copyCommand() *cli.Command {
	flags := append(variableFlags(), timeFlags(false)...)
	flags = append(flags,
		&cli.StringFlag{Name: "medium", Required: true, Usage: "medium to copy from"},
		&cli.StringFlag{Name: "dest", Required: true, Usage: "local archive root; files land under <dest>/mera/..."},
		&cli.StringSliceFlag{Name: "stream", Usage: "streams to copy (default ANALYSIS)"},
		&cli.BoolFlag{Name: "exclude-compressed", Usage: "skip .bz2 copies listed in the manifest"},
		&cli.BoolFlag{Name: "keep-compressed", Usage: "leave copied .bz2 files compressed"},
		&cli.BoolFlag{Name: "dry-run", Usage: "print the transfers without running them"},
		&cli.StringFlag{Name: "password-env", Value: "MERA_PASSWORD", Usage: "environment variable holding the remote password"},
	)
	return &cli.Command{
		Name:      "copy",
		Usage:     "copy the files of some variables from a medium",
		ArgsUsage: "[variables...]",
		Flags:     flags,
		Action:    runCopy,
	}
}

func runCopy(cCtx *cli.Context) error {
	vars, err := loadVariables(cCtx)
	if err != nil {
		return err
	}
	streams, err := parseStreams(cCtx.StringSlice("stream"))
	if err != nil {
		return err
	}
	name := cCtx.String("medium")
	m, media, err := loadManifest(cCtx, name)
	if err != nil {
		return err
	}

	files, err := selectFiles(cCtx, vars, streams, m, cCtx.Bool("exclude-compressed"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files for these variables on %s", name)
	}

	medium, ok := media.Lookup(name)
	if !ok {
		medium = config.Medium{Protocol: config.ProtocolLocal}
	}
	if medium.Root != "" {
		m.Root = medium.Root
	}

	dest := cCtx.String("dest")
	srcs := make([]string, 0, len(files))
	dsts := make([]string, 0, len(files))
	for _, f := range files {
		src, err := m.RemotePath(f)
		if err != nil {
			return err
		}
		rel, _ := mera.ExpandPathFromRoot(f)
		srcs = append(srcs, src)
		dsts = append(dsts, filepath.Join(dest, filepath.FromSlash(rel)))
	}

	out := cCtx.App.Writer
	if cCtx.Bool("dry-run") {
		for i := range srcs {
			fmt.Fprintf(out, "%s -> %s\n", srcs[i], dsts[i])
		}
		return nil
	}

	password, err := remotePassword(medium, cCtx.String("password-env"))
	if err != nil {
		return err
	}
	tr, err := transfer.ForMedium(cCtx.Context, medium, password)
	if err != nil {
		return err
	}
	defer tr.Close()

	logger := slog.Default()
	report, err := transfer.MGet(cCtx.Context, tr, srcs, dsts, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "copied %d of %d files from %s\n", len(report.Transferred), len(srcs), name)

	if !cCtx.Bool("keep-compressed") {
		for _, p := range report.Transferred {
			if !strings.HasSuffix(p, mera.CompressionSuffix) {
				continue
			}
			if _, err := transfer.Uncompress(p); err != nil {
				logger.Warn("uncompress failed", "path", p, "error", err)
			}
		}
	}

	if !report.OK() {
		for _, f := range report.Failures {
			fmt.Fprintf(cCtx.App.ErrWriter, "failed: %s: %v\n", path.Base(f.Src), f.Err)
		}
		return fmt.Errorf("%d transfers failed", len(report.Failures))
	}
	return nil
}

// selectFiles lists the manifest files to copy: the resolved files of the
// time range when one is given, every file of the variables otherwise.
func selectFiles(cCtx *cli.Context, vars []mera.Variable, streams []mera.Stream, m inventory.Manifest, excludeCompressed bool) ([]string, error) {
	table := mera.DefaultTable()
	if cCtx.String("start") != "" {
		times, err := timesFrom(cCtx)
		if err != nil {
			return nil, err
		}
		requested, err := mera.NewResolver(table).FileNames(vars, monthStarts(times), streams)
		if err != nil {
			return nil, err
		}
		return inventory.FilterPresent(requested, m, excludeCompressed), nil
	}

	var files []string
	for _, s := range streams {
		names, err := inventory.FilesForVariables(table, vars, m, s, excludeCompressed)
		if err != nil {
			return nil, err
		}
		files = append(files, names...)
	}
	return files, nil
}

// remotePassword reads the password from env, or prompts on the terminal.
func remotePassword(m config.Medium, env string) (string, error) {
	if m.Protocol == config.ProtocolLocal {
		return "", nil
	}
	if pw, ok := os.LookupEnv(env); ok {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal for password prompt; set " + env)
	}
	fmt.Fprintf(os.Stderr, "Password for %s@%s (%s): ", m.User, m.Host, m.Protocol)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
