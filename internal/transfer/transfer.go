// Package transfer copies archive files between a storage medium and the
// local host over the medium's protocol.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/config"
)

// Transfer moves single files. Get copies remote src to local dst, Put copies
// local src to remote dst. Implementations keep one session open until Close.
type Transfer interface {
	Get(ctx context.Context, src, dst string) error
	Put(ctx context.Context, src, dst string) error
	Close() error
}

// ErrLengthMismatch is returned by MGet and MPut when the source and target
// lists differ in length.
var ErrLengthMismatch = errors.New("source and target lists differ in length")

const defaultTimeout = 30 * time.Second

type options struct {
	port       int
	knownHosts string
	timeout    time.Duration
}

// Option customises a remote session.
type Option func(*options)

// WithPort overrides the protocol's default port.
func WithPort(port int) Option {
	return func(o *options) {
		if port > 0 {
			o.port = port
		}
	}
}

// WithKnownHosts sets the known_hosts file used to verify SSH host keys.
func WithKnownHosts(path string) Option {
	return func(o *options) {
		if path != "" {
			o.knownHosts = path
		}
	}
}

// WithTimeout bounds connection establishment.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// New opens a session for the given protocol: config.ProtocolLocal,
// config.ProtocolSSH or config.ProtocolFTP.
func New(ctx context.Context, kind, host, user, password string, opts ...Option) (Transfer, error) {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case config.ProtocolLocal, "":
		return Local{}, nil
	case config.ProtocolSSH:
		s, err := dialSFTP(ctx, host, user, password, o)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ProtocolFTP:
		f, err := dialFTP(ctx, host, user, password, o)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown transfer protocol %q", kind)
	}
}

// ForMedium opens a session to a catalogued medium.
func ForMedium(ctx context.Context, m config.Medium, password string, opts ...Option) (Transfer, error) {
	opts = append([]Option{WithPort(m.Port), WithKnownHosts(m.KnownHosts)}, opts...)
	return New(ctx, m.Protocol, m.Host, m.User, password, opts...)
}

// Failure records one file that could not be moved.
type Failure struct {
	Src string
	Dst string
	Err error
}

// Report summarises a multi-file transfer.
type Report struct {
	Transferred []string
	Failures    []Failure
}

// OK reports whether every file was moved.
func (r Report) OK() bool { return len(r.Failures) == 0 }

// MGet fetches srcs[i] into dsts[i], creating local parent directories. A
// failed file is recorded in the report and the remaining files are still
// attempted. Only a length mismatch or cancellation aborts the batch.
func MGet(ctx context.Context, t Transfer, srcs, dsts []string, logger *slog.Logger) (Report, error) {
	return each(ctx, srcs, dsts, logger, "get", func(src, dst string) error {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return t.Get(ctx, src, dst)
	})
}

// MPut sends srcs[i] to dsts[i] with the same reporting as MGet.
func MPut(ctx context.Context, t Transfer, srcs, dsts []string, logger *slog.Logger) (Report, error) {
	return each(ctx, srcs, dsts, logger, "put", func(src, dst string) error {
		return t.Put(ctx, src, dst)
	})
}

func each(ctx context.Context, srcs, dsts []string, logger *slog.Logger, op string, fn func(src, dst string) error) (Report, error) {
	var report Report
	if len(srcs) != len(dsts) {
		return report, fmt.Errorf("%s: %w (%d != %d)", op, ErrLengthMismatch, len(srcs), len(dsts))
	}
	for i := range srcs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := fn(srcs[i], dsts[i]); err != nil {
			logger.Warn("transfer failed", "op", op, "src", srcs[i], "dst", dsts[i], "error", err)
			report.Failures = append(report.Failures, Failure{Src: srcs[i], Dst: dsts[i], Err: err})
			continue
		}
		logger.Debug("transferred", "op", op, "src", srcs[i], "dst", dsts[i])
		report.Transferred = append(report.Transferred, dsts[i])
	}
	return report, nil
}

// copyTo streams r into a new file at dst, truncating any existing one.
func copyTo(dst string, r io.Reader, mode os.FileMode) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
