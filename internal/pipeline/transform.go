package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/inventory"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/observability"
)

// LocationTransformer implements Transformer by resolving requests to
// archive locations, optionally checking the file against a medium manifest.
type LocationTransformer struct {
	resolver *mera.Resolver
	loader   inventory.Loader
	medium   string
	root     string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// TransformerOption customises a LocationTransformer.
type TransformerOption func(*LocationTransformer)

// WithLocalRoot adds the absolute path under root, the local directory
// holding the mera/ tree, to every resolved location.
func WithLocalRoot(root string) TransformerOption {
	return func(t *LocationTransformer) {
		t.root = root
	}
}

// NewTransformer creates a LocationTransformer. Pass a nil loader or an
// empty medium to disable presence checks.
func NewTransformer(resolver *mera.Resolver, loader inventory.Loader, medium string, logger *slog.Logger, metrics *observability.Metrics, opts ...TransformerOption) *LocationTransformer {
	if loader == nil {
		medium = ""
	}
	t := &LocationTransformer{
		resolver: resolver,
		loader:   loader,
		medium:   medium,
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *LocationTransformer) Transform(ctx context.Context, raw mera.RawEvent) (mera.OutputEvent, error) {
	req, err := mera.ParseRequest(raw)
	if err != nil {
		return mera.OutputEvent{}, err
	}

	loc, err := t.Locate(ctx, req.Variable, req.ValidTime)
	if err != nil {
		return mera.OutputEvent{}, err
	}
	return mera.SerializeLocation(loc)
}

// Locate resolves a suffixed CF name at a validity time. When an inventory
// is configured the result records whether the file is on the medium; a
// manifest that cannot be read leaves presence unknown rather than failing.
func (t *LocationTransformer) Locate(ctx context.Context, variable string, valid time.Time) (mera.ResolvedLocation, error) {
	v, err := mera.ParseVariable(variable)
	if err != nil {
		return mera.ResolvedLocation{}, err
	}
	loc, err := t.resolver.ResolveValidity(v, valid)
	if err != nil {
		return mera.ResolvedLocation{}, fmt.Errorf("resolve %s at %s: %w", variable, valid.Format(time.RFC3339), err)
	}

	out := mera.NewResolvedLocation(loc)
	if t.root != "" {
		out.LocalPath = filepath.Join(t.root, filepath.FromSlash(out.Path))
	}
	if t.medium == "" {
		return out, nil
	}

	ix, err := t.index(ctx)
	if err != nil {
		t.logger.Warn("manifest unavailable, presence unknown", "medium", t.medium, "error", err)
		return out, nil
	}
	present := len(ix.Present(loc.File.String(), false)) > 0
	t.observePresence(present)
	if !present {
		t.logger.Debug("file not on medium", "medium", t.medium, "file", loc.File.String())
	}
	return out.WithPresence(present), nil
}

// indexLoader is implemented by loaders that keep a name index next to
// each manifest, such as inventory.CachedLoader.
type indexLoader interface {
	Index(ctx context.Context, medium string) (*inventory.Index, error)
}

func (t *LocationTransformer) index(ctx context.Context) (*inventory.Index, error) {
	if il, ok := t.loader.(indexLoader); ok {
		return il.Index(ctx, t.medium)
	}
	m, err := t.loader.Load(ctx, t.medium)
	if err != nil {
		return nil, err
	}
	return inventory.NewIndex(m), nil
}

// Variables lists the base names the resolver knows.
func (t *LocationTransformer) Variables() []string {
	return t.resolver.Table().Names()
}

func (t *LocationTransformer) observePresence(present bool) {
	if t.metrics == nil {
		return
	}
	result := "absent"
	if present {
		result = "present"
	}
	t.metrics.FilePresence.WithLabelValues(result).Inc()
}
