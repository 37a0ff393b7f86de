package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
)

// DefaultDescriptorURL is the tile service listing the viewer reads at startup.
const DefaultDescriptorURL = "http://tilestream.openquake.org/api/v1/Tileset"

// maxPayload caps the tileset listing body.
const maxPayload = 32 << 20

// Fetcher retrieves the tileset listing from the tile service.
type Fetcher struct {
	URL    string
	Client *http.Client
	Logger *slog.Logger
}

// NewFetcher creates a fetcher for url using http.DefaultClient.
func NewFetcher(url string, logger *slog.Logger) *Fetcher {
	if url == "" {
		url = DefaultDescriptorURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{URL: url, Client: http.DefaultClient, Logger: logger}
}

// Fetch performs a single GET of the listing. There is no retry; malformed
// records are dropped by DecodeDescriptors and only logged.
func (f *Fetcher) Fetch(ctx context.Context) ([]LayerDescriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build descriptor request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch descriptors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch descriptors: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, fmt.Errorf("read descriptors: %w", err)
	}

	descriptors, errs := DecodeDescriptors(data, f.Logger)
	if descriptors == nil && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(errs) > 0 {
		f.Logger.Warn("descriptor listing contained malformed records",
			"url", f.URL, "rejected", len(errs), "accepted", len(descriptors))
	}
	return descriptors, nil
}

// Source is anything that can produce the descriptor list once.
type Source interface {
	Fetch(ctx context.Context) ([]LayerDescriptor, error)
}

// Catalog owns the category index for the life of the process.
// The index is built at most once; until then Index returns an empty one.
type Catalog struct {
	source Source
	logger *slog.Logger

	once  sync.Once
	index atomic.Pointer[Index]
	ok    atomic.Bool
	ready chan struct{}
}

// NewCatalog creates a catalog backed by source.
func NewCatalog(source Source, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		source: source,
		logger: logger,
		ready:  make(chan struct{}),
	}
	c.index.Store(Empty())
	return c
}

// Start launches the one-shot load in the background and returns at once.
// Later calls are no-ops.
func (c *Catalog) Start(ctx context.Context) {
	c.once.Do(func() {
		go c.load(ctx)
	})
}

// Load runs the one-shot load synchronously. It is used by the CLI, where
// there is nothing to do until the index exists.
func (c *Catalog) Load(ctx context.Context) error {
	var err error
	ran := false
	c.once.Do(func() {
		ran = true
		err = c.load(ctx)
	})
	if !ran {
		<-c.ready
		if !c.ok.Load() {
			return errors.New("catalog load already failed")
		}
	}
	return err
}

func (c *Catalog) load(ctx context.Context) error {
	defer close(c.ready)

	descriptors, err := c.source.Fetch(ctx)
	if err != nil {
		c.logger.Error("layer catalog unavailable, selectors stay empty", "error", err)
		return err
	}

	idx := Build(descriptors)
	c.index.Store(idx)
	c.ok.Store(true)
	c.logger.Info("layer catalog loaded",
		"descriptors", len(descriptors), "categories", idx.Len())
	return nil
}

// Index returns the current index.
func (c *Catalog) Index() *Index {
	return c.index.Load()
}

// Ready is closed once the load attempt has finished, successfully or not.
func (c *Catalog) Ready() <-chan struct{} {
	return c.ready
}

// Loaded reports whether the index was built from a successful fetch.
func (c *Catalog) Loaded() bool {
	return c.ok.Load()
}
