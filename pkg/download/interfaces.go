package download

import (
	"context"
	"net/url"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_manager.go -package=mocks

// Manager downloads remote artifacts (repository descriptors and package archives) into a cache directory.
type Manager interface {
	// FetchAll downloads all items, respecting Options (concurrency, cache dir, force).
	// It returns a map from Item.ID to absolute local file path for every item that succeeded;
	// per-item failures are reported together in a *BatchError.
	FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error)

	// Fetch downloads a single item to a deterministic location within opts.Dir
	// and returns the absolute local file path.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)
}

// Item represents one resource to download.
type Item struct {
	ID       string   // stable identifier, unique within a batch
	URL      *url.URL // http(s), file or plain local path
	Filename string   // cache-relative target name; derived from the URL when empty
	Size     int64    // announced size used for progress totals; 0 when unknown
}

// Progress reports the bytes received so far for one item.
type Progress struct {
	ID       string
	Received int64
	Total    int64 // -1 when unknown
}

// Options control the behavior of the download manager.
type Options struct {
	Dir         string // destination directory (cache). Must be absolute.
	Concurrency int    // number of parallel downloads; if <=0, a sane default is used
	Force       bool   // refetch even when the target file already exists

	// Progress receives updates with non-blocking sends; slow readers miss updates.
	Progress chan<- Progress
}
