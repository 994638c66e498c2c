package download

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	pkgerrors "github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
)

const (
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "ccpkg/1.0"

	defaultMaxRetries   = 3
	defaultBaseDelay    = 500 * time.Millisecond
	defaultTripFailures = 5
)

// ManagerImpl downloads over HTTP(S) with retries and per-host circuit breaking,
// and copies file:// or plain-path sources from local repositories.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
	// readTimeout bounds the wait for response headers and for each read of the body.
	// A body that keeps delivering bytes is never cut off. Zero disables both limits.
	readTimeout time.Duration
	breakers    *breakerSet
	maxRetries  uint64
	baseDelay   time.Duration
}

// NewManager creates a new download manager with the given read timeout and user agent.
func NewManager(timeout time.Duration, userAgent string) *ManagerImpl {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &ManagerImpl{
		client: &http.Client{
			Transport: newTransport(timeout),
		},
		userAgent:   userAgent,
		readTimeout: timeout,
		breakers:    newBreakerSet(defaultTripFailures),
		maxRetries:  defaultMaxRetries,
		baseDelay:   defaultBaseDelay,
	}
}

// BreakerStates reports the circuit state of every host contacted so far.
func (m *ManagerImpl) BreakerStates() map[string]string {
	return m.breakers.states()
}

// FetchAll downloads multiple items concurrently and returns a map of item IDs to downloaded file paths.
// Items sharing a URL and target file are downloaded once. A failed item does not stop the others:
// the map holds every item that succeeded and the error is a *BatchError naming the ones that did not.
func (m *ManagerImpl) FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = max(2, runtime.NumCPU()/2)
	}
	if err := prepareDir(opts.Dir); err != nil {
		return nil, err
	}

	byTarget, order, err := buildTargetIndex(items)
	if err != nil {
		return nil, err
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results = make(map[string]string, len(items))
		failed  = make(map[string]error)
	)
	g.SetLimit(opts.Concurrency)
	for _, key := range order {
		indexes := byTarget[key]
		g.Go(func() error {
			p, err := m.fetchOne(ctx, items[indexes[0]], opts)
			mu.Lock()
			defer mu.Unlock()
			for _, i := range indexes {
				if err != nil {
					failed[items[i].ID] = err
				} else {
					results[items[i].ID] = p
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	if len(failed) > 0 {
		return results, &BatchError{Failed: failed}
	}
	return results, nil
}

// buildTargetIndex groups item indexes by URL and target file, in first-seen order.
func buildTargetIndex(items []Item) (map[string][]int, []string, error) {
	byTarget := make(map[string][]int)
	var order []string
	for i, it := range items {
		if it.URL == nil {
			return nil, nil, fmt.Errorf("item %d has nil URL: %w", i, pkgerrors.ErrDownloadFailed)
		}
		key := it.URL.String() + "\x00" + selectFilename(it)
		if _, seen := byTarget[key]; !seen {
			order = append(order, key)
		}
		byTarget[key] = append(byTarget[key], i)
	}
	return byTarget, order, nil
}

// BatchError collects the per-item failures of FetchAll, keyed by Item.ID.
type BatchError struct {
	Failed map[string]error
}

func (e *BatchError) Error() string {
	ids := slices.Sorted(maps.Keys(e.Failed))
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + ": " + e.Failed[id].Error()
	}
	return fmt.Sprintf("%d download(s) failed: %s", len(ids), strings.Join(parts, "; "))
}

func (e *BatchError) Unwrap() []error {
	ids := slices.Sorted(maps.Keys(e.Failed))
	errs := make([]error, len(ids))
	for i, id := range ids {
		errs[i] = e.Failed[id]
	}
	return errs
}

// Fetch downloads a single item and returns the path to the downloaded file.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) (string, error) {
	if err := prepareDir(opts.Dir); err != nil {
		return "", err
	}
	return m.fetchOne(ctx, item, opts)
}

func prepareDir(dir string) error {
	if dir == "" || !filepath.IsAbs(dir) {
		return fmt.Errorf("download dir must be absolute: %s: %w", dir, pkgerrors.ErrInvalidPath)
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return pkgerrors.Wrap(err, "could not create download dir")
	}
	return nil
}

func (m *ManagerImpl) fetchOne(ctx context.Context, item Item, opts Options) (string, error) {
	if item.URL == nil {
		return "", fmt.Errorf("nil URL: %w", pkgerrors.ErrDownloadFailed)
	}
	filename := selectFilename(item)
	if !filepath.IsLocal(filename) {
		return "", fmt.Errorf("download target %q escapes the cache: %w", filename, pkgerrors.ErrInvalidPath)
	}
	absPath := filepath.Join(opts.Dir, filename)

	if !opts.Force {
		if st, err := os.Stat(absPath); err == nil && st.Mode().IsRegular() && st.Size() > 0 {
			logger.Debug("Reusing cached file", logger.Fields{"path": absPath})
			return absPath, nil
		}
	}

	var err error
	if isLocal(item.URL) {
		err = m.copyLocal(ctx, item, absPath, opts.Progress)
	} else {
		err = m.fetchRemote(ctx, item, absPath, opts.Progress)
	}
	if err != nil {
		return "", err
	}
	return absPath, nil
}

func selectFilename(item Item) string {
	if item.Filename != "" {
		return filepath.FromSlash(item.Filename)
	}
	if base := path.Base(item.URL.Path); base != "." && base != "/" && base != "" {
		return base
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(item.URL.String()))
}

func isLocal(u *url.URL) bool {
	return u.Scheme == "" || u.Scheme == "file"
}

func (m *ManagerImpl) copyLocal(ctx context.Context, item Item, absPath string, progress chan<- Progress) error {
	src, err := os.Open(item.URL.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", item.URL.Path, pkgerrors.ErrDownloadFailed, err)
	}
	defer func() { _ = src.Close() }()

	total := int64(-1)
	if st, err := src.Stat(); err == nil {
		total = st.Size()
	}
	tmpPath, _, err := writeToTemp(ctx, src, absPath, item.ID, total, progress)
	if err != nil {
		return err
	}
	return finalizeFile(tmpPath, absPath)
}

func (m *ManagerImpl) fetchRemote(ctx context.Context, item Item, absPath string, progress chan<- Progress) error {
	breaker := m.breakers.get(item.URL.Host)
	if !breaker.Ready() {
		return fmt.Errorf("circuit breaker open for %s: %w", item.URL.Host, pkgerrors.ErrDownloadFailed)
	}

	var retries backoff.BackOff = &backoff.StopBackOff{}
	if m.maxRetries > 0 {
		expBackoff := backoff.NewExponentialBackOff()
		expBackoff.InitialInterval = m.baseDelay
		retries = backoff.WithMaxRetries(expBackoff, m.maxRetries)
	}
	policy := backoff.WithContext(retries, ctx)

	var tmpPath string
	attempt := func() error {
		p, err := m.download(ctx, item, absPath, progress)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		tmpPath = p
		return nil
	}

	err := breaker.Call(func() error {
		return backoff.Retry(attempt, policy)
	}, 0)
	if err != nil {
		return err
	}
	return finalizeFile(tmpPath, absPath)
}

// download performs one GET. Errors worth retrying are returned plain; everything else is permanent.
func (m *ManagerImpl) download(ctx context.Context, item Item, absPath string, progress chan<- Progress) (string, error) {
	rctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, item.URL.String(), http.NoBody)
	if err != nil {
		return "", backoff.Permanent(pkgerrors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		logger.Debug("Request failed", logger.Fields{"url": item.URL.String(), "error": err.Error()})
		return "", fmt.Errorf("%w: %w", pkgerrors.ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return "", fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, pkgerrors.ErrDownloadFailed)
	default:
		return "", backoff.Permanent(fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, pkgerrors.ErrDownloadFailed))
	}

	total := resp.ContentLength
	if total < 0 && item.Size > 0 {
		total = item.Size
	}
	var body io.Reader = resp.Body
	if m.readTimeout > 0 {
		stalled := fmt.Errorf("%w: no data from %s for %s: %w",
			pkgerrors.ErrDownloadStalled, item.URL.Host, m.readTimeout, pkgerrors.ErrDownloadFailed)
		w := newIdleWatchdog(m.readTimeout, func() { cancel(stalled) })
		defer w.stop()
		body = &idleReader{r: resp.Body, w: w}
	}

	tmpPath, received, err := writeToTemp(ctx, body, absPath, item.ID, total, progress)
	if err != nil {
		// A stalled body is reported as such and retried, never as a short server response.
		if cause := context.Cause(rctx); cause != nil && ctx.Err() == nil {
			logger.Debug("Download stalled", logger.Fields{"url": item.URL.String(), "received": received})
			return "", cause
		}
		if resp.ContentLength > 0 && received < resp.ContentLength {
			return "", backoff.Permanent(&pkgerrors.PartialDownloadError{
				URL: item.URL.String(), Expected: resp.ContentLength, Received: received,
			})
		}
		return "", backoff.Permanent(err)
	}
	if resp.ContentLength >= 0 && received != resp.ContentLength {
		_ = os.Remove(tmpPath)
		return "", backoff.Permanent(&pkgerrors.PartialDownloadError{
			URL: item.URL.String(), Expected: resp.ContentLength, Received: received,
		})
	}
	return tmpPath, nil
}

// writeToTemp streams r into a temp file next to absPath. The temp file is removed on error.
func writeToTemp(ctx context.Context, r io.Reader, absPath, id string, total int64, progress chan<- Progress) (string, int64, error) {
	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return "", 0, pkgerrors.Wrap(err, "could not create download dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(absPath), "dl-*.tmp")
	if err != nil {
		return "", 0, pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	cr := &countingReader{ctx: ctx, r: r, id: id, total: total, progress: progress}
	if _, err := io.Copy(tmp, cr); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", cr.n, pkgerrors.Wrap(err, "could not write file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", cr.n, pkgerrors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", cr.n, pkgerrors.Wrap(err, "could not close file")
	}
	return tmpPath, cr.n, nil
}

func finalizeFile(tmpPath, absPath string) error {
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	if err := os.Chmod(absPath, fsutil.FileModeDefault); err != nil {
		return pkgerrors.Wrap(err, "could not set permissions")
	}
	return nil
}

// countingReader counts bytes, aborts on cancellation and publishes progress.
type countingReader struct {
	ctx      context.Context
	r        io.Reader
	id       string
	n        int64
	total    int64
	progress chan<- Progress
}

func (c *countingReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	if n > 0 && c.progress != nil {
		select {
		case c.progress <- Progress{ID: c.id, Received: c.n, Total: c.total}:
		default:
		}
	}
	return n, err
}

// idleWatchdog fires once no read has completed for the configured duration.
type idleWatchdog struct {
	idle  time.Duration
	timer *time.Timer
}

func newIdleWatchdog(idle time.Duration, fire func()) *idleWatchdog {
	return &idleWatchdog{idle: idle, timer: time.AfterFunc(idle, fire)}
}

func (w *idleWatchdog) touch() { w.timer.Reset(w.idle) }

func (w *idleWatchdog) stop() { w.timer.Stop() }

// idleReader restarts its watchdog whenever the underlying reader delivers data.
type idleReader struct {
	r io.Reader
	w *idleWatchdog
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.w.touch()
	}
	return n, err
}
