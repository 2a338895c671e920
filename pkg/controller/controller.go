// Package controller turns user-driven filter, search, and sort input
// into correct, race-free, incrementally paginated catalog list state.
//
// Every change of filter context advances a generation counter, and a
// fetched page is applied only if its generation is still current when
// it arrives. Ordering is therefore generation-gated, not arrival-order
// gated: a slow response for an abandoned filter state can never clobber
// the list a faster, newer response already produced. Search input is
// debounced through a single-slot scheduler so a typing burst issues
// exactly one request, carrying the final text.
package controller

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/avtoline/catalog-client/pkg/catalog"
	"github.com/avtoline/catalog-client/pkg/debounce"
	"github.com/avtoline/catalog-client/pkg/pagelist"
	"github.com/avtoline/catalog-client/pkg/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for list controller operations.
var (
	listReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_list_reloads_total",
		Help: "Total list reloads by trigger",
	}, []string{"trigger"})

	listStaleDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_list_stale_drops_total",
		Help: "Total fetch results dropped because their generation was superseded",
	})

	listFetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_list_fetch_failures_total",
		Help: "Total list fetch failures by mode",
	}, []string{"mode"})
)

// Fetcher issues one catalog list query. *catalog.Client satisfies it.
type Fetcher interface {
	Query(ctx context.Context, kind catalog.AdKind, params url.Values) (*catalog.QueryResult, error)
}

// Config holds the controller configuration.
type Config struct {
	// Kind selects which listing the controller drives.
	Kind catalog.AdKind

	// Fetcher executes catalog queries.
	Fetcher Fetcher

	// PageLimit is the fixed page size (default 20, capped at 50).
	PageLimit int

	// SearchDebounce is the quiet period after the last keystroke
	// before a search reload is issued (default 400ms).
	SearchDebounce time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(kind catalog.AdKind, fetcher Fetcher) Config {
	return Config{
		Kind:           kind,
		Fetcher:        fetcher,
		PageLimit:      query.DefaultLimit,
		SearchDebounce: 400 * time.Millisecond,
	}
}

// failedFetch remembers the last failure so Retry can re-issue the same
// mode and offset under the same generation.
type failedFetch struct {
	mode       pagelist.Mode
	offset     int
	generation uint64
}

// Controller owns the filter snapshot and page state of one listing
// screen. All state is guarded by one mutex; network calls run in
// goroutines and re-enter through the generation gate. Rendering layers
// read derived state via Snapshot and never mutate.
type Controller struct {
	cfg       Config
	logger    zerolog.Logger
	scheduler *debounce.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc

	mu          sync.Mutex
	filter      query.Filter
	generation  uint64
	page        pagelist.State
	lastFailure *failedFetch
	closed      bool
}

// New creates a controller for one listing screen. The controller owns
// its debounce scheduler; Close releases it.
func New(cfg Config) (*Controller, error) {
	if cfg.Fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if !cfg.Kind.Valid() {
		return nil, errUnknownKind(cfg.Kind)
	}

	if cfg.PageLimit <= 0 {
		cfg.PageLimit = query.DefaultLimit
	}
	if cfg.PageLimit > query.MaxLimit {
		cfg.PageLimit = query.MaxLimit
	}
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = 400 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		cfg:       cfg,
		logger:    log.With().Str("component", "list-controller").Str("kind", string(cfg.Kind)).Logger(),
		scheduler: debounce.NewScheduler(),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Reload discards the current list and fetches the first page under a
// new generation. Called on screen mount and pull-to-refresh.
func (c *Controller) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	listReloadsTotal.WithLabelValues("refresh").Inc()
	c.restartLocked()
}

// SetCity updates the city filter and reloads immediately.
func (c *Controller) SetCity(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.filter.City == city {
		return
	}

	c.filter.City = city
	listReloadsTotal.WithLabelValues("filter").Inc()
	c.restartLocked()
}

// SetSort updates the sort order and reloads immediately.
func (c *Controller) SetSort(sort query.Sort) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.filter.Sort.Normalize() == sort.Normalize() {
		return
	}

	c.filter.Sort = sort.Normalize()
	listReloadsTotal.WithLabelValues("filter").Inc()
	c.restartLocked()
}

// SetPriceRange updates the price bounds and reloads immediately.
// A bound of 0 means unset.
func (c *Controller) SetPriceRange(min, max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || (c.filter.PriceMin == min && c.filter.PriceMax == max) {
		return
	}

	c.filter.PriceMin = min
	c.filter.PriceMax = max
	listReloadsTotal.WithLabelValues("filter").Inc()
	c.restartLocked()
}

// SetSearchText updates the search text. The reload is debounced: a
// burst of keystrokes within the quiet period issues exactly one
// request, carrying the final text. Each keystroke still advances the
// generation immediately, so responses for earlier text become inert
// the moment the user keeps typing. Clearing the field bypasses the
// debounce and reloads at once.
func (c *Controller) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.filter.SearchText == text {
		return
	}

	c.filter.SearchText = text
	c.generation++
	gen := c.generation
	c.lastFailure = nil

	if text == "" {
		c.scheduler.Cancel()
		listReloadsTotal.WithLabelValues("search").Inc()
		c.page.Reset(gen)
		c.startFetchLocked(pagelist.ModeReset, 0)
		return
	}

	c.scheduler.Schedule(c.cfg.SearchDebounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || gen != c.generation {
			return
		}

		listReloadsTotal.WithLabelValues("search").Inc()
		c.page.Reset(gen)
		c.startFetchLocked(pagelist.ModeReset, 0)
	})
}

// LoadMore fetches the next page at the current offset. Ignored when a
// fetch is already in flight or the list is complete.
func (c *Controller) LoadMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.page.Loading || !c.page.HasMore() {
		return
	}

	c.startFetchLocked(pagelist.ModeContinue, c.page.Offset)
}

// Retry re-issues the last failed fetch with the same mode and offset.
// A no-op when nothing failed, a fetch is in flight, or the filter
// context has changed since the failure.
func (c *Controller) Retry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.page.Loading || c.lastFailure == nil {
		return
	}
	if c.lastFailure.generation != c.generation {
		return
	}

	f := *c.lastFailure
	c.startFetchLocked(f.mode, f.offset)
}

// Snapshot returns a copy of the page state for rendering.
func (c *Controller) Snapshot() pagelist.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Clone()
}

// Filter returns the current filter snapshot.
func (c *Controller) Filter() query.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Close releases the controller: the debounce timer is cancelled and
// can never fire afterwards, and in-flight fetches become inert.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	// Release outside the state lock: a firing timer callback grabs the
	// scheduler lock first and the state lock second.
	c.scheduler.Release()
	c.cancel()
}

// restartLocked invalidates the current generation, clears the page
// state, and issues an immediate reset fetch. Any pending debounced
// search reload belongs to the old context and is cancelled.
func (c *Controller) restartLocked() {
	c.scheduler.Cancel()
	c.generation++
	c.lastFailure = nil
	c.page.Reset(c.generation)
	c.startFetchLocked(pagelist.ModeReset, 0)
}

// startFetchLocked marks the page loading and issues the query in a
// goroutine tagged with the current generation.
func (c *Controller) startFetchLocked(mode pagelist.Mode, offset int) {
	gen := c.generation
	params := query.Build(c.filter, offset, c.cfg.PageLimit)
	c.page.Loading = true
	c.page.Failed = false

	c.logger.Debug().
		Uint64("generation", gen).
		Str("mode", string(mode)).
		Int("offset", offset).
		Msg("Issuing list fetch")

	go c.fetch(gen, mode, offset, params)
}

// fetch runs one query and applies the result through the generation
// gate. A result whose generation was superseded while it was in flight
// is dropped silently: not an error, just inert.
func (c *Controller) fetch(gen uint64, mode pagelist.Mode, offset int, params url.Values) {
	result, err := c.cfg.Fetcher.Query(c.ctx, c.cfg.Kind, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		listStaleDropsTotal.Inc()
		c.logger.Debug().
			Uint64("generation", gen).
			Uint64("current", c.generation).
			Str("mode", string(mode)).
			Msg("Dropping stale fetch result")
		return
	}

	if err != nil {
		c.lastFailure = &failedFetch{mode: mode, offset: offset, generation: gen}
		c.page.ApplyFailure()
		listFetchFailuresTotal.WithLabelValues(string(mode)).Inc()
		c.logger.Warn().
			Err(err).
			Uint64("generation", gen).
			Str("mode", string(mode)).
			Int("offset", offset).
			Msg("List fetch failed")
		return
	}

	c.lastFailure = nil
	switch mode {
	case pagelist.ModeContinue:
		c.page.ApplyContinue(result.Items, result.Total)
	default:
		c.page.ApplyReset(result.Items, result.Total)
	}

	c.logger.Debug().
		Uint64("generation", gen).
		Str("mode", string(mode)).
		Int("items", len(c.page.Items)).
		Int("total", c.page.Total).
		Bool("has_more", c.page.HasMore()).
		Msg("List fetch applied")
}
