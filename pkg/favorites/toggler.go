package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/avtoline/catalog-client/pkg/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for favorite toggles.
var (
	favoriteTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_favorite_toggles_total",
		Help: "Total favorite toggles by result",
	}, []string{"result"})
)

// ErrToggleInFlight is returned when a toggle for the same ad is still
// pending. Callers treat it as "ignore the tap", not as a failure.
var ErrToggleInFlight = errors.New("favorite toggle already in flight")

// Endpoint is the slice of the catalog client the toggler needs.
type Endpoint interface {
	AddFavorite(ctx context.Context, ref catalog.AdRef) error
	RemoveFavorite(ctx context.Context, ref catalog.AdRef) error
	Favorites(ctx context.Context) ([]catalog.AdSummary, error)
}

// Toggler flips favorite membership optimistically: local state changes
// first, the endpoint call follows, and a failed call rolls the local
// state back. Per-ad mutual exclusion prevents lost updates from
// double-tapping; toggles on different ads run concurrently.
type Toggler struct {
	endpoint Endpoint
	members  Membership
	logger   zerolog.Logger

	mu       sync.Mutex
	inflight map[catalog.AdRef]struct{}
}

// NewToggler creates a toggler over the given endpoint and store.
func NewToggler(endpoint Endpoint, members Membership) *Toggler {
	return &Toggler{
		endpoint: endpoint,
		members:  members,
		logger:   log.With().Str("component", "favorites").Logger(),
		inflight: make(map[catalog.AdRef]struct{}),
	}
}

// Warm loads the full favorites list from the backend into the store.
// Called once per session; afterwards membership is served locally.
func (t *Toggler) Warm(ctx context.Context) error {
	items, err := t.endpoint.Favorites(ctx)
	if err != nil {
		return fmt.Errorf("warm favorites: %w", err)
	}

	refs := make([]catalog.AdRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, item.Ref())
	}

	if err := t.members.Replace(ctx, refs); err != nil {
		return fmt.Errorf("warm favorites: %w", err)
	}

	t.logger.Debug().Int("count", len(refs)).Msg("Favorites store warmed")
	return nil
}

// Contains reports current membership, including optimistic flips that
// are still awaiting endpoint confirmation.
func (t *Toggler) Contains(ctx context.Context, ref catalog.AdRef) (bool, error) {
	return t.members.Contains(ctx, ref)
}

// Toggle flips the ad's membership and returns the new value.
//
// The flip is applied locally before the endpoint call. On endpoint
// failure the local value is reverted and the error is returned for a
// transient notification; list state is unaffected. A second toggle for
// the same ad while one is pending returns ErrToggleInFlight.
func (t *Toggler) Toggle(ctx context.Context, ref catalog.AdRef) (bool, error) {
	t.mu.Lock()
	if _, busy := t.inflight[ref]; busy {
		t.mu.Unlock()
		favoriteTogglesTotal.WithLabelValues("rejected").Inc()
		t.logger.Debug().Stringer("ad", ref).Msg("Toggle ignored, previous still pending")
		return false, ErrToggleInFlight
	}
	t.inflight[ref] = struct{}{}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.inflight, ref)
		t.mu.Unlock()
	}()

	prev, err := t.members.Contains(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("favorite toggle: %w", err)
	}
	next := !prev

	// Optimistic flip before the network confirms.
	if err := t.members.SetMember(ctx, ref, next); err != nil {
		return prev, fmt.Errorf("favorite toggle: %w", err)
	}

	var callErr error
	if next {
		callErr = t.endpoint.AddFavorite(ctx, ref)
	} else {
		callErr = t.endpoint.RemoveFavorite(ctx, ref)
	}

	if callErr != nil {
		if rbErr := t.members.SetMember(ctx, ref, prev); rbErr != nil {
			t.logger.Error().Err(rbErr).Stringer("ad", ref).Msg("Failed to roll back favorite state")
		}
		favoriteTogglesTotal.WithLabelValues("failed").Inc()
		t.logger.Warn().Err(callErr).Stringer("ad", ref).Bool("wanted", next).Msg("Favorite toggle failed, reverted")
		return prev, fmt.Errorf("favorite toggle: %w", callErr)
	}

	if next {
		favoriteTogglesTotal.WithLabelValues("added").Inc()
	} else {
		favoriteTogglesTotal.WithLabelValues("removed").Inc()
	}

	return next, nil
}
