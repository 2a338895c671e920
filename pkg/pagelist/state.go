// Package pagelist owns the paginated result set of one listing screen.
// It decides how an incoming page merges into the current list: a reset
// page replaces the list, a continue page appends to it, and a failure
// leaves previously loaded items untouched so an explicit retry targets
// the same offset.
package pagelist

import (
	"github.com/avtoline/catalog-client/pkg/catalog"
)

// Mode distinguishes how a fetched page merges into the list.
type Mode string

const (
	// ModeReset replaces the current items with the fetched page.
	ModeReset Mode = "reset"

	// ModeContinue appends the fetched page to the current items.
	ModeContinue Mode = "continue"
)

// State is the page state of one listing screen. It is owned exclusively
// by a controller; rendering layers only see copies via Clone.
//
// After any successful merge, Offset == len(Items) and no two items
// share an (kind, id) identity.
type State struct {
	Items      []catalog.AdSummary
	Total      int
	Offset     int
	Loading    bool
	Failed     bool
	Generation uint64
}

// HasMore reports whether another page can be requested.
func (s *State) HasMore() bool {
	return len(s.Items) < s.Total
}

// Reset clears the state for a new generation. Called when the filter
// context changes and the current list no longer applies.
func (s *State) Reset(generation uint64) {
	s.Items = nil
	s.Total = 0
	s.Offset = 0
	s.Loading = false
	s.Failed = false
	s.Generation = generation
}

// ApplyReset replaces the list with a freshly fetched first page.
func (s *State) ApplyReset(items []catalog.AdSummary, total int) {
	s.Items = dedup(nil, items)
	s.Total = total
	s.Offset = len(s.Items)
	s.Loading = false
	s.Failed = false
}

// ApplyContinue appends a load-more page. Items whose identity is
// already present are skipped: the backend may deliver an ad twice when
// the list shifted between page requests.
func (s *State) ApplyContinue(items []catalog.AdSummary, total int) {
	s.Items = dedup(s.Items, items)
	s.Total = total
	s.Offset = len(s.Items)
	s.Loading = false
	s.Failed = false
}

// ApplyFailure records a failed fetch. Items and Offset are left as they
// were regardless of the failed mode, so the last successfully loaded
// list stays visible and a retry re-requests the same page.
func (s *State) ApplyFailure() {
	s.Loading = false
	s.Failed = true
}

// Clone returns a copy safe to hand to a rendering layer. The items
// slice is copied; AdSummary values are plain data.
func (s *State) Clone() State {
	clone := *s
	if s.Items != nil {
		clone.Items = make([]catalog.AdSummary, len(s.Items))
		copy(clone.Items, s.Items)
	}
	return clone
}

// dedup appends incoming to existing, skipping entries whose (kind, id)
// identity is already present.
func dedup(existing, incoming []catalog.AdSummary) []catalog.AdSummary {
	seen := make(map[catalog.AdRef]struct{}, len(existing)+len(incoming))
	result := make([]catalog.AdSummary, 0, len(existing)+len(incoming))

	for _, item := range existing {
		if _, dup := seen[item.Ref()]; dup {
			continue
		}
		seen[item.Ref()] = struct{}{}
		result = append(result, item)
	}
	for _, item := range incoming {
		if _, dup := seen[item.Ref()]; dup {
			continue
		}
		seen[item.Ref()] = struct{}{}
		result = append(result, item)
	}

	return result
}
