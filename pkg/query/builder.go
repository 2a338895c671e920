// Package query builds canonical catalog request parameters from a
// filter snapshot. Building is pure: the same filter, offset, and limit
// always produce the same parameter set, and the filter is never mutated.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort identifies a catalog ordering accepted by the list endpoints.
type Sort string

const (
	// SortDateNew orders newest first. This is the default.
	SortDateNew Sort = "date_new"

	// SortDateOld orders oldest first.
	SortDateOld Sort = "date_old"

	// SortPriceAsc orders cheapest first.
	SortPriceAsc Sort = "price_asc"

	// SortPriceDesc orders most expensive first.
	SortPriceDesc Sort = "price_desc"
)

// Page size bounds. The backend caps limit at 50 and defaults to 20.
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// Normalize maps unknown sort values to SortDateNew, mirroring the
// backend's fallback so client and server agree on the effective order.
func (s Sort) Normalize() Sort {
	switch s {
	case SortDateNew, SortDateOld, SortPriceAsc, SortPriceDesc:
		return s
	default:
		return SortDateNew
	}
}

// Filter is the user-driven filter/search/sort snapshot for a listing
// screen. Zero values mean "not set": empty strings are omitted from the
// request, and a price bound of 0 is treated as absent.
type Filter struct {
	City       string
	SearchText string
	Sort       Sort
	PriceMin   int
	PriceMax   int
}

// Build produces the parameter set for a catalog list request.
// offset, limit, and sort are always present; city, q, price_min, and
// price_max appear only when the corresponding filter field is set.
// SearchText is trimmed before the emptiness check, so whitespace-only
// input produces no q parameter.
func Build(f Filter, offset, limit int) url.Values {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", string(f.Sort.Normalize()))

	if f.City != "" {
		params.Set("city", f.City)
	}
	if q := strings.TrimSpace(f.SearchText); q != "" {
		params.Set("q", q)
	}
	if f.PriceMin > 0 {
		params.Set("price_min", strconv.Itoa(f.PriceMin))
	}
	if f.PriceMax > 0 {
		params.Set("price_max", strconv.Itoa(f.PriceMax))
	}

	return params
}
