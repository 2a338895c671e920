package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies one cached catalog response.
type Key struct {
	// Endpoint is the catalog endpoint path (e.g. "/api/cars").
	Endpoint string

	// Params are the request query parameters.
	Params url.Values
}

// String generates a deterministic cache key string.
// Format: catalog:endpoint:param1=val1:param2=val2
//
// Example:
//
//	catalog:api/cars:city=Москва:limit=20:offset=0:sort=date_new
func (k Key) String() string {
	parts := []string{"catalog"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Params sorted for determinism.
	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
