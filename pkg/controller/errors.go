package controller

import (
	"errors"
	"fmt"

	"github.com/avtoline/catalog-client/pkg/catalog"
)

// ErrFetcherRequired indicates a controller was configured without a fetcher.
var ErrFetcherRequired = errors.New("controller: fetcher is required")

func errUnknownKind(kind catalog.AdKind) error {
	return fmt.Errorf("controller: unknown ad kind %q", kind)
}
