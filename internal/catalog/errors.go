package catalog

import (
	"errors"
	"fmt"
)

// Failure kinds reported by the remote client and the store. Callers match
// them with errors.Is; the wrapped cause carries the transport detail.
var (
	ErrFetchFailed    = errors.New("fetch failed")
	ErrCreateFailed   = errors.New("create failed")
	ErrDownloadFailed = errors.New("download failed")
)

// wrapKind tags err with kind unless it already carries it.
func wrapKind(kind, err error) error {
	if err == nil || errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
