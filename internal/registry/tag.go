package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRepositoryNotFoundOrPrivate is matched by FetchError values for HTTP 404.
var ErrRepositoryNotFoundOrPrivate = errors.New("repository not found or not public")

// Tag is one registry tag as returned by the backend. Raw keeps the backend
// record for diagnostics; it is nil for backends without per-tag metadata.
type Tag struct {
	Name           string
	ManifestDigest string
	Raw            json.RawMessage
}

// TagSource lists every tag of a repository, following pagination.
type TagSource interface {
	FetchAllTags(executionContext context.Context, reference RepositoryReference) ([]Tag, error)
}

// FetchError reports a failed tag listing. StatusCode is zero for transport failures.
type FetchError struct {
	Repository string
	StatusCode int
	Cause      error
}

func (fetchError FetchError) Error() string {
	if fetchError.StatusCode == 0 {
		return fmt.Sprintf("fetching tags from %s: %v", fetchError.Repository, fetchError.Cause)
	}
	return fmt.Sprintf("fetching tags from %s: HTTP %d: %v", fetchError.Repository, fetchError.StatusCode, fetchError.Cause)
}

func (fetchError FetchError) Unwrap() error {
	return fetchError.Cause
}
