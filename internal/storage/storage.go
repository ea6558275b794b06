// Package storage holds the profile image object stores. The default
// backend writes to local disk and is served under a public path
// prefix; the s3 backend keeps the same contract against a bucket.
package storage

import (
	"context"
	"io"
)

// ObjectStore writes and removes profile image objects. Save returns
// the server-relative (or absolute, for s3) URL the stored object is
// reachable under.
type ObjectStore interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Remove(ctx context.Context, name string) error
}
