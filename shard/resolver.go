package shard

import (
	"errors"
	"fmt"
	"io"

	"github.com/bitshard/bulkstore/bulkrecord"
	"github.com/bitshard/bulkstore/bulkstore"
)

// Resolver locates a blob across every shard registered with a Manager,
// grounded on storage.ContentResolver.Fetch's "try sources in priority
// order, return the first success" pattern. Shards are tried in
// registration order.
type Resolver struct {
	manager *Manager
}

// NewResolver creates a Resolver over manager's registered shards.
func NewResolver(manager *Manager) *Resolver {
	return &Resolver{manager: manager}
}

// Locate returns a decrypting reader for u and the label of the shard
// that held it, trying every registered shard in order. Returns
// ErrNotFound if no shard has a live record for u.
func (r *Resolver) Locate(u bulkrecord.UUID) (io.ReadCloser, string, error) {
	for _, label := range r.manager.Shards() {
		storage, ok := r.manager.storageByLabel(label)
		if !ok {
			continue
		}
		rc, err := storage.Get(u)
		if err == nil {
			return rc, label, nil
		}
		if !errors.Is(err, bulkstore.ErrNotFound) {
			return nil, "", fmt.Errorf("shard: resolve on %s: %w", label, err)
		}
	}
	return nil, "", ErrNotFound
}
