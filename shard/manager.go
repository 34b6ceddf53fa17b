// Package shard implements the selection-policy collaborator that
// spreads blobs across several *bulkstore.BulkStorage containers: a
// Manager picks a target shard per Add under a fill/spread policy and
// per-shard {maxSizeGB, maxFileCount} limits, and a Resolver locates
// whichever shard holds a given blob for Get.
package shard

import (
	"fmt"
	"io"
	"sync"

	"github.com/bitshard/bulkstore/bulkrecord"
	"github.com/bitshard/bulkstore/bulkstore"
)

// entry pairs a registered shard's live storage with the bookkeeping
// Select needs: its configured limits and its last-known occupancy.
type entry struct {
	cfg     Config
	storage *bulkstore.BulkStorage
	st      state
}

// Manager owns N BulkStorage instances and routes Add calls between them
// per Policy. It does not own the BulkStorage lifecycle beyond routing —
// callers create/open each shard's BulkStorage themselves and Register
// it here.
type Manager struct {
	mu     sync.Mutex
	policy Policy
	meta   MetadataStore
	shards []*entry
	byName map[string]int
}

// NewManager creates a Manager with the given selection policy. meta may
// be nil, in which case shard configuration is not persisted across
// restarts (the BulkStorage containers themselves still persist their
// own records independently).
func NewManager(policy Policy, meta MetadataStore) *Manager {
	return &Manager{
		policy: policy,
		meta:   meta,
		byName: make(map[string]int),
	}
}

// Register adds a shard to the manager's routing pool. fileCount and
// sizeBytes should reflect the shard's current occupancy (len(Records())
// and the container's file size) at registration time.
func (m *Manager) Register(cfg Config, storage *bulkstore.BulkStorage, fileCount int, sizeBytes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byName[cfg.Label]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateShard, cfg.Label)
	}

	m.shards = append(m.shards, &entry{
		cfg:     cfg,
		storage: storage,
		st:      state{sizeBytes: sizeBytes, fileCount: fileCount},
	})
	m.byName[cfg.Label] = len(m.shards) - 1

	if m.meta != nil {
		if err := m.meta.PutConfig(cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	return nil
}

// Select picks the shard Add would use for a blob of approximately
// sizeHint bytes, without performing the add. With a sizeHint of 0,
// maxSizeGB excludes only shards whose tracked size already exceeds it.
func (m *Manager) Select(sizeHint int64) (label string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.selectLocked(sizeHint)
	if err != nil {
		return "", err
	}
	return m.shards[idx].cfg.Label, nil
}

func (m *Manager) selectLocked(sizeHint int64) (int, error) {
	if len(m.shards) == 0 {
		return 0, ErrNoEligibleShard
	}
	states := make([]state, len(m.shards))
	lims := make([]limits, len(m.shards))
	for i, e := range m.shards {
		states[i] = e.st
		lims[i] = limits{
			maxSizeBytes: gbToBytes(e.cfg.MaxSizeGB),
			maxFileCount: e.cfg.MaxFileCount,
		}
	}
	return selectIndex(m.policy, states, lims, sizeHint)
}

func gbToBytes(gb float64) int64 {
	if gb <= 0 {
		return 0
	}
	return int64(gb * (1 << 30))
}

// Add routes r to the shard Select would choose, then performs the add
// and updates that shard's tracked occupancy.
func (m *Manager) Add(r io.Reader, sizeHint int64) (bulkrecord.FileRecord, string, error) {
	m.mu.Lock()
	idx, err := m.selectLocked(sizeHint)
	if err != nil {
		m.mu.Unlock()
		return bulkrecord.FileRecord{}, "", err
	}
	e := m.shards[idx]
	m.mu.Unlock()

	record, err := e.storage.Add(r)
	if err != nil {
		return bulkrecord.FileRecord{}, "", err
	}

	m.mu.Lock()
	e.st.fileCount++
	e.st.sizeBytes += record.End - record.Start
	m.mu.Unlock()

	return record, e.cfg.Label, nil
}

// Delete routes to the shard named by label.
func (m *Manager) Delete(label string, u bulkrecord.UUID) (bool, error) {
	e, err := m.lookup(label)
	if err != nil {
		return false, err
	}

	records, err := e.storage.Records()
	if err != nil {
		return false, err
	}
	var span int64
	for _, r := range records {
		if r.UUID == u {
			span = r.End - r.Start
			break
		}
	}

	ok, err := e.storage.Delete(u)
	if err != nil {
		return false, err
	}
	if ok {
		m.mu.Lock()
		e.st.fileCount--
		e.st.sizeBytes -= span
		m.mu.Unlock()
	}
	return ok, nil
}

// Shards returns the registered shard labels in registration order.
func (m *Manager) Shards() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	labels := make([]string, len(m.shards))
	for i, e := range m.shards {
		labels[i] = e.cfg.Label
	}
	return labels
}

func (m *Manager) lookup(label string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.byName[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShard, label)
	}
	return m.shards[idx], nil
}

// storageByLabel exposes a shard's underlying BulkStorage, used by
// Resolver to try shards in registration order.
func (m *Manager) storageByLabel(label string) (*bulkstore.BulkStorage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.byName[label]
	if !ok {
		return nil, false
	}
	return m.shards[idx].storage, true
}
