package shard

// Policy selects which registered shard an Add should land on. The
// source spec describes this as "a collaborator, not in the core
// engine" honoring per-shard {maxSizeGB, maxFileCount} limits.
type Policy string

const (
	// PolicyFill prefers the fullest shard that still fits the new blob,
	// packing shards one at a time before moving to the next.
	PolicyFill Policy = "fill"

	// PolicySpread prefers the least-full shard, distributing load evenly
	// across all registered shards.
	PolicySpread Policy = "spread"
)

// limits is the per-shard capacity configuration.
type limits struct {
	maxSizeBytes int64
	maxFileCount int
}

// state is a shard's current occupancy, used only for selection; the
// manager is the source of truth for the authoritative count.
type state struct {
	sizeBytes int64
	fileCount int
}

// fits reports whether one more blob of the given size can still be
// admitted under l.
func (l limits) fits(s state, addedBytes int64) bool {
	if l.maxFileCount > 0 && s.fileCount+1 > l.maxFileCount {
		return false
	}
	if l.maxSizeBytes > 0 && s.sizeBytes+addedBytes > l.maxSizeBytes {
		return false
	}
	return true
}

// selectIndex picks the best-fitting index in states under policy,
// honoring each entry's limits and breaking ties by file count in the
// policy's own direction (fill breaks ties toward the shard with more
// files already; spread breaks ties toward fewer). addedBytes is the
// size of the blob about to be admitted, used to pre-check maxSizeGB.
func selectIndex(policy Policy, states []state, lims []limits, addedBytes int64) (int, error) {
	best := -1
	for i := range states {
		if !lims[i].fits(states[i], addedBytes) {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if betterFit(policy, states[best], states[i]) {
			best = i
		}
	}
	if best == -1 {
		return 0, ErrNoEligibleShard
	}
	return best, nil
}

// betterFit reports whether candidate is preferred over current under
// policy.
func betterFit(policy Policy, current, candidate state) bool {
	switch policy {
	case PolicyFill:
		if candidate.sizeBytes != current.sizeBytes {
			return candidate.sizeBytes > current.sizeBytes
		}
		return candidate.fileCount > current.fileCount
	case PolicySpread:
		if candidate.sizeBytes != current.sizeBytes {
			return candidate.sizeBytes < current.sizeBytes
		}
		return candidate.fileCount < current.fileCount
	default:
		return false
	}
}
