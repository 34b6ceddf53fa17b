package shard

// Config is the persisted configuration for one registered shard.
type Config struct {
	Label        string
	Path         string
	MaxSizeGB    float64
	MaxFileCount int
}

// MetadataStore persists shard configuration across process restarts.
// The live occupancy (size, file count) is always recomputed from the
// reopened BulkStorage itself, never persisted here, so a stale count
// can never desynchronize from the actual container.
type MetadataStore interface {
	// PutConfig registers or overwrites a shard's configuration.
	PutConfig(cfg Config) error

	// ListConfigs returns every registered shard's configuration, in
	// registration order.
	ListConfigs() ([]Config, error)

	// DeleteConfig removes a shard's configuration by label.
	DeleteConfig(label string) error

	// Close releases the store's resources.
	Close() error
}
