package shard

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempBoltShardStore(t *testing.T) *BoltShardStore {
	t.Helper()
	dir := t.TempDir()
	store, err := OpenBoltShardStore(filepath.Join(dir, "shards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltShardStore_PutAndList(t *testing.T) {
	store := tempBoltShardStore(t)

	require.NoError(t, store.PutConfig(Config{Label: "a", Path: "a.bulk", MaxFileCount: 10}))
	require.NoError(t, store.PutConfig(Config{Label: "b", Path: "b.bulk", MaxSizeGB: 5}))

	configs, err := store.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "a", configs[0].Label)
	assert.Equal(t, "b", configs[1].Label)
}

func TestBoltShardStore_PutOverwritesWithoutReordering(t *testing.T) {
	store := tempBoltShardStore(t)

	require.NoError(t, store.PutConfig(Config{Label: "a", MaxFileCount: 1}))
	require.NoError(t, store.PutConfig(Config{Label: "b", MaxFileCount: 1}))
	require.NoError(t, store.PutConfig(Config{Label: "a", MaxFileCount: 99}))

	configs, err := store.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "a", configs[0].Label)
	assert.Equal(t, 99, configs[0].MaxFileCount)
	assert.Equal(t, "b", configs[1].Label)
}

func TestBoltShardStore_DeleteConfig(t *testing.T) {
	store := tempBoltShardStore(t)

	require.NoError(t, store.PutConfig(Config{Label: "a"}))
	require.NoError(t, store.PutConfig(Config{Label: "b"}))
	require.NoError(t, store.DeleteConfig("a"))

	configs, err := store.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "b", configs[0].Label)
}

func TestMemShardStore_PutAndList(t *testing.T) {
	store := NewMemShardStore()

	require.NoError(t, store.PutConfig(Config{Label: "a"}))
	require.NoError(t, store.PutConfig(Config{Label: "b"}))

	configs, err := store.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "a", configs[0].Label)
	assert.Equal(t, "b", configs[1].Label)
}
