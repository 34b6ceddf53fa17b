package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectIndex_Fill_PrefersFullest(t *testing.T) {
	states := []state{{sizeBytes: 10, fileCount: 1}, {sizeBytes: 100, fileCount: 3}}
	lims := []limits{{}, {}}

	idx, err := selectIndex(PolicyFill, states, lims, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestSelectIndex_Spread_PrefersEmptiest(t *testing.T) {
	states := []state{{sizeBytes: 10, fileCount: 1}, {sizeBytes: 100, fileCount: 3}}
	lims := []limits{{}, {}}

	idx, err := selectIndex(PolicySpread, states, lims, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestSelectIndex_TieBrokenByFileCount(t *testing.T) {
	states := []state{{sizeBytes: 50, fileCount: 1}, {sizeBytes: 50, fileCount: 5}}
	lims := []limits{{}, {}}

	fillIdx, err := selectIndex(PolicyFill, states, lims, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, fillIdx, "fill breaks ties toward more files")

	spreadIdx, err := selectIndex(PolicySpread, states, lims, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, spreadIdx, "spread breaks ties toward fewer files")
}

func TestSelectIndex_HonorsMaxFileCount(t *testing.T) {
	states := []state{{sizeBytes: 0, fileCount: 10}, {sizeBytes: 0, fileCount: 2}}
	lims := []limits{{maxFileCount: 10}, {}}

	idx, err := selectIndex(PolicyFill, states, lims, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestSelectIndex_HonorsMaxSizeBytes(t *testing.T) {
	states := []state{{sizeBytes: 95}, {sizeBytes: 0}}
	lims := []limits{{maxSizeBytes: 100}, {}}

	idx, err := selectIndex(PolicyFill, states, lims, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestSelectIndex_NoEligibleShard(t *testing.T) {
	states := []state{{sizeBytes: 100, fileCount: 10}}
	lims := []limits{{maxSizeBytes: 100, maxFileCount: 10}}

	_, err := selectIndex(PolicyFill, states, lims, 1)
	assert.ErrorIs(t, err, ErrNoEligibleShard)
}
