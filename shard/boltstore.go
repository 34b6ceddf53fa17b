package shard

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketConfigs = []byte("shard_configs")
	bucketOrder   = []byte("shard_order")
)

// BoltShardStore persists shard configuration in a bbolt database,
// grounded on spv.BoltHeaderStore's bucket-per-concern layout.
type BoltShardStore struct {
	db *bbolt.DB
}

// OpenBoltShardStore opens or creates the bbolt database at dbPath.
func OpenBoltShardStore(dbPath string) (*BoltShardStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %v", ErrIOFailure, err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt db: %v", ErrIOFailure, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketConfigs, bucketOrder} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create buckets: %v", ErrIOFailure, err)
	}

	return &BoltShardStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltShardStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// PutConfig registers or overwrites cfg. New labels are appended to the
// order bucket; overwriting an existing label does not change its
// position.
func (s *BoltShardStore) PutConfig(cfg Config) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		configs := tx.Bucket(bucketConfigs)
		order := tx.Bucket(bucketOrder)

		isNew := configs.Get([]byte(cfg.Label)) == nil

		data, err := encodeGob(cfg)
		if err != nil {
			return fmt.Errorf("encode shard config: %w", err)
		}
		if err := configs.Put([]byte(cfg.Label), data); err != nil {
			return fmt.Errorf("put shard config: %w", err)
		}

		if isNew {
			seq, err := order.NextSequence()
			if err != nil {
				return fmt.Errorf("next sequence: %w", err)
			}
			if err := order.Put(seqKey(seq), []byte(cfg.Label)); err != nil {
				return fmt.Errorf("put shard order: %w", err)
			}
		}
		return nil
	})
}

// ListConfigs returns every registered shard's configuration in
// registration order.
func (s *BoltShardStore) ListConfigs() ([]Config, error) {
	var configs []Config
	err := s.db.View(func(tx *bbolt.Tx) error {
		order := tx.Bucket(bucketOrder)
		configBucket := tx.Bucket(bucketConfigs)
		return order.ForEach(func(_, label []byte) error {
			data := configBucket.Get(label)
			if data == nil {
				return nil // deleted since registration; skip
			}
			var cfg Config
			if err := decodeGob(data, &cfg); err != nil {
				return fmt.Errorf("decode shard config: %w", err)
			}
			configs = append(configs, cfg)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list configs: %v", ErrIOFailure, err)
	}
	return configs, nil
}

// DeleteConfig removes a shard's configuration by label. Its order-bucket
// entry is left as a tombstone; ListConfigs silently skips it.
func (s *BoltShardStore) DeleteConfig(label string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketConfigs).Delete([]byte(label)); err != nil {
			return fmt.Errorf("%w: delete shard config: %v", ErrIOFailure, err)
		}
		return nil
	})
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
