package store

import (
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"
)

// SchemaVersion is the current on-disk schema version this build writes and
// accepts. OpenBoltBackend refuses to open a store stamped with a newer
// version, the engine's analogue of the teacher's MANIFEST.json
// SchemaVersion check (node/store/db.go Open).
const SchemaVersion uint32 = 1

type boltBackend struct {
	db *bolt.DB
}

// OpenBoltBackend opens (creating if absent) a bbolt-backed Backend at path,
// provisions the fixed column set as buckets, and checks the embedded
// schema-version stamp. A fresh store is stamped with SchemaVersion on
// first open.
func OpenBoltBackend(path string) (Backend, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, newErr(ErrBackendIO, "open bbolt", err)
	}

	if err := bdb.Update(func(tx *bolt.Tx) error {
		for _, col := range Columns {
			if _, err := tx.CreateBucketIfNotExists([]byte(col)); err != nil {
				return fmt.Errorf("create bucket %s: %w", col, err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, newErr(ErrBackendIO, "provision columns", err)
	}

	if err := checkOrStampVersion(bdb); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	slog.Default().Info("store: opened bbolt backend", "path", path, "schema_version", SchemaVersion)
	return &boltBackend{db: bdb}, nil
}

func checkOrStampVersion(bdb *bolt.DB) error {
	return bdb.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(ColumnMeta))
		raw := meta.Get(metaKeySchemaVer)
		if raw == nil {
			return meta.Put(metaKeySchemaVer, encodeU64(uint64(SchemaVersion)))
		}
		v, ok := decodeU64(raw)
		if !ok {
			return newErr(ErrDecode, "malformed schema version stamp", nil)
		}
		if v > uint64(SchemaVersion) {
			slog.Default().Error("store: schema version mismatch",
				"on_disk_version", v, "supported_version", SchemaVersion)
			return newErr(ErrVersionMismatch,
				fmt.Sprintf("on-disk schema version %d newer than supported %d", v, SchemaVersion), nil)
		}
		return nil
	})
}

func (b *boltBackend) Read(col Column, key []byte) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(col)).Get(key)
		if v == nil {
			return nil
		}
		found = true
		out = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, false, newErr(ErrBackendIO, "read", err)
	}
	if !found {
		return nil, false, nil
	}
	return out, true, nil
}

func (b *boltBackend) PartialRead(col Column, key []byte, start, end int) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(col)).Get(key)
		if v == nil {
			return nil
		}
		found = true
		if start < 0 || end > len(v) || start > end {
			return fmt.Errorf("partial read range [%d:%d] out of bounds for %d-byte value", start, end, len(v))
		}
		out = append([]byte(nil), v[start:end]...)
		return nil
	})
	if err != nil {
		return nil, false, newErr(ErrBackendIO, "partial read", err)
	}
	if !found {
		return nil, false, nil
	}
	return out, true, nil
}

func (b *boltBackend) ProcessRead(col Column, key []byte, fn func([]byte) error) (bool, error) {
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(col)).Get(key)
		if v == nil {
			return nil
		}
		found = true
		return fn(v)
	})
	if err != nil {
		return false, newErr(ErrBackendIO, "process read", err)
	}
	return found, nil
}

func (b *boltBackend) Traverse(col Column, fn func(key, val []byte) error) error {
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(col)).ForEach(fn)
	})
	if err != nil {
		return newErr(ErrBackendIO, "traverse", err)
	}
	return nil
}

func (b *boltBackend) Begin() (Batch, error) {
	tx, err := b.db.Begin(true)
	if err != nil {
		return nil, newErr(ErrBackendIO, "begin write transaction", err)
	}
	return &boltBatch{tx: tx}, nil
}

func (b *boltBackend) Close() error {
	if err := b.db.Close(); err != nil {
		return newErr(ErrBackendIO, "close", err)
	}
	return nil
}

type boltBatch struct {
	tx   *bolt.Tx
	done bool
}

func (b *boltBatch) Insert(col Column, key, val []byte) error {
	if err := b.tx.Bucket([]byte(col)).Put(key, val); err != nil {
		return newErr(ErrBackendIO, "batch insert", err)
	}
	return nil
}

func (b *boltBatch) Delete(col Column, key []byte) error {
	if err := b.tx.Bucket([]byte(col)).Delete(key); err != nil {
		return newErr(ErrBackendIO, "batch delete", err)
	}
	return nil
}

func (b *boltBatch) Commit() error {
	if b.done {
		return nil
	}
	b.done = true
	if err := b.tx.Commit(); err != nil {
		return newErr(ErrBackendIO, "commit", err)
	}
	return nil
}

func (b *boltBatch) Discard() error {
	if b.done {
		return nil
	}
	b.done = true
	if err := b.tx.Rollback(); err != nil {
		return newErr(ErrBackendIO, "rollback", err)
	}
	return nil
}
