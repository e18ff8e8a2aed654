package cache

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var grantedPrefix = []byte("granted/")

// LevelDBCache persists granted content ids on the client between runs.
type LevelDBCache struct {
	db *leveldb.DB
}

func OpenLevelDB(path string) (*LevelDBCache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open entitlement cache %s: %w", path, err)
	}
	return &LevelDBCache{db: db}, nil
}

// NewLevelDBMemory is an in-memory LevelDB, used in tests.
func NewLevelDBMemory() (*LevelDBCache, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBCache{db: db}, nil
}

func (l *LevelDBCache) Close() error { return l.db.Close() }

func (l *LevelDBCache) MarkGranted(_ context.Context, contentID string) error {
	return l.db.Put(grantedKey(contentID), []byte{1}, nil)
}

func (l *LevelDBCache) IsGranted(_ context.Context, contentID string) (bool, error) {
	_, err := l.db.Get(grantedKey(contentID), nil)
	if stderrors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Granted lists every cached content id.
func (l *LevelDBCache) Granted(_ context.Context) ([]string, error) {
	iter := l.db.NewIterator(util.BytesPrefix(grantedPrefix), nil)
	defer iter.Release()
	var out []string
	for iter.Next() {
		out = append(out, string(iter.Key()[len(grantedPrefix):]))
	}
	return out, iter.Error()
}

func (l *LevelDBCache) ClearAll(_ context.Context) error {
	iter := l.db.NewIterator(util.BytesPrefix(grantedPrefix), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}
	return l.db.Write(batch, nil)
}

func grantedKey(contentID string) []byte {
	return append(append([]byte(nil), grantedPrefix...), contentID...)
}
