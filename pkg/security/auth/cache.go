package auth

import (
	"context"
	"time"

	"github.com/allegro/bigcache"
	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Cache holds session entries until they expire
type Cache interface {
	Put(ctx context.Context, key string, entry []byte, ttl time.Duration) (err error)
	Get(ctx context.Context, key string) (entry []byte, err error)
	Delete(ctx context.Context, key string) (err error)
	Close() error
}

//---------------------------------------------------------------------------
// in-memory cache
//---------------------------------------------------------------------------

type memoryCache struct {
	backend *bigcache.BigCache
}

// NewMemoryCache returns an in-memory cache, entries are evicted
// after a fixed life window regardless of their own ttl,
// zero life window means DefaultSessionTTL
func NewMemoryCache(lifeWindow time.Duration) (Cache, error) {
	if lifeWindow <= 0 {
		lifeWindow = DefaultSessionTTL
	}

	config := bigcache.DefaultConfig(lifeWindow)
	config.CleanWindow = time.Minute

	backend, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize memory cache")
	}

	return &memoryCache{backend: backend}, nil
}

func (c *memoryCache) Put(ctx context.Context, key string, entry []byte, ttl time.Duration) (err error) {
	return errors.Wrapf(c.backend.Set(key, entry), "failed to cache entry %s", key)
}

// NOTE: bigcache fails a lookup only when the entry is missing or evicted
func (c *memoryCache) Get(ctx context.Context, key string) (entry []byte, err error) {
	if entry, err = c.backend.Get(key); err != nil {
		return nil, ErrCacheMiss
	}

	return entry, nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) (err error) {
	// a missing entry is already deleted
	_ = c.backend.Delete(key)

	return nil
}

func (c *memoryCache) Close() error {
	return c.backend.Reset()
}

//---------------------------------------------------------------------------
// persistent cache
//---------------------------------------------------------------------------

type badgerCache struct {
	db *badger.DB
}

// badgerLogger routes badger's own logging through zap
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

// NewBadgerCache returns a cache persisted in a given directory,
// so that sessions survive a restart
func NewBadgerCache(dir string, logger *zap.Logger) (Cache, error) {
	opts := badger.DefaultOptions(dir)

	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.Named("[badger]").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger cache at %s", dir)
	}

	return &badgerCache{db: db}, nil
}

func (c *badgerCache) Put(ctx context.Context, key string, entry []byte, ttl time.Duration) (err error) {
	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), entry)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}

		return txn.SetEntry(e)
	})

	return errors.Wrapf(err, "failed to cache entry %s", key)
}

func (c *badgerCache) Get(ctx context.Context, key string) (entry []byte, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		entry, err = item.ValueCopy(nil)

		return err
	})

	switch err {
	case nil:
		return entry, nil
	case badger.ErrKeyNotFound:
		return nil, ErrCacheMiss
	default:
		return nil, errors.Wrapf(err, "failed to obtain cached entry %s", key)
	}
}

func (c *badgerCache) Delete(ctx context.Context, key string) (err error) {
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})

	return errors.Wrapf(err, "failed to delete cached entry %s", key)
}

func (c *badgerCache) Close() error {
	return c.db.Close()
}
