package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// RemoteStore - второй уровень кэша, общий для нескольких экземпляров сервиса.
type RemoteStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
}

// MemcachedStore - RemoteStore поверх Memcached.
type MemcachedStore struct {
	client *memcache.Client
	prefix string
}

// NewMemcachedStore - конструктор. hosts в формате "host:port", можно несколько.
func NewMemcachedStore(prefix string, hosts ...string) *MemcachedStore {
	client := memcache.New(hosts...)
	client.Timeout = 200 * time.Millisecond
	return &MemcachedStore{client: client, prefix: prefix}
}

func (s *MemcachedStore) Get(key string) ([]byte, bool, error) {
	item, err := s.client.Get(s.key(key))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return item.Value, true, nil
}

func (s *MemcachedStore) Set(key string, value []byte, ttl time.Duration) error {
	return s.client.Set(&memcache.Item{
		Key:        s.key(key),
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
}

// key: Memcached ограничивает ключ 250 байтами без пробелов,
// а ключ запроса может быть длиннее, поэтому он хешируется.
func (s *MemcachedStore) key(key string) string {
	sum := sha256.Sum256([]byte(key))
	return s.prefix + hex.EncodeToString(sum[:])
}
