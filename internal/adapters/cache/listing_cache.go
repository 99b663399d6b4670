package cache

import (
	"context"
	"encoding/json"
	"time"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/karlseguin/ccache/v3"
	"golang.org/x/sync/singleflight"
)

// TTLs - время, через которое закэшированный ответ считается устаревшим.
type TTLs struct {
	Properties time.Duration
	Featured   time.Duration
	Detail     time.Duration
	Stats      time.Duration
	Types      time.Duration
}

// DefaultTTLs совпадают с настройками витрины.
var DefaultTTLs = TTLs{
	Properties: 5 * time.Minute,
	Featured:   10 * time.Minute,
	Detail:     10 * time.Minute,
	Stats:      30 * time.Minute,
	Types:      time.Hour,
}

// CachedListingSource - декоратор port.ListingSource с кэшем ответов.
// Ключ страницы - канонически закодированный запрос, ошибки не кэшируются.
// Одинаковые запросы, пришедшие одновременно, выполняются один раз.
//
// Возвращаемые значения общие для всех читателей и не должны изменяться.
type CachedListingSource struct {
	next   port.ListingSource
	local  *ccache.Cache[any]
	remote RemoteStore
	ttls   TTLs
	group  singleflight.Group
}

// NewCachedListingSource - конструктор. remote может быть nil.
func NewCachedListingSource(next port.ListingSource, ttls TTLs, maxItems int64, remote RemoteStore) *CachedListingSource {
	if maxItems <= 0 {
		maxItems = 1000
	}
	return &CachedListingSource{
		next:   next,
		local:  ccache.New(ccache.Configure[any]().MaxSize(maxItems)),
		remote: remote,
		ttls:   ttls,
	}
}

// Stop останавливает фоновую горутину ccache.
func (c *CachedListingSource) Stop() {
	c.local.Stop()
}

// Clear сбрасывает локальный уровень.
func (c *CachedListingSource) Clear() {
	c.local.Clear()
}

func (c *CachedListingSource) FetchPage(ctx context.Context, query domain.BackendQuery) (*domain.RawPage, error) {
	ttl := c.ttls.Properties
	if query.Featured != nil && *query.Featured {
		ttl = c.ttls.Featured
	}
	key := "properties:" + contracts.EncodeQuery(query).Encode()
	return load(ctx, c, key, ttl, func(ctx context.Context) (*domain.RawPage, error) {
		return c.next.FetchPage(ctx, query)
	})
}

func (c *CachedListingSource) GetByID(ctx context.Context, id domain.ListingID) (*domain.BackendListing, error) {
	return load(ctx, c, "detail:"+string(id), c.ttls.Detail, func(ctx context.Context) (*domain.BackendListing, error) {
		return c.next.GetByID(ctx, id)
	})
}

func (c *CachedListingSource) GetTypes(ctx context.Context) ([]domain.PropertyType, error) {
	return load(ctx, c, "types", c.ttls.Types, func(ctx context.Context) ([]domain.PropertyType, error) {
		return c.next.GetTypes(ctx)
	})
}

func (c *CachedListingSource) GetStats(ctx context.Context) (*domain.PropertyStats, error) {
	return load(ctx, c, "stats", c.ttls.Stats, func(ctx context.Context) (*domain.PropertyStats, error) {
		return c.next.GetStats(ctx)
	})
}

// load: L1 (ccache) -> L2 (remote) -> источник через singleflight.
// Общий запрос к источнику не отменяется отменой одного из ожидающих,
// иначе вытесненный поиск сорвал бы такой же запрос следующего.
func load[T any](ctx context.Context, c *CachedListingSource, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "CachedListingSource",
		"cache_key": key,
	})

	if item := c.local.Get(key); item != nil && !item.Expired() {
		if v, ok := item.Value().(T); ok {
			logger.Debug("Cache HIT (local)", nil)
			return v, nil
		}
	}

	if c.remote != nil {
		if v, ok := loadRemote[T](c, key, ttl, logger); ok {
			return v, nil
		}
	}

	resultCh := c.group.DoChan(key, func() (interface{}, error) {
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		c.local.Set(key, v, ttl)
		if c.remote != nil {
			storeRemote(c, key, v, ttl, logger)
		}
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, &domain.TransportError{Cause: ctx.Err()}
	case res := <-resultCh:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			logger.Debug("Coalesced with in-flight request", nil)
		}
		return res.Val.(T), nil
	}
}

func loadRemote[T any](c *CachedListingSource, key string, ttl time.Duration, logger port.LoggerPort) (T, bool) {
	var zero T
	raw, found, err := c.remote.Get(key)
	if err != nil {
		logger.Warn("Remote cache unavailable", port.Fields{"error": err.Error()})
		return zero, false
	}
	if !found {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("Failed to decode remote cache entry", port.Fields{"error": err.Error()})
		return zero, false
	}
	c.local.Set(key, v, ttl)
	logger.Debug("Cache HIT (remote), stored in local cache", nil)
	return v, true
}

func storeRemote(c *CachedListingSource, key string, v any, ttl time.Duration, logger port.LoggerPort) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Failed to encode remote cache entry", port.Fields{"error": err.Error()})
		return
	}
	if err := c.remote.Set(key, raw, ttl); err != nil {
		logger.Warn("Failed to store remote cache entry", port.Fields{"error": err.Error()})
	}
}
