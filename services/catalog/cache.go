package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/lazymap"

	"github.com/garmanaz/vidaria/models"
)

// DefaultCacheTTL bounds staleness of cached items; there is no explicit
// invalidation on sync updates.
const DefaultCacheTTL = 24 * time.Hour

// KV is the cache backend boundary. Get reports a miss as nil, nil.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisKV struct {
	cl redis.UniversalClient
}

func (s redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.cl.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s redisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.cl.Set(ctx, key, value, ttl).Err()
}

func (s redisKV) Del(ctx context.Context, key string) error {
	return s.cl.Del(ctx, key).Err()
}

// Loader is the storage fallback; items come back with relations eagerly
// materialized, ready for serialization.
type Loader interface {
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	GetSerie(ctx context.Context, id int64) (*models.Serie, error)
}

// Cache is a cache-aside layer over single-item lookups. Storage remains
// the source of truth: an unavailable backend degrades to direct loads.
type Cache struct {
	kv         KV
	loader     Loader
	ttl        time.Duration
	movieLoads *lazymap.LazyMap[*models.Movie]
	serieLoads *lazymap.LazyMap[*models.Serie]
}

func NewCache(redisClient *cs.RedisClient, loader Loader) *Cache {
	var kv KV
	if redisClient != nil {
		if cl := redisClient.Get(); cl != nil {
			kv = redisKV{cl: cl}
		}
	}
	if kv == nil {
		log.Warn("no cache backend configured, item lookups go to storage")
	}
	return newCache(kv, loader, DefaultCacheTTL)
}

func newCache(kv KV, loader Loader, ttl time.Duration) *Cache {
	// The lazymap only collapses concurrent storage loads for the same
	// key; the short expiry keeps the backend TTL authoritative.
	return &Cache{
		kv:     kv,
		loader: loader,
		ttl:    ttl,
		movieLoads: lazymap.New[*models.Movie](&lazymap.Config{
			Expire: time.Second,
		}),
		serieLoads: lazymap.New[*models.Serie](&lazymap.Config{
			Expire: time.Second,
		}),
	}
}

// GetMovie returns the movie by id, serving from cache when possible.
// Absence is returned as nil without caching a negative result.
func (s *Cache) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	key := movieKey(id)
	if movie, ok := cacheGet[models.Movie](ctx, s.kv, key); ok {
		return movie, nil
	}
	movie, err := s.movieLoads.Get(key, func() (*models.Movie, error) {
		return s.loader.GetMovie(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, nil
	}
	s.cacheSet(ctx, key, movie)
	return movie, nil
}

func (s *Cache) GetSerie(ctx context.Context, id int64) (*models.Serie, error) {
	key := serieKey(id)
	if serie, ok := cacheGet[models.Serie](ctx, s.kv, key); ok {
		return serie, nil
	}
	serie, err := s.serieLoads.Get(key, func() (*models.Serie, error) {
		return s.loader.GetSerie(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if serie == nil {
		return nil, nil
	}
	s.cacheSet(ctx, key, serie)
	return serie, nil
}

// InvalidateMovie drops the cached entry after an administrative write so
// a removed or edited record is not served for the remaining TTL.
func (s *Cache) InvalidateMovie(ctx context.Context, id int64) {
	s.invalidate(ctx, movieKey(id))
}

func (s *Cache) InvalidateSerie(ctx context.Context, id int64) {
	s.invalidate(ctx, serieKey(id))
}

func (s *Cache) invalidate(ctx context.Context, key string) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Del(ctx, key); err != nil {
		log.WithError(err).Warnf("failed to invalidate cache key %v", key)
	}
}

func (s *Cache) cacheSet(ctx context.Context, key string, v any) {
	if s.kv == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Warnf("failed to serialize cache value for %v", key)
		return
	}
	if err := s.kv.Set(ctx, key, b, s.ttl); err != nil {
		log.WithError(err).Warnf("cache write failed for %v", key)
	}
}

// cacheGet treats backend failures and corrupt payloads as misses so the
// read path falls through to storage.
func cacheGet[T any](ctx context.Context, kv KV, key string) (*T, bool) {
	if kv == nil {
		return nil, false
	}
	b, err := kv.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warnf("cache read failed for %v", key)
		return nil, false
	}
	if b == nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		log.WithError(err).Warnf("failed to deserialize cache value for %v", key)
		return nil, false
	}
	return &v, true
}

func movieKey(id int64) string {
	return fmt.Sprintf("movie:%v", id)
}

func serieKey(id int64) string {
	return fmt.Sprintf("serie:%v", id)
}
