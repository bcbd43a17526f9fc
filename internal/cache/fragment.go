// Package cache keeps rendered table fragments so repeated page requests skip
// the row query and template render.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/maxviazov/query-explorer/internal/model"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested fragment is not cached.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates a cached value could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

const (
	keyPrefix = "explorer:fragment"
	genPrefix = "explorer:gen"
	genAllKey = genPrefix + ":all"
)

// FragmentKey identifies one rendered page of one table at one cache
// generation.
type FragmentKey struct {
	Table          string
	Generation     string
	Page           int
	RecordsPerPage int
}

// String renders the redis key, e.g. explorer:fragment:sales:0.3:2:10.
// The table name is query-escaped so it never carries ':' or glob characters.
func (k FragmentKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", keyPrefix, url.QueryEscape(k.Table), k.Generation, k.Page, k.RecordsPerPage)
}

func tablePattern(table string) string {
	return keyPrefix + ":" + url.QueryEscape(table) + ":*"
}

func tableGenKey(table string) string {
	return genPrefix + ":table:" + url.QueryEscape(table)
}

// FragmentCache stores rendered pages.
//
// Generation returns the current cache generation of a table. Callers read it
// before loading the table and put it in the FragmentKey, so a page rendered
// from data that an invalidation has since replaced is stored under a key no
// later request asks for. Implementations must treat a failing backend as a
// miss on read; callers still render on any Get or Generation error.
type FragmentCache interface {
	Generation(ctx context.Context, table string) (string, error)
	Get(ctx context.Context, key FragmentKey) (model.TablePage, error)
	Set(ctx context.Context, key FragmentKey, page model.TablePage) error
	InvalidateTable(ctx context.Context, table string) error
	InvalidateAll(ctx context.Context) error
}

// entry is the stored form; TablePage hides some fields from JSON.
type entry struct {
	HTML         string    `json:"html"`
	PageNumber   int       `json:"page_number"`
	TotalPages   int       `json:"total_pages"`
	TotalRecords int       `json:"total_records"`
	CachedAt     time.Time `json:"cached_at"`
}

// Redis is a FragmentCache on a go-redis client.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps client; entries expire after ttl.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Redis{client: client, ttl: ttl}
}

// Generation combines the store-wide and per-table counters; either one
// moving retires every fragment rendered before it.
func (r *Redis) Generation(ctx context.Context, table string) (string, error) {
	vals, err := r.client.MGet(ctx, genAllKey, tableGenKey(table)).Result()
	if err != nil {
		CacheErrors.WithLabelValues("generation").Inc()
		return "", fmt.Errorf("redis mget generation: %w", err)
	}
	gen := make([]string, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			s = "0"
		}
		gen[i] = s
	}
	return strings.Join(gen, "."), nil
}

func (r *Redis) Get(ctx context.Context, key FragmentKey) (model.TablePage, error) {
	data, err := r.client.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return model.TablePage{}, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return model.TablePage{}, fmt.Errorf("redis get: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		_ = r.client.Del(ctx, key.String()).Err()
		return model.TablePage{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.Inc()
	return model.TablePage{
		TableName:      key.Table,
		HTML:           e.HTML,
		PageNumber:     e.PageNumber,
		TotalPages:     e.TotalPages,
		TotalRecords:   e.TotalRecords,
		RecordsPerPage: key.RecordsPerPage,
	}, nil
}

func (r *Redis) Set(ctx context.Context, key FragmentKey, page model.TablePage) error {
	data, err := json.Marshal(entry{
		HTML:         page.HTML,
		PageNumber:   page.PageNumber,
		TotalPages:   page.TotalPages,
		TotalRecords: page.TotalRecords,
		CachedAt:     time.Now().UTC(),
	})
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := r.client.Set(ctx, key.String(), data, r.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidateTable bumps the table's generation, then drops every cached page
// of table whatever its page size.
func (r *Redis) InvalidateTable(ctx context.Context, table string) error {
	if err := r.client.Incr(ctx, tableGenKey(table)).Err(); err != nil {
		CacheErrors.WithLabelValues("generation").Inc()
		return fmt.Errorf("redis incr generation: %w", err)
	}
	return r.deleteMatching(ctx, tablePattern(table))
}

func (r *Redis) InvalidateAll(ctx context.Context) error {
	if err := r.client.Incr(ctx, genAllKey).Err(); err != nil {
		CacheErrors.WithLabelValues("generation").Inc()
		return fmt.Errorf("redis incr generation: %w", err)
	}
	return r.deleteMatching(ctx, keyPrefix+":*")
}

func (r *Redis) deleteMatching(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			CacheErrors.WithLabelValues("delete").Inc()
			return fmt.Errorf("redis del: %w", err)
		}
		Invalidations.Add(float64(len(batch)))
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("scan").Inc()
		return fmt.Errorf("redis scan %s: %w", strings.TrimSuffix(pattern, "*"), err)
	}
	return flush()
}

// Ping lets the readiness check include redis.
func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// Nop is the FragmentCache used when redis is not configured: it never hits.
type Nop struct{}

func (Nop) Generation(context.Context, string) (string, error) { return "", nil }
func (Nop) Get(context.Context, FragmentKey) (model.TablePage, error) {
	return model.TablePage{}, ErrCacheMiss
}
func (Nop) Set(context.Context, FragmentKey, model.TablePage) error { return nil }
func (Nop) InvalidateTable(context.Context, string) error           { return nil }
func (Nop) InvalidateAll(context.Context) error                     { return nil }

var (
	_ FragmentCache = (*Redis)(nil)
	_ FragmentCache = Nop{}
)
