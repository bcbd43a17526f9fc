package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/maxviazov/query-explorer/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestRedis connects to REDIS_TEST_ADDR, or starts a container when
// INTEGRATION_TESTS=1. Otherwise the test is skipped.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		if os.Getenv("INTEGRATION_TESTS") != "1" {
			t.Skip("redis not configured; set REDIS_TEST_ADDR or INTEGRATION_TESTS=1")
		}
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })

		host, err := container.Host(ctx)
		require.NoError(t, err)
		port, err := container.MappedPort(ctx, "6379")
		require.NoError(t, err)
		addr = host + ":" + port.Port()
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestFragmentKey_String(t *testing.T) {
	assert.Equal(t, "explorer:fragment:sales:0.3:2:10",
		FragmentKey{Table: "sales", Generation: "0.3", Page: 2, RecordsPerPage: 10}.String())
	assert.Equal(t, "explorer:fragment:a%3Ab%2A:1.0:1:5",
		FragmentKey{Table: "a:b*", Generation: "1.0", Page: 1, RecordsPerPage: 5}.String())
	assert.Equal(t, "explorer:fragment:a%3Ab%2A:*", tablePattern("a:b*"))
	assert.Equal(t, "explorer:gen:table:a%3Ab%2A", tableGenKey("a:b*"))
}

func TestNewRedis_Panic(t *testing.T) {
	assert.Panics(t, func() { NewRedis(nil, time.Minute) })
}

func TestNewRedis_DefaultTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	assert.Equal(t, 10*time.Minute, NewRedis(client, 0).ttl)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c FragmentCache = Nop{}
	gen, err := c.Generation(ctx, "t")
	require.NoError(t, err)
	assert.Empty(t, gen)
	require.NoError(t, c.Set(ctx, FragmentKey{Table: "t", Page: 1, RecordsPerPage: 10}, model.TablePage{HTML: "x"}))
	_, err = c.Get(ctx, FragmentKey{Table: "t", Page: 1, RecordsPerPage: 10})
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.InvalidateTable(ctx, "t"))
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestRedis_SetGetInvalidate(t *testing.T) {
	client := setupTestRedis(t)
	c := NewRedis(client, time.Minute)
	ctx := context.Background()

	k1 := FragmentKey{Table: "sales", Page: 1, RecordsPerPage: 10}
	k2 := FragmentKey{Table: "sales", Page: 2, RecordsPerPage: 25}
	other := FragmentKey{Table: "sales_archive", Page: 1, RecordsPerPage: 10}

	_, err := c.Get(ctx, k1)
	require.ErrorIs(t, err, ErrCacheMiss)

	page := model.TablePage{HTML: "<table></table>", PageNumber: 1, TotalPages: 3, TotalRecords: 25}
	require.NoError(t, c.Set(ctx, k1, page))
	require.NoError(t, c.Set(ctx, k2, page))
	require.NoError(t, c.Set(ctx, other, page))

	got, err := c.Get(ctx, k1)
	require.NoError(t, err)
	assert.Equal(t, "sales", got.TableName)
	assert.Equal(t, 10, got.RecordsPerPage)
	assert.Equal(t, page.HTML, got.HTML)
	assert.Equal(t, 3, got.TotalPages)

	ttl, err := client.TTL(ctx, k1.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.InvalidateTable(ctx, "sales"))
	_, err = c.Get(ctx, k1)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, k2)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, other)
	assert.NoError(t, err, "other tables survive")

	require.NoError(t, c.InvalidateAll(ctx))
	_, err = c.Get(ctx, other)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedis_GenerationMovesOnInvalidate(t *testing.T) {
	client := setupTestRedis(t)
	c := NewRedis(client, time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, "0.0", gen)

	// A page rendered before the invalidation lands after it.
	before := FragmentKey{Table: "sales", Generation: gen, Page: 1, RecordsPerPage: 10}
	require.NoError(t, c.InvalidateTable(ctx, "sales"))
	require.NoError(t, c.Set(ctx, before, model.TablePage{HTML: "<table>old</table>"}))

	gen, err = c.Generation(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, "0.1", gen)
	_, err = c.Get(ctx, FragmentKey{Table: "sales", Generation: gen, Page: 1, RecordsPerPage: 10})
	assert.ErrorIs(t, err, ErrCacheMiss, "the late write is not served")

	other, err := c.Generation(ctx, "sales_archive")
	require.NoError(t, err)
	assert.Equal(t, "0.0", other)

	require.NoError(t, c.InvalidateAll(ctx))
	gen, err = c.Generation(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, "1.1", gen)

	// generation counters are not fragments
	n, err := client.Exists(ctx, genAllKey, tableGenKey("sales")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRedis_InvalidEntry(t *testing.T) {
	client := setupTestRedis(t)
	c := NewRedis(client, time.Minute)
	ctx := context.Background()
	k := FragmentKey{Table: "t", Page: 1, RecordsPerPage: 10}

	require.NoError(t, client.Set(ctx, k.String(), "not json", time.Minute).Err())
	_, err := c.Get(ctx, k)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	// the corrupt value is dropped
	_, err = c.Get(ctx, k)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
