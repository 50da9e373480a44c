package cache

import (
	"context"
	"testing"
	"time"

	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisIdempotencyStore_Integration(t *testing.T) {
	client := startRedis(t)
	store := NewRedisIdempotencyStoreWithClient(client, "test:")
	ctx := context.Background()

	assert.Equal(t, "redis", store.Name())
	require.NoError(t, store.Ping(ctx))

	t.Run("reserve is exclusive", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "a", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Reserve(ctx, "a", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		resp, err := store.Load(ctx, "a")
		require.NoError(t, err)
		assert.Nil(t, resp, "pending key has no response")
	})

	t.Run("save then load", func(t *testing.T) {
		want := shared.StoredResponse{StatusCode: 201, ContentType: "application/json", Body: []byte(`{"fullName":"Jane Doe"}`)}
		require.NoError(t, store.Save(ctx, "b", want, time.Minute))

		got, err := store.Load(ctx, "b")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)

		ttl, err := client.TTL(ctx, "test:b").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("release only drops pending keys", func(t *testing.T) {
		_, err := store.Reserve(ctx, "c", time.Minute)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "c"))

		ok, err := store.Reserve(ctx, "c", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, store.Save(ctx, "c", shared.StoredResponse{StatusCode: 200}, time.Minute))
		require.NoError(t, store.Release(ctx, "c"))

		got, err := store.Load(ctx, "c")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("missing key loads nil", func(t *testing.T) {
		got, err := store.Load(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
