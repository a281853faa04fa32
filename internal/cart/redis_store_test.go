package cart_test

import (
	"context"
	"testing"

	"github.com/freshmart/storefront/internal/cart"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreGet(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored quantity", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := cart.NewRedisStore(client, 42)

		mock.ExpectHGet("cart_42", "3").SetVal("2")

		quantity, ok, err := store.Get(ctx, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(2), quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing field reports ok=false", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := cart.NewRedisStore(client, 42)

		mock.ExpectHGet("cart_42", "3").RedisNil()

		_, ok, err := store.Get(ctx, 3)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt quantity surfaces the sentinel", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := cart.NewRedisStore(client, 42)

		mock.ExpectHGet("cart_42", "3").SetVal("not-a-number")

		_, _, err := store.Get(ctx, 3)
		assert.ErrorIs(t, err, cart.ErrCorruptEntry)
	})
}

func TestRedisStoreSet(t *testing.T) {
	ctx := context.Background()

	client, mock := redismock.NewClientMock()
	store := cart.NewRedisStore(client, 42)

	mock.ExpectHSet("cart_42", "3", int64(5)).SetVal(1)

	require.NoError(t, store.Set(ctx, 3, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()

	client, mock := redismock.NewClientMock()
	store := cart.NewRedisStore(client, 42)

	// HDEL of an absent field returns 0, still a success.
	mock.ExpectHDel("cart_42", "3").SetVal(0)

	require.NoError(t, store.Delete(ctx, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreSnapshot(t *testing.T) {
	ctx := context.Background()

	client, mock := redismock.NewClientMock()
	store := cart.NewRedisStore(client, 42)

	mock.ExpectHGetAll("cart_42").SetVal(map[string]string{"3": "2", "5": "1"})

	entries, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{3: 2, 5: 1}, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreClear(t *testing.T) {
	ctx := context.Background()

	t.Run("clears the listed fields", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := cart.NewRedisStore(client, 42)

		mock.ExpectHDel("cart_42", "3", "5").SetVal(2)

		require.NoError(t, store.Clear(ctx, []int64{3, 5}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := cart.NewRedisStore(client, 42)

		require.NoError(t, store.Clear(ctx, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisStoreTotalCount(t *testing.T) {
	ctx := context.Background()

	client, mock := redismock.NewClientMock()
	store := cart.NewRedisStore(client, 42)

	mock.ExpectHGetAll("cart_42").SetVal(map[string]string{"3": "2", "5": "1", "9": "4"})

	total, err := store.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
}
