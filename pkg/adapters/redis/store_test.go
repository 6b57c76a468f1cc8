package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/teevee/pkg/adapters/redis"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/aretw0/teevee/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestStore_TTLExpiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewState("s1", "start")))
	assert.Equal(t, time.Minute, mr.TTL(redis.DefaultPrefix+"s1"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_ListPrunesExpiredIndex(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	forever := redis.NewFromClient(client)
	require.NoError(t, forever.Save(ctx, "keep", domain.NewState("keep", "start")))

	past := float64(time.Now().Add(-time.Hour).Unix())
	require.NoError(t, client.ZAdd(ctx, redis.DefaultPrefix+"index", backend.Z{Score: past, Member: "gone"}).Err())

	ids, err := forever.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, ids)
}

func TestStore_WithSessionManagerAndLocker(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("it:"))
	mgr := session.NewManager(store, session.WithLocker(redis.NewLocker(client, store.Prefix())))
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	state, created, err := mgr.LoadOrStart(ctx, "s1", func(_ context.Context, id string) (*domain.State, error) {
		return domain.NewState(id, "start"), nil
	})
	require.NoError(t, err)
	assert.True(t, created)

	state.Vars.Culture = "Brazilian"
	require.NoError(t, mgr.Save(ctx, "s1", state))

	loaded, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Brazilian", loaded.Vars.Culture)
}
