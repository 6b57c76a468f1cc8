package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/teevee/pkg/adapters/memory"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/aretw0/teevee/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// slowStore delays every call to provoke races if locking is missing.
type slowStore struct {
	ports.StateStore
	saves atomic.Int32
}

func (s *slowStore) Save(ctx context.Context, id string, state *domain.State) error {
	time.Sleep(5 * time.Millisecond)
	s.saves.Add(1)
	return s.StateStore.Save(ctx, id, state)
}

func (s *slowStore) Load(ctx context.Context, id string) (*domain.State, error) {
	time.Sleep(5 * time.Millisecond)
	return s.StateStore.Load(ctx, id)
}

func startAt(node string) session.StartFunc {
	return func(_ context.Context, id string) (*domain.State, error) {
		return domain.NewState(id, node), nil
	}
}

func TestManager_LoadOrStartIsAtomic(t *testing.T) {
	store := &slowStore{StateStore: memory.NewStore()}
	mgr := session.NewManager(store)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, isNew, err := mgr.LoadOrStart(ctx, "atomic-init", startAt("start"))
			assert.NoError(t, err)
			assert.NotNil(t, state)
			if isNew {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(1), store.saves.Load())

	state, err := mgr.Load(ctx, "atomic-init")
	require.NoError(t, err)
	assert.Equal(t, "start", state.CurrentNodeID)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	a, _, err := mgr.LoadOrStart(ctx, "a", startAt("start"))
	require.NoError(t, err)
	b, _, err := mgr.LoadOrStart(ctx, "b", startAt("start"))
	require.NoError(t, err)

	a.Vars.Name = "Ada"
	require.NoError(t, mgr.Save(ctx, "a", a))

	b, err = mgr.Load(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b.Vars.Name)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestManager_StartFailure(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	boom := errors.New("boom")

	_, _, err := mgr.LoadOrStart(context.Background(), "x", func(context.Context, string) (*domain.State, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = mgr.Load(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type recordingLocker struct {
	mu    sync.Mutex
	locks []string
	ttl   time.Duration
	fail  error
}

func (l *recordingLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	l.mu.Lock()
	l.locks = append(l.locks, key)
	l.ttl = ttl
	l.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, mgr.Save(ctx, "s1", domain.NewState("s1", "start")))
	assert.Equal(t, []string{"s1"}, locker.locks)
	assert.Equal(t, time.Second, locker.ttl)

	locker.fail = errors.New("contended")
	err := mgr.Save(ctx, "s1", domain.NewState("s1", "start"))
	assert.ErrorContains(t, err, "distributed lock")
}
