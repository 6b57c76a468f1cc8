package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type nopStore struct{}

func (nopStore) Save(context.Context, string, *domain.State) error { return nil }
func (nopStore) Load(context.Context, string) (*domain.State, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(context.Context, string) error   { return nil }
func (nopStore) List(context.Context) ([]string, error) { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.NewState(sid, "start"))
		_ = mgr.Delete(ctx, sid)
	}

	assert.Zero(t, mgr.local.Len(), "locks must be released once unused")
}

func TestKeyedMutex_SerializesPerID(t *testing.T) {
	k := newKeyedMutex()

	unlockA := k.Lock("a")
	// A different id is not blocked by "a".
	unlockB := k.Lock("b")
	assert.Equal(t, 2, k.Len())
	unlockB()

	acquired := make(chan struct{})
	go func() {
		unlock := k.Lock("a")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder entered while the first still held the lock")
	case <-time.After(50 * time.Millisecond):
	}
	unlockA()
	<-acquired
	assert.Eventually(t, func() bool { return k.Len() == 0 }, time.Second, 5*time.Millisecond)
}
