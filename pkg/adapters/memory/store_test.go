package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/teevee/pkg/adapters/memory"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_SaveCopies(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := domain.NewState("s1", "start")
	state.Vars.Genres[1] = []string{"Drama"}
	require.NoError(t, store.Save(ctx, "s1", state))

	state.Vars.Genres[1][0] = "mutated"
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Drama"}, loaded.Vars.Genres[1])
}
