package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "getmovie")
		state.Vars.Name = "Ada"
		state.Vars.Picked = true
		state.Vars.PickID = 42
		state.Vars.Genres[42] = []string{"Science Fiction"}
		state.Vars.Characters = []domain.CastCredit{{Actor: "Keanu Reeves", Character: "Neo"}}
		state.TurnCount = 3

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, "Ada", loaded.Vars.Name)
		assert.Equal(t, 42, loaded.Vars.PickID)
		assert.Equal(t, []string{"Science Fiction"}, loaded.Vars.Genres[42])
		assert.Equal(t, state.Vars.Characters, loaded.Vars.Characters)
		assert.Equal(t, 3, loaded.TurnCount)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Vars.Name = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", again.Vars.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "start"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "start"))
		_ = store.Save(ctx, id2, domain.NewState(id2, "start"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunMovieCatalogContract verifies a MovieCatalog loaded with the fixture
// below (see CatalogFixture).
func RunMovieCatalogContract(t *testing.T, catalog MovieCatalog) {
	ctx := context.Background()

	t.Run("Exact Single Token", func(t *testing.T) {
		rows, err := catalog.FindTitles(ctx, domain.NewTitleQuery("inception"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Inception", rows[0].Title)
		assert.Equal(t, 1, rows[0].ID)
		assert.Contains(t, rows[0].Genres, "Science Fiction")
	})

	t.Run("Single Token Does Not Substring Match", func(t *testing.T) {
		rows, err := catalog.FindTitles(ctx, domain.NewTitleQuery("dark"))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Multi Token In Dataset Order", func(t *testing.T) {
		rows, err := catalog.FindTitles(ctx, domain.NewTitleQuery("dark knight"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "The Dark Knight", rows[0].Title)
		assert.Equal(t, "The Dark Knight Rises", rows[1].Title)
	})

	t.Run("Blank Query Selects Every Row", func(t *testing.T) {
		rows, err := catalog.FindTitles(ctx, domain.NewTitleQuery("   "))
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "Toy Story", rows[0].Title)
	})

	t.Run("Joined Rows", func(t *testing.T) {
		kw, err := catalog.Keywords(ctx, 1)
		require.NoError(t, err)
		assert.Contains(t, kw, "dream")

		cast, err := catalog.Cast(ctx, 1)
		require.NoError(t, err)
		assert.Contains(t, cast, "Leonardo DiCaprio")

		_, err = catalog.Cast(ctx, 9999)
		assert.ErrorIs(t, err, ErrRowNotFound)
	})
}

// CatalogFixture is the dataset RunMovieCatalogContract expects, as CSV text
// for the metadata, keywords and credits tables.
var CatalogFixture = struct {
	Metadata string
	Keywords string
	Credits  string
}{
	Metadata: `id,title,genres
862,Toy Story,"[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]"
27205,Inception,"[{'id': 28, 'name': 'Action'}, {'id': 878, 'name': 'Science Fiction'}]"
155,The Dark Knight,"[{'id': 18, 'name': 'Drama'}, {'id': 80, 'name': 'Crime'}]"
49026,The Dark Knight Rises,"[{'id': 28, 'name': 'Action'}]"
`,
	Keywords: `id,keywords
862,"[{'id': 931, 'name': 'jealousy'}, {'id': 4290, 'name': 'toy'}]"
27205,"[{'id': 1014, 'name': 'dream'}, {'id': 2, 'name': 'subconscious'}]"
155,"[{'id': 849, 'name': 'dc comics'}, {'id': 853, 'name': 'crime fighter'}]"
49026,"[{'id': 849, 'name': 'dc comics'}, {'id': 9, 'name': 'batman's return'}]"
`,
	Credits: `cast,id
"[{'cast_id': 14, 'character': 'Woody (voice)', 'name': 'Tom Hanks', 'order': 0}, {'cast_id': 15, 'character': 'Buzz Lightyear (voice)', 'name': 'Tim Allen', 'order': 1}]",862
"[{'cast_id': 1, 'character': 'Dom Cobb', 'name': 'Leonardo DiCaprio', 'order': 0}, {'cast_id': 2, 'character': 'Arthur', 'name': 'Joseph Gordon-Levitt', 'order': 1}, {'cast_id': 3, 'character': 'Ariadne', 'name': 'Elliot Page', 'order': 2}]",27205
"[{'cast_id': 1, 'character': 'Bruce Wayne', 'name': 'Christian Bale', 'order': 0}, {'cast_id': 2, 'character': 'Joker', 'name': 'Heath Ledger', 'order': 1}]",155
"[{'cast_id': 1, 'character': 'Bruce Wayne', 'name': 'Christian Bale', 'order': 0}, {'cast_id': 2, 'character': ""Selina Kyle"", 'name': 'Anne Hathaway', 'order': 1}]",49026
`,
}

// RunGraphLoaderContract verifies that loader serves exactly want, keyed by
// node id.
func RunGraphLoaderContract(t *testing.T, loader GraphLoader, want map[string][]byte) {
	t.Run("GetNode", func(t *testing.T) {
		for id, body := range want {
			got, err := loader.GetNode(id)
			require.NoError(t, err, "node %s", id)
			assert.Equal(t, string(body), string(got), "node %s", id)
		}
	})

	t.Run("GetNode Missing", func(t *testing.T) {
		_, err := loader.GetNode("non-existent-node")
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("ListNodes", func(t *testing.T) {
		ids, err := loader.ListNodes()
		require.NoError(t, err)
		expected := make([]string, 0, len(want))
		for id := range want {
			expected = append(expected, id)
		}
		assert.ElementsMatch(t, expected, ids)
	})
}
