package pylit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CastList(t *testing.T) {
	src := `[{'cast_id': 14, 'character': 'Woody (voice)', 'gender': 2, 'name': 'Tom Hanks', 'profile_path': None},` +
		` {'cast_id': 2, 'character': "Mr. O'Brien", 'name': 'Tim Allen', 'order': 1.5, 'adult': False}]`

	v, err := Parse(src)
	require.NoError(t, err)

	list, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, list, 2)

	first := list[0].(map[string]any)
	assert.Equal(t, "Tom Hanks", first["name"])
	assert.Equal(t, int64(14), first["cast_id"])
	assert.Nil(t, first["profile_path"])

	second := list[1].(map[string]any)
	assert.Equal(t, "Mr. O'Brien", second["character"])
	assert.Equal(t, 1.5, second["order"])
	assert.Equal(t, false, second["adult"])
}

func TestParse_Escapes(t *testing.T) {
	v, err := Parse(`'it\'s a \x41é \\ test'`)
	require.NoError(t, err)
	assert.Equal(t, `it's a Aé \ test`, v)
}

func TestParse_Tuple(t *testing.T) {
	v, err := Parse(`(1, -2, 'x',)`)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(-2), "x"}, v)
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{"", "[1, 2", "{'a' 1}", "'open", "[1] extra", "undefined"} {
		_, err := Parse(src)
		assert.ErrorIs(t, err, ErrSyntax, "input %q", src)
	}
}

func TestLooseJSON(t *testing.T) {
	var out []map[string]any
	require.NoError(t, LooseJSON(`[{'id': 28, 'name': 'Action'}]`, &out))
	assert.Equal(t, "Action", out[0]["name"])

	err := LooseJSON(`[{'id': 9, 'name': 'batman's return'}]`, &out)
	assert.Error(t, err, "apostrophes break the quote swap")
}

func TestNames(t *testing.T) {
	v, err := Parse(`[{'name': 'Drama'}, {'id': 3}, {'name': 'Crime'}]`)
	require.NoError(t, err)

	names, err := Names(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drama", "Crime"}, names)

	_, err = Names("not a list")
	assert.ErrorIs(t, err, ErrSyntax)
}
