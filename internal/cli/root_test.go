package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetraflow/go-tetration"
)

func TestParseFilters(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		filter, err := parseFilters(nil)
		require.NoError(t, err)
		assert.Nil(t, filter)
	})

	t.Run("single clause passes through", func(t *testing.T) {
		filter, err := parseFilters([]string{"os:eq:linux"})
		require.NoError(t, err)

		leaf, ok := filter.(*tetration.Leaf)
		require.True(t, ok)
		assert.Equal(t, tetration.OpEq, leaf.Type)
		assert.Equal(t, "os", leaf.Field)
		assert.Equal(t, "linux", leaf.Value)
	})

	t.Run("multiple clauses combine with and", func(t *testing.T) {
		filter, err := parseFilters([]string{"os:eq:linux", "host_name:contains:web"})
		require.NoError(t, err)

		comp, ok := filter.(*tetration.Composite)
		require.True(t, ok)
		assert.Equal(t, "and", comp.Type)
		assert.Len(t, comp.Filters, 2)
	})

	t.Run("numeric operator", func(t *testing.T) {
		filter, err := parseFilters([]string{"vrf_id:gt:5"})
		require.NoError(t, err)

		leaf, ok := filter.(*tetration.Leaf)
		require.True(t, ok)
		assert.Equal(t, float64(5), leaf.Value)
	})

	t.Run("in splits on comma", func(t *testing.T) {
		filter, err := parseFilters([]string{"os:in:linux,windows"})
		require.NoError(t, err)

		leaf, ok := filter.(*tetration.Leaf)
		require.True(t, ok)
		assert.Equal(t, []any{"linux", "windows"}, leaf.Value)
	})

	t.Run("malformed clause", func(t *testing.T) {
		_, err := parseFilters([]string{"os=linux"})
		require.Error(t, err)
	})

	t.Run("unknown operator", func(t *testing.T) {
		_, err := parseFilters([]string{"os:like:linux"})
		require.Error(t, err)
	})

	t.Run("non-numeric value for comparison", func(t *testing.T) {
		_, err := parseFilters([]string{"vrf_id:gt:many"})
		require.Error(t, err)
	})
}

func TestCommandFlagIsolation(t *testing.T) {
	flows := newFlowsCmd()
	topn := newTopNCmd()

	require.NoError(t, flows.Flags().Set("scope", "flows-scope"))
	require.NoError(t, topn.Flags().Set("scope", "topn-scope"))

	flowsVal, err := flows.Flags().GetString("scope")
	require.NoError(t, err)
	topnVal, err := topn.Flags().GetString("scope")
	require.NoError(t, err)

	assert.Equal(t, "flows-scope", flowsVal)
	assert.Equal(t, "topn-scope", topnVal)
}
