package jsonx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestOneOrMany_SingleObject(t *testing.T) {
	var o OneOrMany[widget]
	require.NoError(t, json.Unmarshal([]byte(`{"name":"a","count":2}`), &o))

	first, ok := o.First()
	require.True(t, ok)
	assert.Equal(t, "a", first.Name)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, 1, o.Len())
}

func TestOneOrMany_OneElementCollection(t *testing.T) {
	var o OneOrMany[widget]
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"b","count":1}]`), &o))

	first, ok := o.First()
	require.True(t, ok)
	assert.Equal(t, "b", first.Name)
}

func TestOneOrMany_ManyElements(t *testing.T) {
	var o OneOrMany[widget]
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"a"},{"name":"b"}]`), &o))

	assert.Equal(t, 2, o.Len())
	first, ok := o.First()
	require.True(t, ok)
	assert.Equal(t, "a", first.Name)
}

func TestOneOrMany_Null(t *testing.T) {
	var o OneOrMany[widget]
	require.NoError(t, json.Unmarshal([]byte(`null`), &o))

	_, ok := o.First()
	assert.False(t, ok)
	assert.Zero(t, o.Len())
}

func TestOneOrMany_CollectionOfNull(t *testing.T) {
	// LEFT JOIN + json_agg yields [null] when no related row matched.
	var o OneOrMany[widget]
	require.NoError(t, json.Unmarshal([]byte(`[null]`), &o))

	_, ok := o.First()
	assert.False(t, ok)
}

func TestOneOrMany_EmptyCollection(t *testing.T) {
	var o OneOrMany[widget]
	require.NoError(t, json.Unmarshal([]byte(`[]`), &o))

	_, ok := o.First()
	assert.False(t, ok)
}

func TestOneOrMany_InvalidJSON(t *testing.T) {
	var o OneOrMany[widget]
	assert.Error(t, json.Unmarshal([]byte(`{"name":`), &o))
}

func TestOneOrMany_ReuseResetsState(t *testing.T) {
	var o OneOrMany[widget]
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"a"}]`), &o))
	require.NoError(t, json.Unmarshal([]byte(`null`), &o))

	assert.Zero(t, o.Len())
}
