package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_Scan(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan([]byte(`{"description":"order #1","qty":2}`)))
	assert.Equal(t, "order #1", m.GetString("description"))
	assert.Empty(t, m.GetString("qty"))

	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)

	assert.ErrorIs(t, m.Scan(42), ErrUnsupportedScanType)
	assert.Error(t, m.Scan("{not json"))
}

func TestJSONMap_Value(t *testing.T) {
	v, err := JSONMap(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	v, err = JSONMap{"a": "b"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"b"}`, string(v.([]byte)))
}
