package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRegistry_AddAndGet(t *testing.T) {
	reg := NewRegistry(WithLogger(zaptest.NewLogger(t)))

	records := []Record{{"x": 1.0}, {"x": 2.0}}
	ds := reg.AddDataset("points", records)
	require.NotNil(t, ds)
	assert.Equal(t, "points", ds.ID)
	assert.Equal(t, 2, ds.Len())

	got, ok := reg.GetDataset("points")
	require.True(t, ok)
	assert.Same(t, ds, got)

	_, ok = reg.GetDataset("missing")
	assert.False(t, ok)
}

func TestRegistry_NilRecordsBecomeEmpty(t *testing.T) {
	reg := NewRegistry()
	ds := reg.AddDataset("empty", nil)
	require.NotNil(t, ds.Records)
	assert.Zero(t, ds.Len())
}

func TestRegistry_Replace(t *testing.T) {
	reg := NewRegistry()
	reg.AddDataset("d", []Record{{"a": 1}})
	reg.AddDataset("d", []Record{{"a": 1}, {"a": 2}})

	ds, ok := reg.GetDataset("d")
	require.True(t, ok)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry()
	reg.AddDataset("b", nil)
	reg.AddDataset("a", nil)

	_, err := reg.Lookup("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))

	ds, err := reg.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, "a", ds.ID)

	assert.Equal(t, []string{"a", "b"}, reg.IDs())
}
