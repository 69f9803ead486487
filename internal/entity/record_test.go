package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ephyslab/synapdb/internal/model"
	"github.com/ephyslab/synapdb/pkg/schema"
)

func sliceEntity(t *testing.T) *model.Entity {
	t.Helper()
	set := &schema.DescriptorSet{
		Tables: []schema.Table{
			{Name: "slice", Columns: []schema.Column{
				{Name: "species", Type: "str"},
				{Name: "age", Type: "int"},
				{Name: "quality", Type: "int"},
			}},
		},
	}
	m, err := model.Generate(set, schema.NewRegistry())
	require.NoError(t, err)
	e, ok := m.Entity("slice")
	require.True(t, ok)
	return e
}

func TestSetRejectsUnknownAndImplicitColumns(t *testing.T) {
	r := New(sliceEntity(t))

	require.NoError(t, r.Set("species", "mouse"))

	err := r.Set("no_such_column", 1)
	require.Error(t, err)

	for _, col := range []string{"id", "time_created", "time_modified", "meta"} {
		err := r.Set(col, 1)
		assert.Errorf(t, err, "implicit column %q must not be settable", col)
	}
}

func TestValuesFollowDeclarationOrder(t *testing.T) {
	r := New(sliceEntity(t))
	// Set out of declaration order.
	require.NoError(t, r.Set("quality", 3))
	require.NoError(t, r.Set("species", "human"))

	cols, vals := r.Values()
	assert.Equal(t, []string{"species", "quality"}, cols)
	assert.Equal(t, []any{"human", 3}, vals)
}

func TestGetDistinguishesUnsetFromZero(t *testing.T) {
	r := New(sliceEntity(t))
	_, ok := r.Get("age")
	assert.False(t, ok)

	require.NoError(t, r.Set("age", int64(0)))
	v, ok := r.Get("age")
	require.True(t, ok)
	assert.Equal(t, int64(0), v)

	age, ok := r.Int("age")
	require.True(t, ok)
	assert.Equal(t, int64(0), age)
}

func TestLoadValueNilClearsColumn(t *testing.T) {
	r := New(sliceEntity(t))
	r.LoadValue("age", int64(7))
	_, ok := r.Int("age")
	require.True(t, ok)

	r.LoadValue("age", nil)
	_, ok = r.Get("age")
	assert.False(t, ok)
}
