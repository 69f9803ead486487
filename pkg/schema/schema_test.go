package schema

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ephyslab/synapdb/pkg/ndarray"
)

func TestForeignKeyTarget(t *testing.T) {
	tests := []struct {
		typ    string
		target string
		ok     bool
	}{
		{"slice.id", "slice", true},
		{"test_pulse.id", "test_pulse", true},
		{"str", "", false},
		{".id", "", false},
		{"a.b.id", "", false},
		{"slice.name", "", false},
	}
	for _, tt := range tests {
		target, ok := ForeignKeyTarget(tt.typ)
		assert.Equal(t, tt.ok, ok, tt.typ)
		assert.Equal(t, tt.target, target, tt.typ)
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()

	ct, fk, err := reg.Resolve("experiment", "target_temperature", "float")
	require.NoError(t, err)
	assert.Empty(t, fk)
	assert.Equal(t, Float, ct.Logical)
	assert.Equal(t, "DOUBLE PRECISION", ct.Physical(DialectPostgres))
	assert.Equal(t, "REAL", ct.Physical(DialectSQLite))

	ct, fk, err = reg.Resolve("experiment", "slice_id", "slice.id")
	require.NoError(t, err)
	assert.Equal(t, "slice", fk)
	assert.Equal(t, "BIGINT", ct.Physical(DialectPostgres))

	_, _, err = reg.Resolve("experiment", "bogus", "decimal")
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "experiment", serr.Table)
	assert.Equal(t, "bogus", serr.Column)
}

func TestFloatBindCoercion(t *testing.T) {
	reg := NewRegistry()
	ct, _ := reg.Lookup(Float)

	tests := []struct {
		in   any
		want float64
	}{
		{float64(1.5), 1.5},
		{float32(2.5), 2.5},
		{int(3), 3},
		{int32(4), 4},
		{int64(5), 5},
		{uint16(6), 6},
		{json.Number("7.25"), 7.25},
	}
	for _, tt := range tests {
		got, err := ct.BindValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	// nil passes through unchanged.
	got, err := ct.BindValue(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ct.BindValue("not a number")
	assert.Error(t, err)
}

func TestArrayBindRoundTrip(t *testing.T) {
	reg := NewRegistry()
	ct, _ := reg.Lookup(NDArray)

	a, err := ndarray.NewFloat64([]int{2, 3}, []float64{1, 2, math.NaN(), 4, 5, 6})
	require.NoError(t, err)

	bound, err := ct.BindValue(a)
	require.NoError(t, err)
	blob, ok := bound.([]byte)
	require.True(t, ok)

	decoded, err := ct.DecodeValue(blob)
	require.NoError(t, err)
	b, ok := decoded.(*ndarray.Array)
	require.True(t, ok)
	assert.True(t, ndarray.Equal(a, b))

	_, err = ct.DecodeValue([]byte("garbage"))
	assert.Error(t, err)
}

func TestObjectBindRoundTrip(t *testing.T) {
	reg := NewRegistry()
	ct, _ := reg.Lookup(Object)

	doc := map[string]any{
		"solutions": []any{"aCSF", "internal"},
		"perfusion": map[string]any{"rate_ml_min": 2.0},
	}
	bound, err := ct.BindValue(doc)
	require.NoError(t, err)

	decoded, err := ct.DecodeValue(bound)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)

	// Channels are not JSON-representable; bind must fail structurally.
	_, err = ct.BindValue(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestDateTimeDecode(t *testing.T) {
	reg := NewRegistry()
	ct, _ := reg.Lookup(DateTime)

	ts := time.Date(2017, 3, 9, 14, 30, 0, 0, time.UTC)

	got, err := ct.DecodeValue(ts)
	require.NoError(t, err)
	assert.Equal(t, ts, got)

	got, err = ct.DecodeValue("2017-03-09 14:30:00")
	require.NoError(t, err)
	assert.Equal(t, ts, got.(time.Time).UTC())

	_, err = ct.DecodeValue("not a time")
	assert.Error(t, err)
}

func TestSynphysValidates(t *testing.T) {
	set := Synphys()
	require.NoError(t, set.Validate(NewRegistry()))

	assert.Len(t, set.Tables, 14)

	// Every FK column must have a declared relationship policy; count the
	// FK columns and compare with the relationship list.
	fks := 0
	for _, tbl := range set.Tables {
		for _, c := range tbl.Columns {
			if _, ok := ForeignKeyTarget(c.Type); ok {
				fks++
			}
		}
	}
	assert.Equal(t, fks, len(set.Relationships))
	assert.Equal(t, 19, fks)
}

func TestValidateFailures(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		set  DescriptorSet
		want string
	}{
		{
			name: "missing table name",
			set:  DescriptorSet{Tables: []Table{{Columns: []Column{{Name: "a", Type: "int"}}}}},
			want: "has no name",
		},
		{
			name: "duplicate table",
			set:  DescriptorSet{Tables: []Table{{Name: "slice"}, {Name: "slice"}}},
			want: "duplicate table",
		},
		{
			name: "duplicate column",
			set: DescriptorSet{Tables: []Table{{Name: "slice", Columns: []Column{
				{Name: "species", Type: "str"},
				{Name: "species", Type: "str"},
			}}}},
			want: "duplicate column",
		},
		{
			name: "reserved column",
			set: DescriptorSet{Tables: []Table{{Name: "slice", Columns: []Column{
				{Name: "id", Type: "int"},
			}}}},
			want: "reserved",
		},
		{
			name: "unknown type",
			set: DescriptorSet{Tables: []Table{{Name: "slice", Columns: []Column{
				{Name: "age", Type: "decimal"},
			}}}},
			want: "unrecognized column type",
		},
		{
			name: "dangling foreign key",
			set: DescriptorSet{Tables: []Table{{Name: "experiment", Columns: []Column{
				{Name: "slice_id", Type: "slice.id"},
			}}}},
			want: "unknown table",
		},
		{
			name: "foreign key without policy",
			set: DescriptorSet{Tables: []Table{
				{Name: "slice"},
				{Name: "experiment", Columns: []Column{{Name: "slice_id", Type: "slice.id"}}},
			}},
			want: "no declared relationship policy",
		},
		{
			name: "relationship on non-fk column",
			set: DescriptorSet{
				Tables: []Table{{Name: "slice", Columns: []Column{{Name: "species", Type: "str"}}}},
				Relationships: []Relationship{
					{Child: "slice", Column: "species", Policy: Owning},
				},
			},
			want: "non-foreign-key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate(reg)
			require.Error(t, err)
			var serr *Error
			require.ErrorAs(t, err, &serr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestForwardReferenceIsLegal(t *testing.T) {
	// patch_clamp_recording references test_pulse, which is declared later
	// in the set; validation must resolve it anyway.
	set := Synphys()
	pcr, ok := set.Table("patch_clamp_recording")
	require.True(t, ok)
	var found bool
	for _, c := range pcr.Columns {
		if c.Name == "nearest_test_pulse_id" {
			target, isFK := ForeignKeyTarget(c.Type)
			require.True(t, isFK)
			assert.Equal(t, "test_pulse", target)
			found = true
		}
	}
	require.True(t, found)
	require.NoError(t, set.Validate(NewRegistry()))
}
