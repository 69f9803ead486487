package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ephyslab/synapdb/pkg/ndarray"
)

// Dialect selects the physical type vocabulary of a storage engine.
type Dialect string

// Supported storage dialects.
const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// TransformFunc converts between application and physical column values.
// nil always passes through unchanged.
type TransformFunc func(value any) (any, error)

// ColumnType couples a logical type with its physical encoding per dialect
// and its bind (application -> physical) and decode (physical -> application)
// transforms. A nil transform means passthrough.
type ColumnType struct {
	Logical  LogicalType
	physical map[Dialect]string
	Bind     TransformFunc
	Decode   TransformFunc
}

// Physical returns the storage type name for the dialect.
func (c ColumnType) Physical(d Dialect) string {
	return c.physical[d]
}

// BindValue applies the bind transform, passing nil through.
func (c ColumnType) BindValue(v any) (any, error) {
	if v == nil || c.Bind == nil {
		return v, nil
	}
	return c.Bind(v)
}

// DecodeValue applies the decode transform, passing nil through.
func (c ColumnType) DecodeValue(v any) (any, error) {
	if v == nil || c.Decode == nil {
		return v, nil
	}
	return c.Decode(v)
}

// Registry maps logical type names to column types. It is populated once by
// NewRegistry and treated as immutable afterwards.
type Registry struct {
	types map[LogicalType]ColumnType
}

// NewRegistry returns a registry holding the closed set of logical types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[LogicalType]ColumnType)}
	for _, ct := range builtinTypes() {
		r.types[ct.Logical] = ct
	}
	return r
}

// Lookup returns the column type for a logical type name.
func (r *Registry) Lookup(t LogicalType) (ColumnType, bool) {
	ct, ok := r.types[t]
	return ct, ok
}

// Resolve maps a declared column type string to a ColumnType. Foreign-key
// references "<table>.id" resolve to an integer column with fkTarget set.
// Any other unknown string is a schema error, reported at load time.
func (r *Registry) Resolve(table, column, typ string) (ct ColumnType, fkTarget string, err error) {
	if ct, ok := r.types[LogicalType(typ)]; ok {
		return ct, "", nil
	}
	if target, ok := ForeignKeyTarget(typ); ok {
		ct := r.types[Int]
		return ct, target, nil
	}
	return ColumnType{}, "", &Error{Table: table, Column: column, Msg: fmt.Sprintf("unrecognized column type %q", typ)}
}

func builtinTypes() []ColumnType {
	return []ColumnType{
		{
			Logical:  Int,
			physical: map[Dialect]string{DialectPostgres: "BIGINT", DialectSQLite: "INTEGER"},
			Decode:   decodeInt,
		},
		{
			Logical:  Float,
			physical: map[Dialect]string{DialectPostgres: "DOUBLE PRECISION", DialectSQLite: "REAL"},
			Bind:     bindFloat,
			Decode:   decodeFloat,
		},
		{
			Logical:  Bool,
			physical: map[Dialect]string{DialectPostgres: "BOOLEAN", DialectSQLite: "BOOLEAN"},
			Decode:   decodeBool,
		},
		{
			Logical:  Str,
			physical: map[Dialect]string{DialectPostgres: "TEXT", DialectSQLite: "TEXT"},
			Decode:   decodeString,
		},
		{
			Logical:  Date,
			physical: map[Dialect]string{DialectPostgres: "DATE", DialectSQLite: "DATE"},
			Decode:   decodeTime,
		},
		{
			Logical:  DateTime,
			physical: map[Dialect]string{DialectPostgres: "TIMESTAMPTZ", DialectSQLite: "DATETIME"},
			Decode:   decodeTime,
		},
		{
			Logical:  NDArray,
			physical: map[Dialect]string{DialectPostgres: "BYTEA", DialectSQLite: "BLOB"},
			Bind:     bindArray,
			Decode:   decodeArray,
		},
		{
			Logical:  Object,
			physical: map[Dialect]string{DialectPostgres: "JSONB", DialectSQLite: "TEXT"},
			Bind:     bindObject,
			Decode:   decodeObject,
		},
	}
}

// bindFloat coerces numeric-like inputs to float64. Upstream analysis code
// hands us narrow or boxed numeric types that drivers cannot bind directly.
func bindFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	}
	return nil, fmt.Errorf("cannot coerce %T to float", v)
}

func decodeFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return nil, fmt.Errorf("unexpected float representation %T", v)
}

func decodeInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	}
	return nil, fmt.Errorf("unexpected integer representation %T", v)
}

func decodeBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	}
	return nil, fmt.Errorf("unexpected bool representation %T", v)
}

func decodeString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	}
	return nil, fmt.Errorf("unexpected string representation %T", v)
}

// timeFormats covers the textual representations drivers hand back for
// DATE/DATETIME columns.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func decodeTime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return parseTime(x)
	case []byte:
		return parseTime(string(x))
	}
	return nil, fmt.Errorf("unexpected time representation %T", v)
}

func parseTime(s string) (any, error) {
	for _, f := range timeFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("cannot parse time %q", s)
}

// bindArray serializes an ndarray into the self-describing blob format.
func bindArray(v any) (any, error) {
	a, ok := v.(*ndarray.Array)
	if !ok {
		return nil, fmt.Errorf("array column requires *ndarray.Array, got %T", v)
	}
	return ndarray.Marshal(a)
}

func decodeArray(v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return ndarray.Unmarshal(x)
	case string:
		return ndarray.Unmarshal([]byte(x))
	}
	return nil, fmt.Errorf("unexpected array representation %T", v)
}

// bindObject validates the value is a representable document and encodes it
// as JSON for the engine's semi-structured column type.
func bindObject(v any) (any, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("object column value is not JSON-representable: %w", err)
	}
	return string(buf), nil
}

func decodeObject(v any) (any, error) {
	var raw []byte
	switch x := v.(type) {
	case []byte:
		raw = x
	case string:
		raw = []byte(x)
	default:
		return nil, fmt.Errorf("unexpected object representation %T", v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("malformed object document: %w", err)
	}
	return out, nil
}
