// Package entity provides the runtime representation of generated entities.
// A Record is one row-equivalent instance of a table type: the implicit
// identity and audit columns plus the declared column values, carried
// generically rather than as one bespoke struct per table.
package entity

import (
	"fmt"
	"time"

	"github.com/ephyslab/synapdb/internal/model"
	"github.com/ephyslab/synapdb/pkg/ndarray"
)

// Record is one entity instance. The zero ID marks a record that has not
// been inserted yet; the storage engine assigns the identity and the
// time_created timestamp at insertion.
type Record struct {
	Entity *model.Entity

	ID           int64
	TimeCreated  time.Time
	TimeModified time.Time
	Meta         map[string]any

	values map[string]any
}

// New creates an empty record of the given entity type.
func New(e *model.Entity) *Record {
	return &Record{Entity: e, values: make(map[string]any)}
}

// Set assigns a declared column value. Implicit columns cannot be set this
// way; the engine owns id and the audit timestamps, and Meta is a plain
// struct field.
func (r *Record) Set(column string, v any) error {
	f, ok := r.Entity.Field(column)
	if !ok {
		return fmt.Errorf("entity %s has no column %q", r.Entity.Name, column)
	}
	if f.Implicit {
		return fmt.Errorf("entity %s column %q is implicit and cannot be set", r.Entity.Name, column)
	}
	r.values[column] = v
	return nil
}

// Get returns a declared column value. ok is false when the column was
// never set (or came back null from storage).
func (r *Record) Get(column string) (any, bool) {
	v, ok := r.values[column]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Values returns the set declared columns in entity field order, as
// (column, value) pairs ready for binding.
func (r *Record) Values() ([]string, []any) {
	var cols []string
	var vals []any
	for _, f := range r.Entity.Declared() {
		if v, ok := r.values[f.Name]; ok {
			cols = append(cols, f.Name)
			vals = append(vals, v)
		}
	}
	return cols, vals
}

// LoadValue assigns a declared column value as read back from storage,
// without the implicit-column guard. Intended for the session layer; nil
// clears the column so a nulled FK dereferences as absent.
func (r *Record) LoadValue(column string, v any) {
	if v == nil {
		delete(r.values, column)
		return
	}
	r.values[column] = v
}

// Int returns an integer column value (FK columns included).
func (r *Record) Int(column string) (int64, bool) {
	v, ok := r.Get(column)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// Float returns a float column value.
func (r *Record) Float(column string) (float64, bool) {
	v, ok := r.Get(column)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// String returns a string column value.
func (r *Record) String(column string) (string, bool) {
	v, ok := r.Get(column)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns a bool column value.
func (r *Record) Bool(column string) (bool, bool) {
	v, ok := r.Get(column)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Time returns a date or datetime column value.
func (r *Record) Time(column string) (time.Time, bool) {
	v, ok := r.Get(column)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Array returns an array column value.
func (r *Record) Array(column string) (*ndarray.Array, bool) {
	v, ok := r.Get(column)
	if !ok {
		return nil, false
	}
	a, ok := v.(*ndarray.Array)
	return a, ok
}

// Object returns an object column value.
func (r *Record) Object(column string) (any, bool) {
	return r.Get(column)
}
