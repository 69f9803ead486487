// Package schema defines the declarative table descriptors the entity model
// is generated from, and the column type registry that maps logical column
// kinds to physical storage encodings and bind/decode transforms.
package schema

import (
	"fmt"
	"strings"
)

// LogicalType is one of the closed set of declarable column kinds.
// Foreign keys are declared as "<table>.id" rather than a LogicalType.
type LogicalType string

// The supported logical column types.
const (
	Int      LogicalType = "int"
	Float    LogicalType = "float"
	Bool     LogicalType = "bool"
	Str      LogicalType = "str"
	Date     LogicalType = "date"
	DateTime LogicalType = "datetime"
	NDArray  LogicalType = "array"
	Object   LogicalType = "object"
)

// Constraints holds column-level constraints carried through to the storage
// engine. Uniqueness is enforced by the engine at write time, not re-checked
// in application code.
type Constraints struct {
	Unique bool
}

// Column describes one declared column: name, logical type (or an FK
// reference "<table>.id"), optional comment, optional constraints.
type Column struct {
	Name        string
	Type        string
	Comment     string
	Constraints Constraints
}

// Table describes one table: name, optional comment, ordered columns.
// The implicit columns (id, time_created, time_modified, meta) are added by
// the model generator and must not be declared here.
type Table struct {
	Name    string
	Comment string
	Columns []Column
}

// Policy classifies a relationship edge.
type Policy string

const (
	// Owning edges cascade: deleting the parent deletes the child subtree.
	Owning Policy = "owning"
	// Reference edges are weak: deleting the referenced entity nulls the
	// pointer instead of deleting the referencing entity.
	Reference Policy = "reference"
)

// Relationship declares the ownership policy and navigation names for the
// edge created by one foreign-key column. Every FK column in the descriptor
// set should have exactly one Relationship entry; the classification is an
// explicit configuration decision, never inferred.
type Relationship struct {
	// Child is the table holding the foreign-key column.
	Child string
	// Column is the FK column name on the child table.
	Column string
	// Policy is Owning or Reference.
	Policy Policy
	// Collection names the parent-to-children navigation property
	// (e.g. "experiments" on slice). Empty for edges not navigated from
	// the parent side.
	Collection string
	// Ref names the child-to-parent navigation property
	// (e.g. "slice" on experiment).
	Ref string
}

// DescriptorSet is the ordered, data-only specification of the whole
// database. It is immutable after initialization and safe to share.
type DescriptorSet struct {
	Tables        []Table
	Relationships []Relationship
}

// Table returns the named table descriptor.
func (s *DescriptorSet) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// ForeignKeyTarget parses an FK type string "<table>.id" and returns the
// referenced table name. ok is false when the string is not an FK reference.
func ForeignKeyTarget(typ string) (table string, ok bool) {
	if !strings.HasSuffix(typ, ".id") {
		return "", false
	}
	table = strings.TrimSuffix(typ, ".id")
	if table == "" || strings.Contains(table, ".") {
		return "", false
	}
	return table, true
}

// Error reports a malformed or inconsistent schema descriptor. Schema errors
// are fatal at startup; no partial model is ever produced from a descriptor
// set that fails validation.
type Error struct {
	Table  string
	Column string
	Msg    string
}

func (e *Error) Error() string {
	switch {
	case e.Table != "" && e.Column != "":
		return fmt.Sprintf("schema: table %q column %q: %s", e.Table, e.Column, e.Msg)
	case e.Table != "":
		return fmt.Sprintf("schema: table %q: %s", e.Table, e.Msg)
	}
	return "schema: " + e.Msg
}
