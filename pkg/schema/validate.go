package schema

import "fmt"

// reservedColumns are added implicitly to every entity and may not be
// declared in a descriptor.
var reservedColumns = map[string]bool{
	"id":            true,
	"time_created":  true,
	"time_modified": true,
	"meta":          true,
}

// Validate checks the descriptor set against the registry. It fails fast:
// every problem is reported at schema-load time as a *Error, never deferred
// to first use. Foreign keys may reference tables declared later in the set;
// only existence is checked here, wiring happens in the relationship graph.
func (s *DescriptorSet) Validate(reg *Registry) error {
	seen := make(map[string]bool, len(s.Tables))
	for ti := range s.Tables {
		t := &s.Tables[ti]
		if t.Name == "" {
			return &Error{Msg: fmt.Sprintf("table at index %d has no name", ti)}
		}
		if seen[t.Name] {
			return &Error{Table: t.Name, Msg: "duplicate table name"}
		}
		seen[t.Name] = true

		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == "" {
				return &Error{Table: t.Name, Msg: "column with empty name"}
			}
			if reservedColumns[c.Name] {
				return &Error{Table: t.Name, Column: c.Name, Msg: "column name is reserved for implicit columns"}
			}
			if cols[c.Name] {
				return &Error{Table: t.Name, Column: c.Name, Msg: "duplicate column name"}
			}
			cols[c.Name] = true

			_, fkTarget, err := reg.Resolve(t.Name, c.Name, c.Type)
			if err != nil {
				return err
			}
			if fkTarget != "" {
				if _, ok := s.Table(fkTarget); !ok {
					return &Error{Table: t.Name, Column: c.Name, Msg: fmt.Sprintf("foreign key references unknown table %q", fkTarget)}
				}
			}
		}
	}

	return s.validateRelationships(reg)
}

// validateRelationships checks that every declared relationship names an
// existing FK column and that every FK column has exactly one declared
// policy. Owning versus reference is an explicit decision per edge.
func (s *DescriptorSet) validateRelationships(reg *Registry) error {
	declared := make(map[[2]string]Policy, len(s.Relationships))
	for _, rel := range s.Relationships {
		child, ok := s.Table(rel.Child)
		if !ok {
			return &Error{Table: rel.Child, Msg: "relationship declared on unknown table"}
		}
		var col *Column
		for i := range child.Columns {
			if child.Columns[i].Name == rel.Column {
				col = &child.Columns[i]
				break
			}
		}
		if col == nil {
			return &Error{Table: rel.Child, Column: rel.Column, Msg: "relationship declared on unknown column"}
		}
		if _, ok := ForeignKeyTarget(col.Type); !ok {
			return &Error{Table: rel.Child, Column: rel.Column, Msg: "relationship declared on non-foreign-key column"}
		}
		if rel.Policy != Owning && rel.Policy != Reference {
			return &Error{Table: rel.Child, Column: rel.Column, Msg: fmt.Sprintf("unknown relationship policy %q", rel.Policy)}
		}
		key := [2]string{rel.Child, rel.Column}
		if _, dup := declared[key]; dup {
			return &Error{Table: rel.Child, Column: rel.Column, Msg: "duplicate relationship declaration"}
		}
		declared[key] = rel.Policy
	}

	for ti := range s.Tables {
		t := &s.Tables[ti]
		for _, c := range t.Columns {
			if _, ok := ForeignKeyTarget(c.Type); !ok {
				continue
			}
			if _, ok := declared[[2]string{t.Name, c.Name}]; !ok {
				return &Error{Table: t.Name, Column: c.Name, Msg: "foreign key has no declared relationship policy"}
			}
		}
	}
	return nil
}
