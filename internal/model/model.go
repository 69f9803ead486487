// Package model generates the entity model from a schema descriptor set.
// Generation is phase one of the two-phase build: it resolves every column
// through the type registry and synthesizes one entity definition per table;
// relationship wiring happens afterwards in the graph package so that
// foreign keys may reference tables declared later in the set.
package model

import (
	"github.com/ephyslab/synapdb/pkg/schema"
)

// Field is one resolved column of an entity, implicit or declared.
type Field struct {
	Name     string
	Type     schema.ColumnType
	Comment  string
	Unique   bool
	FKTarget string // referenced table name, empty for non-FK fields
	Implicit bool
}

// IsForeignKey reports whether the field was declared as "<table>.id".
func (f *Field) IsForeignKey() bool {
	return f.FKTarget != ""
}

// Entity is the generated definition for one table. Field order is the
// implicit columns followed by the declared columns in descriptor order, so
// the same descriptor set always yields a structurally identical entity.
type Entity struct {
	Name    string
	Comment string
	Fields  []Field

	index map[string]int
}

// Field returns the named field definition.
func (e *Entity) Field(name string) (*Field, bool) {
	i, ok := e.index[name]
	if !ok {
		return nil, false
	}
	return &e.Fields[i], true
}

// Declared returns the non-implicit fields in descriptor order.
func (e *Entity) Declared() []Field {
	out := make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		if !f.Implicit {
			out = append(out, f)
		}
	}
	return out
}

// Model is the full generated entity model. It is immutable after Generate
// and safe for concurrent use.
type Model struct {
	Set      *schema.DescriptorSet
	Registry *schema.Registry
	Entities []*Entity

	byName map[string]*Entity
}

// Entity returns the generated entity for a table name.
func (m *Model) Entity(name string) (*Entity, bool) {
	e, ok := m.byName[name]
	return e, ok
}

// Generate validates the descriptor set and produces the entity model.
// Any malformed descriptor aborts generation with a *schema.Error; no
// partial model is returned.
func Generate(set *schema.DescriptorSet, reg *schema.Registry) (*Model, error) {
	if err := set.Validate(reg); err != nil {
		return nil, err
	}

	m := &Model{
		Set:      set,
		Registry: reg,
		byName:   make(map[string]*Entity, len(set.Tables)),
	}
	for ti := range set.Tables {
		t := &set.Tables[ti]
		e := &Entity{
			Name:    t.Name,
			Comment: t.Comment,
			index:   make(map[string]int),
		}
		e.Fields = append(e.Fields, implicitFields(reg)...)
		for _, c := range t.Columns {
			ct, fkTarget, err := reg.Resolve(t.Name, c.Name, c.Type)
			if err != nil {
				return nil, err
			}
			e.Fields = append(e.Fields, Field{
				Name:     c.Name,
				Type:     ct,
				Comment:  c.Comment,
				Unique:   c.Constraints.Unique,
				FKTarget: fkTarget,
			})
		}
		for i := range e.Fields {
			e.index[e.Fields[i].Name] = i
		}
		m.Entities = append(m.Entities, e)
		m.byName[t.Name] = e
	}
	return m, nil
}

// implicitFields returns the columns every entity carries: the surrogate
// identity, the audit timestamps, and the open-ended meta document.
func implicitFields(reg *schema.Registry) []Field {
	intType, _ := reg.Lookup(schema.Int)
	dtType, _ := reg.Lookup(schema.DateTime)
	objType, _ := reg.Lookup(schema.Object)
	return []Field{
		{Name: "id", Type: intType, Implicit: true},
		{Name: "time_created", Type: dtType, Implicit: true},
		{Name: "time_modified", Type: dtType, Implicit: true},
		{Name: "meta", Type: objType, Implicit: true},
	}
}
