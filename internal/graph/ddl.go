package graph

import (
	"fmt"
	"strings"

	"github.com/ephyslab/synapdb/internal/model"
	"github.com/ephyslab/synapdb/pkg/schema"
)

// CreateStatements renders CREATE TABLE statements for every entity in
// parents-first order. Ownership policies become engine-level referential
// actions: owning edges cascade, reference edges null the pointer, so
// subtree deletion is atomic inside the engine's transaction.
func (g *Graph) CreateStatements(d schema.Dialect) []string {
	var stmts []string
	for _, name := range g.order {
		e, _ := g.Model.Entity(name)
		stmts = append(stmts, g.createTable(e, d))
		if d == schema.DialectPostgres {
			stmts = append(stmts, g.commentStatements(e)...)
		}
	}
	return stmts
}

// DropStatements renders DROP TABLE statements in children-first order.
func (g *Graph) DropStatements(d schema.Dialect) []string {
	var stmts []string
	for i := len(g.order) - 1; i >= 0; i-- {
		stmts = append(stmts, fmt.Sprintf("DROP TABLE IF EXISTS %s", g.order[i]))
	}
	return stmts
}

func (g *Graph) createTable(e *model.Entity, d schema.Dialect) string {
	var cols []string
	for i := range e.Fields {
		f := &e.Fields[i]
		cols = append(cols, g.columnDef(e.Name, f, d))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", e.Name, strings.Join(cols, ",\n    "))
}

func (g *Graph) columnDef(table string, f *model.Field, d schema.Dialect) string {
	if f.Name == "id" {
		if d == schema.DialectPostgres {
			return "id BIGSERIAL PRIMARY KEY"
		}
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	def := fmt.Sprintf("%s %s", f.Name, f.Type.Physical(d))

	switch f.Name {
	case "time_created":
		if d == schema.DialectPostgres {
			def += " DEFAULT now()"
		} else {
			def += " DEFAULT CURRENT_TIMESTAMP"
		}
	}

	if f.Unique {
		def += " UNIQUE"
	}
	if f.IsForeignKey() {
		edge, _ := g.Edge(table, f.Name)
		action := "SET NULL"
		if edge.Owning() {
			action = "CASCADE"
		}
		def += fmt.Sprintf(" REFERENCES %s (id) ON DELETE %s", f.FKTarget, action)
	}
	return def
}

// commentStatements renders table and column comments. Comments are
// non-functional metadata; only postgres persists them.
func (g *Graph) commentStatements(e *model.Entity) []string {
	var stmts []string
	if e.Comment != "" {
		stmts = append(stmts, fmt.Sprintf("COMMENT ON TABLE %s IS %s", e.Name, quoteLiteral(e.Comment)))
	}
	for i := range e.Fields {
		f := &e.Fields[i]
		if f.Comment != "" {
			stmts = append(stmts, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", e.Name, f.Name, quoteLiteral(f.Comment)))
		}
	}
	return stmts
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
