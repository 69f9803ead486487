// Package db assembles the runtime database: the generated entity model,
// the relationship graph, and a connected storage-engine adapter. A
// Database is constructed explicitly and passed around; there is no
// process-wide ambient engine.
package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ephyslab/synapdb/internal/graph"
	"github.com/ephyslab/synapdb/internal/model"
	"github.com/ephyslab/synapdb/internal/session"
	"github.com/ephyslab/synapdb/pkg/adapter"
	"github.com/ephyslab/synapdb/pkg/schema"
)

// Database owns the connection pool, the generated entity model, and the
// relationship graph. The model and graph are immutable after Open and
// safely shared across concurrent sessions without locking.
type Database struct {
	adapter adapter.Adapter
	model   *model.Model
	graph   *graph.Graph
	logger  *slog.Logger
}

// Open generates the synphys entity model, wires its relationship graph,
// and connects to the configured storage engine. Schema and link errors
// abort here; no partially built model is ever exposed.
func Open(ctx context.Context, cfg adapter.Config, logger *slog.Logger) (*Database, error) {
	return OpenWithSet(ctx, cfg, schema.Synphys(), logger)
}

// OpenWithSet is Open for an arbitrary descriptor set.
func OpenWithSet(ctx context.Context, cfg adapter.Config, set *schema.DescriptorSet, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m, err := model.Generate(set, schema.NewRegistry())
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(m)
	if err != nil {
		return nil, err
	}

	a, err := adapter.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg); err != nil {
		return nil, err
	}

	logger.Debug("database opened",
		slog.String("engine", cfg.Type),
		slog.Int("entities", len(m.Entities)),
		slog.Int("edges", len(g.Edges)))

	return &Database{adapter: a, model: m, graph: g, logger: logger}, nil
}

// Model returns the generated entity model.
func (d *Database) Model() *model.Model {
	return d.model
}

// Graph returns the relationship graph.
func (d *Database) Graph() *graph.Graph {
	return d.graph
}

// Close releases the connection pool.
func (d *Database) Close() error {
	return d.adapter.Close()
}

// OpenSession starts a new unit of work. The caller must Commit and Close
// it, or hand lifecycle management to session.WithSession.
func (d *Database) OpenSession(ctx context.Context) (*session.Session, error) {
	tx, err := d.adapter.Handle().BeginTx(ctx, nil)
	if err != nil {
		return nil, &session.StorageError{Op: "open session", Err: err}
	}
	return session.New(tx, d.graph, d.adapter.Dialect(), d.adapter.Placeholder, d.logger), nil
}

// InitSchema runs the bookkeeping migrations and creates every entity table
// from the generated model. It is idempotent and never drops anything.
func (d *Database) InitSchema(ctx context.Context) error {
	if err := d.migrate(); err != nil {
		return err
	}
	for _, stmt := range d.graph.CreateStatements(d.adapter.Dialect()) {
		if _, err := d.adapter.Handle().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create entity tables: %w", err)
		}
	}
	if err := d.recordRevision(ctx); err != nil {
		return err
	}
	d.logger.Info("schema initialized", slog.String("fingerprint", d.Fingerprint()))
	return nil
}

// Reset drops every entity table and rebuilds the schema from the current
// entity model. Destructive; only ever invoked explicitly.
func (d *Database) Reset(ctx context.Context) error {
	for _, stmt := range d.graph.DropStatements(d.adapter.Dialect()) {
		if _, err := d.adapter.Handle().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop entity tables: %w", err)
		}
	}
	d.logger.Warn("entity tables dropped")
	return d.InitSchema(ctx)
}

// Fingerprint identifies the generated schema: the hash of its rendered
// DDL. Recorded in schema_revision on every init so drift is visible.
func (d *Database) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(strings.Join(d.graph.CreateStatements(schema.DialectPostgres), ";\n")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (d *Database) recordRevision(ctx context.Context) error {
	query := fmt.Sprintf("INSERT INTO schema_revision (fingerprint) VALUES (%s)", d.adapter.Placeholder(1))
	if _, err := d.adapter.Handle().ExecContext(ctx, query, d.Fingerprint()); err != nil {
		return fmt.Errorf("failed to record schema revision: %w", err)
	}
	return nil
}

// Handle exposes the raw pool for the migration runner and tests.
func (d *Database) Handle() *sql.DB {
	return d.adapter.Handle()
}

// Dialect returns the connected engine's dialect.
func (d *Database) Dialect() schema.Dialect {
	return d.adapter.Dialect()
}
