// Package session issues scoped units of work against the storage engine.
// Every entity-graph operation runs inside exactly one session; mutations
// are invisible to other sessions until commit, and a session that fails is
// rolled back in full. Isolation is delegated entirely to the engine.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ephyslab/synapdb/internal/entity"
	"github.com/ephyslab/synapdb/internal/graph"
	"github.com/ephyslab/synapdb/internal/model"
	"github.com/ephyslab/synapdb/pkg/schema"
)

// State tracks the session lifecycle: Open -> {Committed, RolledBack} -> Closed.
type State int

// Session states.
const (
	StateOpen State = iota
	StateCommitted
	StateRolledBack
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled back"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StorageError reports a failure at the storage boundary: lost connection,
// constraint violation, commit failure. It propagates to the caller and is
// never retried inside this layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Session is one scoped transaction against the storage engine. Sessions
// are not safe for concurrent use; open one per goroutine.
type Session struct {
	id          uuid.UUID
	tx          *sql.Tx
	graph       *graph.Graph
	dialect     schema.Dialect
	placeholder func(int) string
	logger      *slog.Logger
	state       State
}

// New wraps an open transaction in a session. Callers normally go through
// db.Database.OpenSession rather than calling this directly.
func New(tx *sql.Tx, g *graph.Graph, dialect schema.Dialect, placeholder func(int) string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.New()
	return &Session{
		id:          id,
		tx:          tx,
		graph:       g,
		dialect:     dialect,
		placeholder: placeholder,
		logger:      logger.With(slog.String("session", id.String())),
		state:       StateOpen,
	}
}

// ID returns the session's identifier, used for log correlation.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// NewRecord creates an empty record of the named entity type.
func (s *Session) NewRecord(table string) (*entity.Record, error) {
	e, ok := s.graph.Model.Entity(table)
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", table)
	}
	return entity.New(e), nil
}

func (s *Session) checkOpen(op string) error {
	if s.state != StateOpen {
		return &StorageError{Op: op, Err: fmt.Errorf("session is %s", s.state)}
	}
	return nil
}

// Commit makes the session's mutations visible to other sessions. On
// failure the transaction's changes are discarded and the session closes.
func (s *Session) Commit() error {
	if err := s.checkOpen("commit"); err != nil {
		return err
	}
	if err := s.tx.Commit(); err != nil {
		s.state = StateClosed
		return &StorageError{Op: "commit", Err: err}
	}
	s.state = StateCommitted
	s.logger.Debug("session committed")
	return nil
}

// Rollback discards the session's mutations.
func (s *Session) Rollback() error {
	if err := s.checkOpen("rollback"); err != nil {
		return err
	}
	if err := s.tx.Rollback(); err != nil {
		s.state = StateClosed
		return &StorageError{Op: "rollback", Err: err}
	}
	s.state = StateRolledBack
	s.logger.Debug("session rolled back")
	return nil
}

// Close releases the session. An open session is rolled back first; closing
// an already committed, rolled back, or closed session is a no-op, so Close
// is safe to defer on every exit path.
func (s *Session) Close() error {
	switch s.state {
	case StateOpen:
		if err := s.tx.Rollback(); err != nil {
			s.state = StateClosed
			return &StorageError{Op: "close", Err: err}
		}
		s.state = StateClosed
		s.logger.Debug("session closed with rollback")
	case StateCommitted, StateRolledBack:
		s.state = StateClosed
	}
	return nil
}

// Insert writes a new record. The engine assigns the identity and creation
// timestamp, which are read back into the record.
func (s *Session) Insert(ctx context.Context, r *entity.Record) error {
	op := "insert " + r.Entity.Name
	if err := s.checkOpen(op); err != nil {
		return err
	}
	if r.ID != 0 {
		return &StorageError{Op: op, Err: fmt.Errorf("record already has id %d", r.ID)}
	}

	cols, vals := r.Values()
	bound := make([]any, 0, len(vals)+1)
	for i, col := range cols {
		f, _ := r.Entity.Field(col)
		v, err := f.Type.BindValue(vals[i])
		if err != nil {
			return &StorageError{Op: op, Err: fmt.Errorf("column %q: %w", col, err)}
		}
		bound = append(bound, v)
	}
	if r.Meta != nil {
		f, _ := r.Entity.Field("meta")
		v, err := f.Type.BindValue(r.Meta)
		if err != nil {
			return &StorageError{Op: op, Err: fmt.Errorf("meta: %w", err)}
		}
		cols = append(cols, "meta")
		bound = append(bound, v)
	}

	var query string
	if len(cols) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING id, time_created", r.Entity.Name)
	} else {
		marks := make([]string, len(cols))
		for i := range cols {
			marks[i] = s.placeholder(i + 1)
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id, time_created",
			r.Entity.Name, strings.Join(cols, ", "), strings.Join(marks, ", "))
	}

	var created any
	if err := s.tx.QueryRowContext(ctx, query, bound...).Scan(&r.ID, &created); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if created != nil {
		f, _ := r.Entity.Field("time_created")
		v, err := f.Type.DecodeValue(created)
		if err != nil {
			return &StorageError{Op: op, Err: err}
		}
		r.TimeCreated, _ = v.(time.Time)
	}
	s.logger.Debug("inserted record", slog.String("table", r.Entity.Name), slog.Int64("id", r.ID))
	return nil
}

// Update writes the record's set columns back and refreshes time_modified
// from the engine's clock.
func (s *Session) Update(ctx context.Context, r *entity.Record) error {
	op := "update " + r.Entity.Name
	if err := s.checkOpen(op); err != nil {
		return err
	}
	if r.ID == 0 {
		return &StorageError{Op: op, Err: fmt.Errorf("record has not been inserted")}
	}

	cols, vals := r.Values()
	var sets []string
	var bound []any
	n := 0
	for i, col := range cols {
		f, _ := r.Entity.Field(col)
		v, err := f.Type.BindValue(vals[i])
		if err != nil {
			return &StorageError{Op: op, Err: fmt.Errorf("column %q: %w", col, err)}
		}
		n++
		sets = append(sets, fmt.Sprintf("%s = %s", col, s.placeholder(n)))
		bound = append(bound, v)
	}
	if r.Meta != nil {
		f, _ := r.Entity.Field("meta")
		v, err := f.Type.BindValue(r.Meta)
		if err != nil {
			return &StorageError{Op: op, Err: fmt.Errorf("meta: %w", err)}
		}
		n++
		sets = append(sets, fmt.Sprintf("meta = %s", s.placeholder(n)))
		bound = append(bound, v)
	}

	clock := "CURRENT_TIMESTAMP"
	if s.dialect == schema.DialectPostgres {
		clock = "now()"
	}
	sets = append(sets, "time_modified = "+clock)

	n++
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s RETURNING time_modified",
		r.Entity.Name, strings.Join(sets, ", "), s.placeholder(n))
	bound = append(bound, r.ID)

	var modified any
	if err := s.tx.QueryRowContext(ctx, query, bound...).Scan(&modified); err != nil {
		if err == sql.ErrNoRows {
			return &StorageError{Op: op, Err: fmt.Errorf("no row with id %d", r.ID)}
		}
		return &StorageError{Op: op, Err: err}
	}
	if modified != nil {
		f, _ := r.Entity.Field("time_modified")
		v, err := f.Type.DecodeValue(modified)
		if err != nil {
			return &StorageError{Op: op, Err: err}
		}
		r.TimeModified, _ = v.(time.Time)
	}
	return nil
}

// Delete removes the row by id. Owned subtrees go with it through the
// engine's cascading foreign keys; weak references to the row are nulled.
func (s *Session) Delete(ctx context.Context, table string, id int64) error {
	op := "delete " + table
	if err := s.checkOpen(op); err != nil {
		return err
	}
	if _, ok := s.graph.Model.Entity(table); !ok {
		return &StorageError{Op: op, Err: fmt.Errorf("unknown entity type %q", table)}
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", table, s.placeholder(1))
	res, err := s.tx.ExecContext(ctx, query, id)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &StorageError{Op: op, Err: fmt.Errorf("no row with id %d", id)}
	}
	s.logger.Debug("deleted record", slog.String("table", table), slog.Int64("id", id))
	return nil
}

// Get fetches one record by id. A missing row returns (nil, nil).
func (s *Session) Get(ctx context.Context, table string, id int64) (*entity.Record, error) {
	op := "get " + table
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	e, ok := s.graph.Model.Entity(table)
	if !ok {
		return nil, &StorageError{Op: op, Err: fmt.Errorf("unknown entity type %q", table)}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s",
		strings.Join(fieldNames(e), ", "), table, s.placeholder(1))
	rows, err := s.tx.QueryContext(ctx, query, id)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, &StorageError{Op: op, Err: err}
		}
		return nil, nil
	}
	r, err := scanRecord(e, rows)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	return r, rows.Err()
}

// Find returns the records whose column equals value, ordered by id
// (insertion order).
func (s *Session) Find(ctx context.Context, table, column string, value any) ([]*entity.Record, error) {
	op := fmt.Sprintf("find %s by %s", table, column)
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	e, ok := s.graph.Model.Entity(table)
	if !ok {
		return nil, &StorageError{Op: op, Err: fmt.Errorf("unknown entity type %q", table)}
	}
	f, ok := e.Field(column)
	if !ok {
		return nil, &StorageError{Op: op, Err: fmt.Errorf("entity %s has no column %q", table, column)}
	}
	bound, err := f.Type.BindValue(value)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY id",
		strings.Join(fieldNames(e), ", "), table, column, s.placeholder(1))
	rows, err := s.tx.QueryContext(ctx, query, bound)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Record
	for rows.Next() {
		r, err := scanRecord(e, rows)
		if err != nil {
			return nil, &StorageError{Op: op, Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	return out, nil
}

// Children navigates a parent-side collection: the child records of r along
// the named edge, in insertion order.
func (s *Session) Children(ctx context.Context, r *entity.Record, collection string) ([]*entity.Record, error) {
	edge, ok := s.graph.CollectionEdge(r.Entity.Name, collection)
	if !ok {
		return nil, &StorageError{Op: "children of " + r.Entity.Name, Err: fmt.Errorf("no collection %q", collection)}
	}
	return s.Find(ctx, edge.Child, edge.Column, r.ID)
}

// Parent navigates a child-side reference: the single record r points at
// along the named edge. A null foreign key returns (nil, nil), so a deleted
// weak target dereferences as absent rather than dangling.
func (s *Session) Parent(ctx context.Context, r *entity.Record, ref string) (*entity.Record, error) {
	edge, ok := s.graph.RefEdge(r.Entity.Name, ref)
	if !ok {
		return nil, &StorageError{Op: "parent of " + r.Entity.Name, Err: fmt.Errorf("no reference %q", ref)}
	}
	fk, ok := r.Int(edge.Column)
	if !ok {
		return nil, nil
	}
	return s.Get(ctx, edge.Parent, fk)
}

// fieldNames returns the column list for an entity in field order.
func fieldNames(e *model.Entity) []string {
	names := make([]string, len(e.Fields))
	for i := range e.Fields {
		names[i] = e.Fields[i].Name
	}
	return names
}
