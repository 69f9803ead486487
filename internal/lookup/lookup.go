// Package lookup provides keyed-retrieval operations over the entity
// graph. Lookup failures are ordinary control-flow signals surfaced to the
// caller, never logged and swallowed.
package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/ephyslab/synapdb/internal/entity"
	"github.com/ephyslab/synapdb/internal/session"
)

// NotFoundError reports a unique lookup that matched nothing.
type NotFoundError struct {
	Table  string
	Column string
	Value  any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for %s = %v", e.Table, e.Column, e.Value)
}

// AmbiguityError reports a unique lookup that matched more than one row: a
// data-integrity problem, since the key column was expected to be unique.
type AmbiguityError struct {
	Table  string
	Column string
	Value  any
	Count  int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%d %s rows found for %s = %v, expected exactly one", e.Count, e.Table, e.Column, e.Value)
}

// FindUnique returns the single record whose column equals value. When sess
// is nil an internally managed session is opened and released around the
// query, per the session scope contract.
func FindUnique(ctx context.Context, opener session.Opener, sess *session.Session, table, column string, value any) (*entity.Record, error) {
	var out *entity.Record
	err := session.WithSession(ctx, opener, sess, func(s *session.Session) error {
		matches, err := s.Find(ctx, table, column, value)
		if err != nil {
			return err
		}
		switch len(matches) {
		case 0:
			return &NotFoundError{Table: table, Column: column, Value: value}
		case 1:
			out = matches[0]
			return nil
		default:
			return &AmbiguityError{Table: table, Column: column, Value: value, Count: len(matches)}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SliceForTimestamp returns the unique slice with the given acquisition
// timestamp.
func SliceForTimestamp(ctx context.Context, opener session.Opener, sess *session.Session, ts time.Time) (*entity.Record, error) {
	return FindUnique(ctx, opener, sess, "slice", "acq_timestamp", ts)
}

// ExperimentForTimestamp returns the unique experiment with the given
// acquisition timestamp.
func ExperimentForTimestamp(ctx context.Context, opener session.Opener, sess *session.Session, ts time.Time) (*entity.Record, error) {
	return FindUnique(ctx, opener, sess, "experiment", "acq_timestamp", ts)
}
