package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ephyslab/synapdb/internal/graph"
	"github.com/ephyslab/synapdb/internal/model"
	"github.com/ephyslab/synapdb/pkg/schema"
)

// testSet is a minimal two-table descriptor set for state-machine tests.
func testSet() *schema.DescriptorSet {
	return &schema.DescriptorSet{
		Tables: []schema.Table{
			{Name: "slice", Columns: []schema.Column{
				{Name: "acq_timestamp", Type: "datetime", Constraints: schema.Constraints{Unique: true}},
				{Name: "species", Type: "str"},
			}},
			{Name: "experiment", Columns: []schema.Column{
				{Name: "slice_id", Type: "slice.id"},
				{Name: "acsf", Type: "str"},
			}},
		},
		Relationships: []schema.Relationship{
			{Child: "experiment", Column: "slice_id", Policy: schema.Owning, Collection: "experiments", Ref: "slice"},
		},
	}
}

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	m, err := model.Generate(testSet(), schema.NewRegistry())
	require.NoError(t, err)
	g, err := graph.Build(m)
	require.NoError(t, err)
	return g
}

func openMockSession(t *testing.T) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	sess := New(tx, testGraph(t), schema.DialectSQLite, func(int) string { return "?" }, nil)
	return sess, mock
}

func TestSessionCommitLifecycle(t *testing.T) {
	sess, mock := openMockSession(t)
	mock.ExpectCommit()

	assert.Equal(t, StateOpen, sess.State())
	require.NoError(t, sess.Commit())
	assert.Equal(t, StateCommitted, sess.State())

	// A committed session accepts no further work.
	err := sess.Commit()
	require.Error(t, err)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)

	err = sess.Rollback()
	assert.Error(t, err)

	_, err = sess.Get(context.Background(), "slice", 1)
	assert.Error(t, err)

	// Close after commit is a quiet release.
	require.NoError(t, sess.Close())
	assert.Equal(t, StateClosed, sess.State())
	require.NoError(t, sess.Close())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRollbackLifecycle(t *testing.T) {
	sess, mock := openMockSession(t)
	mock.ExpectRollback()

	require.NoError(t, sess.Rollback())
	assert.Equal(t, StateRolledBack, sess.State())
	require.NoError(t, sess.Close())
	assert.Equal(t, StateClosed, sess.State())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseRollsBackOpenSession(t *testing.T) {
	sess, mock := openMockSession(t)
	mock.ExpectRollback()

	require.NoError(t, sess.Close())
	assert.Equal(t, StateClosed, sess.State())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitFailureBecomesStorageError(t *testing.T) {
	sess, mock := openMockSession(t)
	mock.ExpectCommit().WillReturnError(fmt.Errorf("connection lost"))

	err := sess.Commit()
	require.Error(t, err)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "commit", serr.Op)
	// The session is released; nothing more can run on it.
	assert.Equal(t, StateClosed, sess.State())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBindsAndReadsBackIdentity(t *testing.T) {
	sess, mock := openMockSession(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO slice (species) VALUES (?) RETURNING id, time_created")).
		WithArgs("mouse").
		WillReturnRows(sqlmock.NewRows([]string{"id", "time_created"}).AddRow(int64(7), "2017-03-09 14:30:00"))

	r, err := sess.NewRecord("slice")
	require.NoError(t, err)
	require.NoError(t, r.Set("species", "mouse"))

	require.NoError(t, sess.Insert(context.Background(), r))
	assert.Equal(t, int64(7), r.ID)
	assert.Equal(t, 2017, r.TimeCreated.Year())

	// Re-inserting an already persisted record is refused.
	err = sess.Insert(context.Background(), r)
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRowFails(t *testing.T) {
	sess, mock := openMockSession(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM slice WHERE id = ?")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := sess.Delete(context.Background(), "slice", 99)
	require.Error(t, err)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// mockOpener opens sessions over a sqlmock database.
type mockOpener struct {
	db *sql.DB
	g  *graph.Graph
}

func (o *mockOpener) OpenSession(ctx context.Context) (*Session, error) {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "open session", Err: err}
	}
	return New(tx, o.g, schema.DialectSQLite, func(int) string { return "?" }, nil), nil
}

func TestWithSessionCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	opener := &mockOpener{db: db, g: testGraph(t)}
	var seen *Session
	err = WithSession(context.Background(), opener, nil, func(s *Session) error {
		seen = s
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, seen.State())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSessionRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	opener := &mockOpener{db: db, g: testGraph(t)}
	boom := errors.New("boom")
	err = WithSession(context.Background(), opener, nil, func(s *Session) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSessionLeavesCallerSessionOpen(t *testing.T) {
	sess, mock := openMockSession(t)

	// No commit or rollback expected: the caller owns the lifecycle.
	err := WithSession(context.Background(), nil, sess, func(s *Session) error {
		assert.Same(t, sess, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateOpen, sess.State())

	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectRollback()
	require.NoError(t, sess.Close())
}
