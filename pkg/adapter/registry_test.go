package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ephyslab/synapdb/pkg/schema"
)

type stubAdapter struct {
	BaseSQLAdapter
}

func (a *stubAdapter) Connect(ctx context.Context, cfg Config) error { return nil }
func (a *stubAdapter) Dialect() schema.Dialect                       { return schema.DialectSQLite }
func (a *stubAdapter) Placeholder(n int) string                      { return "?" }

func TestRegistryRoundTrip(t *testing.T) {
	Register("stub", func(logger *slog.Logger) Adapter {
		return &stubAdapter{}
	})

	factory, ok := Get("stub")
	require.True(t, ok)
	assert.NotNil(t, factory(nil))

	assert.Contains(t, List(), "stub")

	a, err := New(Config{Type: "stub"}, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.DialectSQLite, a.Dialect())
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(Config{Type: "duckdb"}, nil)
	require.Error(t, err)
	var uerr *UnknownAdapterError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "duckdb", uerr.Type)
}

func TestNewEmptyType(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}
