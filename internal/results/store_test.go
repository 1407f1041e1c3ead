package results

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, "sqlite3://"+filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
		source string
	}{
		{"sqlite3:///tmp/r.db", "sqlite3", "/tmp/r.db"},
		{"sqlite://:memory:", "sqlite3", ":memory:"},
		{"postgres://user@localhost/brewin?sslmode=disable", "postgres", "postgres://user@localhost/brewin?sslmode=disable"},
	}
	for _, tt := range tests {
		d, source, err := parseDSN(tt.dsn)
		require.NoError(t, err, tt.dsn)
		assert.Equal(t, tt.driver, d.driver, tt.dsn)
		assert.Equal(t, tt.source, source, tt.dsn)
	}
}

func TestParseMySQLDSNEnablesParseTime(t *testing.T) {
	d, source, err := parseDSN("mysql://user:pw@tcp(db:3306)/brewin")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.driver)
	assert.True(t, strings.HasPrefix(source, "user:pw@tcp(db:3306)/brewin?"), source)
	assert.Contains(t, source, "parseTime=true")
}

func TestParseDSNErrors(t *testing.T) {
	for _, dsn := range []string{"results.db", "sqlite3://", "oracle://x", "mysql://not a dsn"} {
		_, _, err := parseDSN(dsn)
		assert.Error(t, err, dsn)
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE b = ? AND c = ?"
	assert.Equal(t, q, sqliteDialect.rebind(q))
	assert.Equal(t, q, mysqlDialect.rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", postgresDialect.rebind(q))
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	started := time.UnixMilli(1_700_000_000_000)

	first, err := s.Record(ctx, Run{Started: started, Label: "nightly", Passed: 2, Failed: 0, Duration: 1500 * time.Millisecond}, []CaseResult{
		{Name: "a", Source: "a.br", Dialect: "brewin", Passed: true, Duration: time.Millisecond},
		{Name: "b", Source: "b.br", Dialect: "brewin#", Passed: true},
	})
	require.NoError(t, err)

	second, err := s.Record(ctx, Run{Started: started.Add(time.Hour), Label: "manual", Passed: 1, Failed: 1}, []CaseResult{
		{Name: "ok", Source: "s.yaml", Dialect: "brewin+", Passed: true},
		{Name: "bad", Source: "s.yaml", Dialect: "brewin+", Error: "TYPE_ERROR", Diff: "-x\n+y\n", Duration: 3 * time.Millisecond},
	})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, "manual", runs[0].Label)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, "nightly", runs[1].Label)
	assert.True(t, runs[1].Started.Equal(started))
	assert.Equal(t, 1500*time.Millisecond, runs[1].Duration)

	limited, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second, limited[0].ID)

	failures, err := s.Failures(ctx, second)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "bad", failures[0].Name)
	assert.Equal(t, "TYPE_ERROR", failures[0].Error)
	assert.Equal(t, "-x\n+y\n", failures[0].Diff)
	assert.Equal(t, 3*time.Millisecond, failures[0].Duration)

	none, err := s.Failures(ctx, first)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordRollsBackOnCancel(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Record(ctx, Run{Started: time.Now(), Label: "x"}, nil)
	require.Error(t, err)

	runs, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
