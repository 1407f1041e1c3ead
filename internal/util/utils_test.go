package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLineAndColumn(t *testing.T) {
	src := "func main() {\n  print(1);\n}"
	tests := []struct {
		pos          int
		line, column int
	}{
		{0, 1, 1},
		{5, 1, 6},
		{14, 2, 1},
		{16, 2, 3},
		{len(src) - 1, 3, 1},
	}
	for _, tt := range tests {
		line, col := GetLineAndColumn(src, tt.pos)
		assert.Equal(t, tt.line, line, "line at %d", tt.pos)
		assert.Equal(t, tt.column, col, "column at %d", tt.pos)
	}
}

func TestGetContextLines(t *testing.T) {
	src := "func main() {\n  var x;\n  x = 1 / 0;\n}\n"
	got := GetContextLines(src, 3, 9)
	want := "       1 | func main() {\n" +
		"       2 |   var x;\n" +
		"  >    3 |   x = 1 / 0;\n" +
		strings.Repeat(" ", 19) + "^ here"
	assert.Equal(t, want, got)
}

func TestSnippetClampsPastEnd(t *testing.T) {
	got := Snippet("func main() {", 100)
	assert.Equal(t, "  >    1 | func main() {\n"+strings.Repeat(" ", 24)+"^ here", got)
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), config)
}

func TestLoadConfigurationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brewin.toml")
	data := `
dialect = "brewin+"
global_scope = true
max_depth = 100
log_level = "debug"
results_dsn = "sqlite3://results.db"
parallelism = 0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	config, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, "brewin+", config.Dialect)
	assert.True(t, config.GlobalScope)
	assert.Equal(t, 100, config.MaxDepth)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "sqlite3://results.db", config.ResultsDSN)
	assert.Equal(t, 1, config.Parallelism)
	assert.False(t, config.Trace)
}

func TestLoadConfigurationRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brewin.toml")
	require.NoError(t, os.WriteFile(path, []byte("dialekt = \"brewin\"\n"), 0o644))

	_, err := LoadConfiguration(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialekt")
}

func TestConfigPath(t *testing.T) {
	t.Setenv(ConfigEnv, "/etc/brewin.toml")
	assert.Equal(t, "local.toml", ConfigPath("local.toml"))
	assert.Equal(t, "/etc/brewin.toml", ConfigPath(""))
}
