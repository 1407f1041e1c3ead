package corpus

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietRunner(parallelism int) *Runner {
	return &Runner{
		Parallelism: parallelism,
		Logger:      slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)),
	}
}

func TestParseProgram(t *testing.T) {
	src := "func main() { print(inputi()); }\n/*\n*IN*\n3\n4\n*IN*\n*OUT*\n3\nErrorType.NAME_ERROR\n*OUT*\n*/\n"
	c, err := ParseProgram("dir/case_one.br", src)
	require.NoError(t, err)

	assert.Equal(t, "case_one", c.Name)
	assert.Equal(t, []string{"3", "4"}, c.Input)
	assert.Equal(t, []string{"3"}, c.Output)
	assert.Equal(t, "NAME_ERROR", c.Error)
	assert.Equal(t, src, c.Program)
}

func TestParseProgramWithoutInput(t *testing.T) {
	c, err := ParseProgram("x.br", "func main() {}\n/*\n*OUT*\n*OUT*\n*/")
	require.NoError(t, err)
	assert.Empty(t, c.Input)
	assert.Empty(t, c.Output)
	assert.Equal(t, "", c.Error)
}

func TestParseProgramRequiresOutput(t *testing.T) {
	_, err := ParseProgram("x.br", "func main() {}\n/* *IN* 1 *IN* */")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing *OUT*")
}

func TestParseSuite(t *testing.T) {
	data := []byte(`
dialect: brewin+
cases:
  - program: "func main() { print(1); }"
    output: ["1"]
  - name: typed
    dialect: brewin
    program: "func main() { var x: int; x = true; }"
    error: ErrorType.TYPE_ERROR
`)
	cases, err := ParseSuite("suite.yaml", data)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "case-1", cases[0].Name)
	assert.Equal(t, "brewin+", cases[0].Dialect)
	assert.Equal(t, "typed", cases[1].Name)
	assert.Equal(t, "brewin", cases[1].Dialect)
	assert.Equal(t, "TYPE_ERROR", cases[1].Error)
	assert.Equal(t, "suite.yaml", cases[1].Source)
}

func TestParseSuiteErrors(t *testing.T) {
	_, err := ParseSuite("bad.yaml", []byte("cases:\n  - name: empty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `case "empty" has no program`)

	_, err = ParseSuite("bad.yaml", []byte("cases: [unterminated"))
	require.Error(t, err)
}

func TestLoadDirectory(t *testing.T) {
	cases, err := Load("testdata")
	require.NoError(t, err)

	var names []string
	for _, c := range cases {
		names = append(names, c.Name)
	}
	want := []string{
		"bad_type",
		"greet",
		"div0 is catchable",
		"div0 is fatal without exceptions",
		"factorial",
		"lazy argument is never forced",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("case order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRunTestdata(t *testing.T) {
	cases, err := Load("testdata")
	require.NoError(t, err)

	summary, err := quietRunner(3).Run(context.Background(), cases)
	require.NoError(t, err)

	for _, res := range summary.Results {
		assert.True(t, res.Passed, "%s failed: %s\n%s", res.Case.Name, res.Message, res.Diff)
	}
	assert.Equal(t, len(cases), summary.Passed)
	assert.Equal(t, 0, summary.Failed)
}

func TestRunReportsDiff(t *testing.T) {
	cases := []*Case{{
		Name:    "wrong",
		Program: "func main() { print(\"a\"); print(\"b\"); }",
		Output:  []string{"a", "c"},
	}}
	summary, err := quietRunner(1).Run(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	res := summary.Results[0]
	assert.False(t, res.Passed)
	assert.Equal(t, []string{"a", "b"}, res.Output)
	assert.Contains(t, res.Diff, `"c"`)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunClassifiesErrors(t *testing.T) {
	tests := []struct {
		program string
		want    string
	}{
		{"func main() { var x; var x; }", "NAME_ERROR"},
		{"func main() { print(1 + \"a\"); }", "TYPE_ERROR"},
		{"func main() { print(inputi()); }", "IO_ERROR"},
		{"func main() { print(1) }", SyntaxError},
		{"func f() {}", "NAME_ERROR"},
	}
	for _, tt := range tests {
		res, err := quietRunner(1).RunCase(&Case{Name: tt.program, Program: tt.program, Error: tt.want})
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Error, tt.program)
		assert.True(t, res.Passed, "%s: %s", tt.program, res.Diff)
	}
}

func TestRunnerDialectOverride(t *testing.T) {
	c := &Case{
		Name:    "not coercion",
		Program: "func main() { print(!0); }",
		Output:  []string{"true"},
	}
	r := quietRunner(1)
	r.Dialect = "brewin"
	res, err := r.RunCase(c)
	require.NoError(t, err)
	assert.Equal(t, "TYPE_ERROR", res.Error)

	r.Dialect = "brewin+"
	res, err = r.RunCase(c)
	require.NoError(t, err)
	assert.True(t, res.Passed, res.Diff)
}

func TestRunnerUnknownDialect(t *testing.T) {
	_, err := quietRunner(2).Run(context.Background(), []*Case{{Name: "x", Dialect: "cobol", Program: "func main() {}"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietRunner(1).Run(ctx, []*Case{{Name: "x", Program: "func main() {}"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))
	_, err := LoadFile(path)
	require.Error(t, err)
}
