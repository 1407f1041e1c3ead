package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("BREWIN_CONFIG", "")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "brewin version 'vdev' unknown unknown\n", out)
}

func TestNoCommandPrintsHelp(t *testing.T) {
	code, out, _ := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, out, "Usage: brewin")
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "frobnicate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, `unknown command "frobnicate"`)
}

func TestRunWithScriptedInput(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "sum.br", `func main() {
  var a: int;
  var b: int;
  a = inputi("first?");
  b = inputi();
  print(a + b);
}
`)
	input := writeFile(t, dir, "in.txt", "4\n38\n")

	code, out, errOut := runCLI(t, "run", "-input", input, prog)
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "first?\n42\n", out)
}

func TestRunReportsRuntimeError(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "bad.br", "func main() {\n  print(\"ok\");\n  print(1 + true);\n}\n")
	input := writeFile(t, dir, "in.txt", "")

	code, out, errOut := runCLI(t, "run", "-input", input, prog)
	assert.Equal(t, exitError, code)
	assert.Equal(t, "ok\n", out)
	assert.True(t, strings.HasPrefix(errOut, "ErrorType.TYPE_ERROR: "), errOut)
	assert.Contains(t, errOut, "print(1 + true);")
	assert.Contains(t, errOut, "^ here")
}

func TestRunReportsSyntaxError(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "bad.br", "func main() {\n  var x\n}\n")

	code, _, errOut := runCLI(t, "run", prog)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "ErrorType.SYNTAX_ERROR: expected next token to be \";\"")
}

func TestRunDialectFromConfig(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "not.br", "func main() { print(!0); }\n")
	input := writeFile(t, dir, "in.txt", "")
	config := writeFile(t, dir, "brewin.toml", "dialect = \"brewin\"\n")

	code, _, errOut := runCLI(t, "-config", config, "run", "-input", input, prog)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "ErrorType.TYPE_ERROR")

	code, out, _ := runCLI(t, "-config", config, "run", "-dialect", "brewin+", "-input", input, prog)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "true\n", out)
}

func TestRunUnknownDialect(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "x.br", "func main() {}\n")
	code, _, errOut := runCLI(t, "run", "-dialect", "cobol", prog)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "unknown dialect")
}

func TestRunWritesDebugAST(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "x.br", "func main() { print(1); }\n")
	input := writeFile(t, dir, "in.txt", "")

	code, out, _ := runCLI(t, "run", "-debug-ast", "-input", input, prog)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "1\n", out)

	data, err := os.ReadFile(prog + ".ast.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "program"`)
}

func TestAST(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "x.br", "struct P { x: int; }\nfunc main() { var p: P; }\n")
	code, out, _ := runCLI(t, "ast", prog)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `"kind": "struct-def"`)
	assert.Contains(t, out, `"kind": "var-def"`)
}

func TestTestAndHistory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pass.br", "func main() { print(\"hi\"); }\n/*\n*OUT*\nhi\n*OUT*\n*/\n")
	writeFile(t, dir, "fail.br", "func main() { print(\"hi\"); }\n/*\n*OUT*\nbye\n*OUT*\n*/\n")
	dsn := "sqlite3://" + filepath.Join(dir, "results.db")

	code, out, _ := runCLI(t, "test", "-results", dsn, "-label", "ci", dir)
	assert.Equal(t, exitError, code)
	assert.Contains(t, out, "FAIL fail")
	assert.Contains(t, out, "1 passed, 1 failed")

	code, out, errOut := runCLI(t, "history", "-results", dsn)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "ci")
	assert.Contains(t, out, "1 passed")

	code, out, _ = runCLI(t, "history", "-results", dsn, "-run", "1")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "FAIL fail")
	assert.NotContains(t, out, "pass.br")
}

func TestHistoryNeedsDSN(t *testing.T) {
	code, _, errOut := runCLI(t, "history")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "needs -results")
}
