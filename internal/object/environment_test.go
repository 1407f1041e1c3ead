package object

import (
	"brewin/internal/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intValue(t *testing.T, env *Environment, name string) int64 {
	t.Helper()
	b, ok := env.Get(name)
	require.True(t, ok, "%s not found", name)
	i, ok := b.Value.(*Integer)
	require.True(t, ok, "%s is %T", name, b.Value)
	return i.Value
}

func TestShadowingRestoresOuterBinding(t *testing.T) {
	env := NewEnvironment()
	env.PushFunction("main")
	require.True(t, env.Create("x", &Integer{Value: 1}, ast.IntType))

	env.PushBlock()
	require.True(t, env.Create("x", &Integer{Value: 2}, ast.IntType), "shadowing in a nested block is allowed")
	assert.Equal(t, int64(2), intValue(t, env, "x"))
	require.True(t, env.PopBlock())

	assert.Equal(t, int64(1), intValue(t, env, "x"))
}

func TestCreateFailsOnlyInInnermostScope(t *testing.T) {
	env := NewEnvironment()
	env.PushFunction("main")
	require.True(t, env.Create("x", NIL, ast.Untyped))
	assert.False(t, env.Create("x", NIL, ast.Untyped))

	env.PushBlock()
	assert.True(t, env.Create("x", NIL, ast.Untyped))
}

func TestSetUpdatesNearestScopeAndKeepsType(t *testing.T) {
	env := NewEnvironment()
	env.PushFunction("main")
	env.Create("x", &Integer{Value: 1}, ast.IntType)
	env.PushBlock()

	require.True(t, env.Set("x", &Integer{Value: 5}))
	require.True(t, env.PopBlock())

	b, ok := env.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(5), b.Value.(*Integer).Value)
	assert.Equal(t, ast.IntType, b.Type)

	assert.False(t, env.Set("undeclared", NIL))
}

func TestActivationIsolation(t *testing.T) {
	env := NewEnvironment()
	env.PushFunction("main")
	env.Create("n", &Integer{Value: 5}, ast.IntType)

	env.PushFunction("fact")
	_, ok := env.Get("n")
	assert.False(t, ok, "callee must not see caller locals")
	env.Create("n", &Integer{Value: 4}, ast.IntType)
	assert.Equal(t, 2, env.Depth())
	env.PopFunction()

	assert.Equal(t, int64(5), intValue(t, env, "n"))
	assert.Equal(t, 1, env.Depth())
}

func TestPopBlockKeepsLastScope(t *testing.T) {
	env := NewEnvironment()
	env.PushFunction("main")
	assert.False(t, env.PopBlock())

	env.PushBlock()
	assert.True(t, env.PopBlock())
	assert.False(t, env.PopBlock())
}

func TestGlobalScopeFallback(t *testing.T) {
	env := NewEnvironment()
	env.UseGlobalScope()
	env.PushFunction("main")
	env.PushBlock()
	env.Create("g", &Integer{Value: 10}, ast.IntType)

	env.PushBlock()
	env.Create("inner", &Integer{Value: 1}, ast.IntType)

	env.PushFunction("f")
	assert.Equal(t, int64(10), intValue(t, env, "g"))
	_, ok := env.Get("inner")
	assert.False(t, ok, "only main's outermost scopes are global")

	require.True(t, env.Set("g", &Integer{Value: 11}))
	env.Create("g", &Integer{Value: 99}, ast.IntType)
	assert.Equal(t, int64(99), intValue(t, env, "g"), "locals shadow globals")
	env.PopFunction()

	assert.Equal(t, int64(11), intValue(t, env, "g"))
}

func TestNoGlobalScopeByDefault(t *testing.T) {
	env := NewEnvironment()
	env.PushFunction("main")
	env.Create("g", &Integer{Value: 10}, ast.IntType)
	env.PushFunction("f")

	_, ok := env.Get("g")
	assert.False(t, ok)
}

func TestSnapshotIsolation(t *testing.T) {
	env := NewEnvironment()
	env.PushFunction("main")
	env.Create("x", &Integer{Value: 1}, ast.Untyped)
	env.PushBlock()
	env.Create("y", &Integer{Value: 2}, ast.Untyped)

	snap := env.Snapshot()

	env.Set("x", &Integer{Value: 100})
	env.Create("z", &Integer{Value: 3}, ast.Untyped)
	env.PopBlock()

	assert.Equal(t, int64(1), intValue(t, snap, "x"))
	assert.Equal(t, int64(2), intValue(t, snap, "y"))
	_, ok := snap.Get("z")
	assert.False(t, ok)

	snap.Set("y", &Integer{Value: 20})
	assert.Equal(t, int64(100), intValue(t, env, "x"))
	_, ok = env.Get("y")
	assert.False(t, ok, "popped scope stays gone in the original")

	snap.Set("x", &Integer{Value: 50})
	assert.Equal(t, int64(100), intValue(t, env, "x"))
	assert.Equal(t, int64(50), intValue(t, snap, "x"))
}

func TestSnapshotSharesStructInstances(t *testing.T) {
	schema := &StructSchema{Name: "P"}
	sv := &StructValue{Schema: schema, Fields: map[string]Object{"x": &Integer{Value: 1}}}

	env := NewEnvironment()
	env.PushFunction("main")
	env.Create("p", sv, "P")
	snap := env.Snapshot()

	sv.Fields["x"] = &Integer{Value: 9}

	b, ok := snap.Get("p")
	require.True(t, ok)
	assert.Equal(t, int64(9), b.Value.(*StructValue).Fields["x"].(*Integer).Value)
}

func TestSnapshotCarriesGlobals(t *testing.T) {
	env := NewEnvironment()
	env.UseGlobalScope()
	env.PushFunction("main")
	env.Create("g", &Integer{Value: 1}, ast.Untyped)
	env.PushFunction("f")

	snap := env.Snapshot()
	env.PopFunction()
	env.Set("g", &Integer{Value: 2})

	assert.Equal(t, int64(1), intValue(t, snap, "g"))
	assert.Equal(t, int64(2), intValue(t, env, "g"))
}
