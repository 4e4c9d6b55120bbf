package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/scripting"
)

func TestNewSandboxedState_StripsUnsafeGlobals(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	require.NotNil(t, L)
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_FormulaLibsAvailable(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	err := L.DoString(`
		assert(math.floor(2.7) == 2, "math.floor failed")
		assert(math.max(1, 5) == 5, "math.max failed")
		assert(string.format("%d", 3) == "3", "string.format failed")
		assert(#table.concat({"a", "b"}) == 2, "table.concat failed")
	`)
	assert.NoError(t, err)
}

func TestNewSandboxedState_InstructionLimitExceeded(t *testing.T) {
	L := scripting.NewSandboxedState(10)
	defer L.Close()
	assert.Error(t, L.DoString(`while true do end`))
}

func TestProperty_InstructionLimitAlwaysStopsLoops(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		L := scripting.NewSandboxedState(limit)
		defer L.Close()
		if err := L.DoString(`local n = 0 while true do n = n + 1 end`); err == nil {
			rt.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
