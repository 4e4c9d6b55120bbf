// Package scripting runs troop battle events and damage formulas in sandboxed
// GopherLua states. It knows nothing about the battle packages; battles reach
// scripts through the Host interface and scripts reach battles the same way.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the opcodes one hook or formula call may run
// when no limit is configured.
const DefaultInstructionLimit = 100_000

// unsafeGlobals are base-library functions that reach the filesystem, load
// arbitrary chunks, or steer the collector.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// budget is an instruction allowance. GopherLua polls Done on its context once
// per opcode, so spending one unit per poll meters opcodes exactly.
type budget struct {
	context.Context
	left   atomic.Int64
	cancel context.CancelFunc
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// armLimit gives L a fresh allowance of instLimit opcodes, or
// DefaultInstructionLimit when instLimit <= 0. The returned func releases it.
func armLimit(L *lua.LState, instLimit int) context.CancelFunc {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(instLimit))
	L.SetContext(b)
	return cancel
}

// NewSandboxedState returns a state with only the base, table, string and math
// libraries, the unsafe base globals removed, and an allowance of instLimit
// opcodes that lasts until the next armLimit.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the state and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	armLimit(L, instLimit)
	return L
}
