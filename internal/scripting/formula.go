package scripting

import (
	"fmt"
	"math"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Operand is the attribute view of one side of a damage formula, keyed by the
// names formulas use (atk, def, mat, mdf, agi, luk, mhp, mmp, hp, mp, tp, level).
type Operand map[string]float64

// Formulas evaluates damage formula expressions such as "a.atk * 4 - b.def * 2"
// in a sandboxed state. a is the user and b the target. Compiled expressions
// are cached by source text.
//
// Formulas is safe for concurrent use.
type Formulas struct {
	mu       sync.Mutex
	L        *lua.LState
	limit    int
	compiled map[string]*lua.LFunction
}

// NewFormulas creates a formula evaluator whose every evaluation is limited to
// instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
func NewFormulas(instLimit int) *Formulas {
	return &Formulas{
		L:        NewSandboxedState(instLimit),
		limit:    instLimit,
		compiled: make(map[string]*lua.LFunction),
	}
}

// Eval returns the value of expr for user a and target b.
//
// Postcondition: Returns an error for a syntax error, a runtime error, or a
// non-numeric result. A NaN result is reported as 0.
func (f *Formulas) Eval(expr string, a, b Operand) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn, err := f.compile(expr)
	if err != nil {
		return 0, err
	}
	cancel := armLimit(f.L, f.limit)
	defer cancel()
	if err := f.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		operandTable(f.L, a), operandTable(f.L, b)); err != nil {
		return 0, fmt.Errorf("scripting: evaluating formula %q: %w", expr, err)
	}
	ret := f.L.Get(-1)
	f.L.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("scripting: formula %q returned %s, want number", expr, ret.Type())
	}
	v := float64(n)
	if math.IsNaN(v) {
		return 0, nil
	}
	return v, nil
}

func (f *Formulas) compile(expr string) (*lua.LFunction, error) {
	if fn, ok := f.compiled[expr]; ok {
		return fn, nil
	}
	fn, err := f.L.LoadString("local a, b = ...\nreturn " + expr)
	if err != nil {
		return nil, fmt.Errorf("scripting: compiling formula %q: %w", expr, err)
	}
	f.compiled[expr] = fn
	return fn, nil
}

func operandTable(L *lua.LState, o Operand) *lua.LTable {
	t := L.CreateTable(0, len(o))
	for k, v := range o {
		t.RawSetString(k, lua.LNumber(v))
	}
	return t
}

// Close releases the evaluator's state.
func (f *Formulas) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.L.Close()
}
