package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules installs the engine.* and battle.* tables into v's state.
// The battle functions act on whichever Host CallHook bound to v.
func (m *Manager) registerModules(v *vm) {
	L := v.L
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetGlobal("engine", engine)
	L.SetGlobal("battle", battleModule(L, v))
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	t := L.NewTable()
	for name, fn := range levels {
		L.SetField(t, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return t
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.Roll(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(res.Total))
		return 1
	}))
	return t
}

func battleModule(L *lua.LState, v *vm) *lua.LTable {
	host := func(L *lua.LState) Host {
		if v.host == nil {
			L.RaiseError("battle API used outside a battle hook")
		}
		return v.host
	}
	t := L.NewTable()
	L.SetField(t, "turn", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(host(L).Turn()))
		return 1
	}))
	L.SetField(t, "member", L.NewFunction(func(L *lua.LState) int {
		info, ok := host(L).Member(checkSide(L, 1), L.CheckInt(2)-1)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(memberTable(L, info))
		return 1
	}))
	L.SetField(t, "force_action", L.NewFunction(func(L *lua.LState) int {
		err := host(L).ForceAction(checkSide(L, 1), L.CheckInt(2)-1, L.CheckInt(3), L.OptInt(4, 0)-1)
		return pushResult(L, err)
	}))
	L.SetField(t, "add_state", L.NewFunction(func(L *lua.LState) int {
		err := host(L).AddState(checkSide(L, 1), L.CheckInt(2)-1, L.CheckInt(3))
		return pushResult(L, err)
	}))
	L.SetField(t, "abort", L.NewFunction(func(L *lua.LState) int {
		host(L).Abort()
		return 0
	}))
	L.SetField(t, "message", L.NewFunction(func(L *lua.LState) int {
		host(L).Message(L.CheckString(1))
		return 0
	}))
	return t
}

func checkSide(L *lua.LState, n int) Side {
	switch s := Side(L.CheckString(n)); s {
	case SideParty, SideTroop:
		return s
	default:
		L.ArgError(n, "side must be \"party\" or \"troop\"")
		return ""
	}
}

func memberTable(L *lua.LState, info MemberInfo) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "hp", lua.LNumber(info.HP))
	L.SetField(t, "mhp", lua.LNumber(info.MaxHP))
	L.SetField(t, "mp", lua.LNumber(info.MP))
	L.SetField(t, "tp", lua.LNumber(info.TP))
	L.SetField(t, "alive", lua.LBool(info.Alive))
	states := L.NewTable()
	for _, id := range info.States {
		states.Append(lua.LNumber(id))
	}
	L.SetField(t, "states", states)
	return t
}

// pushResult returns true, or false and the error message.
func pushResult(L *lua.LState, err error) int {
	if err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}
