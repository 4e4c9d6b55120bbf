package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
)

// globalTroopID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no troop VM is found.
const globalTroopID = "__global__"

// Side names one of the two parties of a battle in script calls.
type Side string

const (
	SideParty Side = "party"
	SideTroop Side = "troop"
)

// MemberInfo is a snapshot of a battle member passed to Lua.
type MemberInfo struct {
	Name   string
	HP     int
	MaxHP  int
	MP     int
	TP     int
	Alive  bool
	States []int
}

// Host is the battle a hook runs against. Member indexes are 0-based here;
// the Lua side sees them 1-based.
type Host interface {
	Turn() int
	Member(side Side, index int) (MemberInfo, bool)
	ForceAction(side Side, index, skillID, targetIndex int) error
	AddState(side Side, index, stateID int) error
	Abort()
	Message(text string)
}

// vm is one sandboxed state and the host bound to it for the current call.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	host  Host
	limit int
}

// Manager owns one sandboxed LState per troop and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook; calls into the same troop VM are
// serialised by the VM's lock.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadTroop creates a sandboxed VM for troopID, registers the engine and
// battle modules, then executes every *.lua file in scriptDir in
// lexicographic order.
//
// Precondition: troopID must be non-empty; scriptDir must be a readable directory.
// Postcondition: Troop VM is registered; returns error on Lua load failure.
func (m *Manager) LoadTroop(troopID, scriptDir string, instLimit int) error {
	if troopID == "" {
		return fmt.Errorf("scripting: LoadTroop requires a troop id")
	}
	return m.loadInto(troopID, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM for shared scripts accessible as a
// CallHook fallback from any troop.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalTroopID, scriptDir, instLimit)
}

// HasTroop reports whether a VM was loaded for troopID.
func (m *Manager) HasTroop(troopID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[troopID]
	return ok
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	v := &vm{limit: instLimit}
	v.L = NewSandboxedState(instLimit)
	m.registerModules(v)
	for _, path := range luaFiles {
		cancel := armLimit(v.L, instLimit)
		err := v.L.DoFile(path)
		cancel()
		if err != nil {
			v.L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.close()
	}
	m.vms[key] = v
	m.mu.Unlock()
	m.logger.Debug("scripting: loaded", zap.String("troop", key), zap.Int("files", len(luaFiles)))
	return nil
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.L.Close()
}

// CallHook calls the named Lua global function in troopID's VM with host
// bound to the battle module. If the troop has no VM, the __global__ VM is
// tried as a fallback. Returns (LNil, nil) if the hook is not defined or no
// VM exists. Lua runtime errors are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(troopID, hook string, host Host, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[troopID]
	if !ok {
		v = m.vms[globalTroopID]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Debug("scripting: no VM for troop",
			zap.String("troop", troopID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	v.host = host
	cancel := armLimit(v.L, v.limit)
	defer func() {
		cancel()
		v.host = nil
	}()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("troop", troopID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.vms {
		v.close()
		delete(m.vms, k)
	}
}
