// Package troopevent runs a troop's scripted battle events against a combat
// session. Scripts see the session through scripting.Host.
package troopevent

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/party"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// ErrNotRunning is returned to scripts that try to force an action on a
// session that has not started or has already ended.
var ErrNotRunning = errors.New("troopevent: battle is not running")

// Hooks implements combat.EventHooks for one troop's scripts.
type Hooks struct {
	manager *scripting.Manager
	troopID string
	logger  *zap.Logger
	running bool
}

// New returns the event hooks of troopID.
//
// Precondition: manager must be non-nil.
func New(manager *scripting.Manager, troopID string, logger *zap.Logger) *Hooks {
	if manager == nil {
		panic("troopevent: New requires a manager")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hooks{manager: manager, troopID: troopID, logger: logger}
}

// Running reports whether a hook is executing. Hooks run to completion inside
// Run, so the scheduler only ever observes true from within a hook.
func (h *Hooks) Running() bool { return h.running }

// Run calls the script function named after trigger with the current turn
// number. Script failures are logged by the manager and never stop the battle.
func (h *Hooks) Run(trigger combat.Trigger, s *combat.Session) {
	h.running = true
	defer func() { h.running = false }()

	host := &sessionHost{session: s}
	if _, err := h.manager.CallHook(h.troopID, trigger.String(), host, lua.LNumber(host.Turn())); err != nil {
		h.logger.Warn("battle event failed",
			zap.String("troop", h.troopID),
			zap.Stringer("trigger", trigger),
			zap.Error(err),
		)
	}
}

// sessionHost adapts a session to scripting.Host. Invalid requests come back
// as errors so a bad script cannot crash the battle.
type sessionHost struct {
	session *combat.Session
}

func (h *sessionHost) Turn() int { return h.session.Troop().TurnCount() }

func (h *sessionHost) unit(side scripting.Side) *party.Party {
	if side == scripting.SideTroop {
		return h.session.Troop()
	}
	return h.session.Party()
}

func (h *sessionHost) member(side scripting.Side, index int) (*battler.Combatant, error) {
	members := h.unit(side).BattleMembers()
	if index < 0 || index >= len(members) {
		return nil, fmt.Errorf("troopevent: no %s member %d", side, index+1)
	}
	return members[index], nil
}

func (h *sessionHost) Member(side scripting.Side, index int) (scripting.MemberInfo, bool) {
	m, err := h.member(side, index)
	if err != nil {
		return scripting.MemberInfo{}, false
	}
	return scripting.MemberInfo{
		Name:   m.Name(),
		HP:     m.HP(),
		MaxHP:  m.MHP(),
		MP:     m.MP(),
		TP:     m.TP(),
		Alive:  m.IsAlive(),
		States: m.StateIDs(),
	}, true
}

func (h *sessionHost) ForceAction(side scripting.Side, index, skillID, targetIndex int) error {
	m, err := h.member(side, index)
	if err != nil {
		return err
	}
	if _, ok := m.Skills().Get(skillID); !ok {
		return fmt.Errorf("troopevent: unknown skill %d", skillID)
	}
	switch h.session.Phase() {
	case combat.PhaseIdle, combat.PhaseBattleEnd:
		return ErrNotRunning
	}
	h.session.ForceAction(m, skillID, targetIndex)
	return nil
}

func (h *sessionHost) AddState(side scripting.Side, index, stateID int) error {
	m, err := h.member(side, index)
	if err != nil {
		return err
	}
	if !m.AddState(stateID) {
		return fmt.Errorf("troopevent: state %d cannot be added to %s", stateID, m.Name())
	}
	return nil
}

func (h *sessionHost) Abort() { h.session.Abort() }

func (h *sessionHost) Message(text string) { h.session.Say(text) }
