// Package effect resolves what one action does to one target: the hit and
// evasion rolls, the damage formula, and the skill's side effects.
package effect

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// Formulas evaluates damage formulas. *scripting.Formulas implements it.
type Formulas interface {
	Eval(expr string, a, b scripting.Operand) (float64, error)
}

// Standard is the stock action-effect evaluator.
type Standard struct {
	roller   *dice.Roller
	formulas Formulas
	logger   *zap.Logger
}

// New returns a Standard evaluator.
//
// Precondition: roller and formulas must be non-nil.
func New(roller *dice.Roller, formulas Formulas, logger *zap.Logger) *Standard {
	if roller == nil || formulas == nil {
		panic("effect: New requires a roller and formulas")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Standard{roller: roller, formulas: formulas, logger: logger}
}

// Apply resolves a against target and returns the outcome record left on
// target. Vitals are clamped and conditions updated through the target's own
// methods.
func (s *Standard) Apply(a *battler.Action, target *battler.Combatant) battler.ActionResult {
	subject := a.Subject()
	sk := a.Skill()
	if subject != target {
		subject.ClearResult()
	}
	target.ClearResult()
	r := target.Result()
	if sk == nil {
		return *r
	}

	r.Used = sk.IsForDeadFriend() == target.IsDead()
	r.Missed = r.Used && !s.roller.Chance("hit "+sk.Name, s.hitRate(a))
	r.Evaded = r.Used && !r.Missed && s.roller.Chance("evasion "+target.Name(), s.evasionRate(a, target))
	r.Physical = a.IsPhysical()
	r.Drain = sk.IsDrain()

	if r.IsHit() {
		if sk.Damage.Type != skill.DamageNone {
			r.Critical = s.roller.Chance("critical "+sk.Name, s.criticalRate(a, target))
			s.executeDamage(a, target, s.damageValue(a, target, r.Critical))
		}
		for _, e := range sk.Effects {
			s.applyEffect(a, target, e)
		}
		subject.GainSilentTP(int(math.Floor(float64(sk.TPGain) * subject.SParam(trait.TCR))))
	}
	s.logger.Debug("action applied",
		zap.String("subject", subject.Name()),
		zap.String("skill", sk.Name),
		zap.String("target", target.Name()),
		zap.Bool("hit", r.IsHit()),
		zap.Int("hp_damage", r.HPDamage),
	)
	return *target.Result()
}

func (s *Standard) hitRate(a *battler.Action) float64 {
	rate := float64(a.Skill().SuccessRate) * 0.01
	if a.IsPhysical() {
		rate *= a.Subject().XParam(trait.HIT)
	}
	return rate
}

func (s *Standard) evasionRate(a *battler.Action, target *battler.Combatant) float64 {
	switch {
	case a.IsPhysical():
		return target.XParam(trait.EVA)
	case a.IsMagical():
		return target.XParam(trait.MEV)
	default:
		return 0
	}
}

func (s *Standard) criticalRate(a *battler.Action, target *battler.Combatant) float64 {
	if !a.Skill().Damage.Critical {
		return 0
	}
	return a.Subject().XParam(trait.CRI) * (1 - target.XParam(trait.CEV))
}

// damageValue runs the formula and scales it by element, damage rates,
// critical, variance, and guard.
func (s *Standard) damageValue(a *battler.Action, target *battler.Combatant, critical bool) int {
	sk := a.Skill()
	base := s.evalFormula(a, target)
	value := base * s.elementRate(a, target)
	if a.IsPhysical() {
		value *= target.SParam(trait.PDR)
	}
	if a.IsMagical() {
		value *= target.SParam(trait.MDR)
	}
	if base < 0 {
		value *= target.SParam(trait.REC)
	}
	if critical {
		value *= 3
	}
	value = s.roller.Variance(value, sk.Damage.Variance)
	if value > 0 && target.IsGuard() {
		value /= 2 * target.SParam(trait.GRD)
	}
	return int(math.Floor(value + 0.5))
}

// evalFormula returns the non-negative formula value, negated for recovery.
// A formula that fails to evaluate counts as 0.
func (s *Standard) evalFormula(a *battler.Action, target *battler.Combatant) float64 {
	sk := a.Skill()
	v, err := s.formulas.Eval(sk.Damage.Formula, operand(a.Subject()), operand(target))
	if err != nil {
		s.logger.Warn("damage formula failed", zap.Int("skill", sk.ID), zap.Error(err))
		return 0
	}
	v = math.Max(v, 0)
	if sk.IsRecover() {
		v = -v
	}
	return v
}

func (s *Standard) elementRate(a *battler.Action, target *battler.Combatant) float64 {
	id := a.Skill().Damage.ElementID
	if id != skill.ElementNormalAttack {
		return target.ElementRate(id)
	}
	elements := a.Subject().AttackElements()
	if len(elements) == 0 {
		return 1
	}
	rate := math.Inf(-1)
	for _, e := range elements {
		rate = math.Max(rate, target.ElementRate(e))
	}
	return rate
}

func (s *Standard) executeDamage(a *battler.Action, target *battler.Combatant, value int) {
	r := target.Result()
	if value == 0 {
		r.Critical = false
	}
	switch a.Skill().Damage.Type {
	case skill.DamageHP, skill.RecoverHP, skill.DrainHP:
		s.executeHPDamage(a, target, value)
	case skill.DamageMP, skill.RecoverMP, skill.DrainMP:
		s.executeMPDamage(a, target, value)
	}
}

func (s *Standard) executeHPDamage(a *battler.Action, target *battler.Combatant, value int) {
	drain := a.Skill().IsDrain()
	if drain {
		value = min(target.HP(), value)
	}
	target.Result().Success = true
	target.GainHP(-value)
	if value > 0 {
		target.OnDamage(value)
	}
	if drain {
		a.Subject().GainHP(value)
	}
}

func (s *Standard) executeMPDamage(a *battler.Action, target *battler.Combatant, value int) {
	if a.Skill().Damage.Type != skill.RecoverMP {
		value = min(target.MP(), value)
	}
	if value != 0 {
		target.Result().Success = true
	}
	target.GainMP(-value)
	if a.Skill().IsDrain() {
		a.Subject().GainMP(value)
	}
}

func (s *Standard) applyEffect(a *battler.Action, target *battler.Combatant, e skill.Effect) {
	r := target.Result()
	switch e.Code {
	case skill.EffectRecoverHP:
		v := int(math.Floor((float64(target.MHP())*e.Value1 + e.Value2) * target.SParam(trait.REC)))
		if v != 0 {
			target.GainHP(v)
			r.Success = true
		}
	case skill.EffectRecoverMP:
		v := int(math.Floor((float64(target.MMP())*e.Value1 + e.Value2) * target.SParam(trait.REC)))
		if v != 0 {
			target.GainMP(v)
			r.Success = true
		}
	case skill.EffectGainTP:
		if v := int(math.Floor(e.Value1)); v != 0 {
			target.GainTP(v)
			r.Success = true
		}
	case skill.EffectAddState:
		if e.DataID == 0 {
			s.addAttackStates(a, target, e)
		} else {
			s.addState(a, target, e)
		}
	case skill.EffectRemoveState:
		if s.roller.Chance("remove state", e.Value1) {
			target.RemoveState(e.DataID)
			r.Success = true
		}
	case skill.EffectAddBuff:
		target.AddBuff(trait.Param(e.DataID), int(e.Value1))
		r.Success = true
	case skill.EffectAddDebuff:
		p := trait.Param(e.DataID)
		if s.roller.Chance("debuff "+p.String(), target.DebuffRate(p)*lukEffectRate(a.Subject(), target)) {
			target.AddDebuff(p, int(e.Value1))
			r.Success = true
		}
	case skill.EffectRemoveBuff:
		if p := trait.Param(e.DataID); target.BuffLevel(p) > 0 {
			target.RemoveBuff(p)
			r.Success = true
		}
	case skill.EffectRemoveDebuff:
		if p := trait.Param(e.DataID); target.BuffLevel(p) < 0 {
			target.RemoveBuff(p)
			r.Success = true
		}
	}
}

// addAttackStates applies the user's attack-state traits, each scaled by the
// effect chance, the target's state rate, and the luck ratio.
func (s *Standard) addAttackStates(a *battler.Action, target *battler.Combatant, e skill.Effect) {
	subject := a.Subject()
	for _, id := range subject.AttackStates() {
		chance := e.Value1 * target.StateRate(id) * subject.AttackStatesRate(id) * lukEffectRate(subject, target)
		if s.roller.Chance("attack state", chance) {
			target.AddState(id)
			target.Result().Success = true
		}
	}
}

func (s *Standard) addState(a *battler.Action, target *battler.Combatant, e skill.Effect) {
	chance := e.Value1
	if !a.IsCertainHit() {
		chance *= target.StateRate(e.DataID) * lukEffectRate(a.Subject(), target)
	}
	if s.roller.Chance("add state", chance) {
		target.AddState(e.DataID)
		target.Result().Success = true
	}
}

func lukEffectRate(subject, target *battler.Combatant) float64 {
	return math.Max(1+float64(subject.LUK()-target.LUK())*0.001, 0)
}

func operand(c *battler.Combatant) scripting.Operand {
	return scripting.Operand{
		"atk":   float64(c.ATK()),
		"def":   float64(c.DEF()),
		"mat":   float64(c.MAT()),
		"mdf":   float64(c.MDF()),
		"agi":   float64(c.AGI()),
		"luk":   float64(c.LUK()),
		"mhp":   float64(c.MHP()),
		"mmp":   float64(c.MMP()),
		"hp":    float64(c.HP()),
		"mp":    float64(c.MP()),
		"tp":    float64(c.TP()),
		"level": float64(c.Level()),
	}
}
