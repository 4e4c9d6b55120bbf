package presentation

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cory-johannsen/battlecore/internal/game/battler"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/trait"
)

// TextRenderer writes a battle log, one line per noteworthy event. It never
// reports busy, so the scheduler runs without waiting on it.
type TextRenderer struct {
	mu      sync.Mutex
	w       io.Writer
	palette Palette
	conds   *condition.Registry
}

// NewTextRenderer returns a renderer writing to w. conds resolves condition
// names and may be nil, in which case conditions are shown by id.
//
// Precondition: w must be non-nil.
func NewTextRenderer(w io.Writer, color bool, conds *condition.Registry) *TextRenderer {
	if w == nil {
		panic("presentation: NewTextRenderer requires a writer")
	}
	return &TextRenderer{w: w, palette: Palette{Enabled: color}, conds: conds}
}

// Busy implements combat.Bridge.
func (r *TextRenderer) Busy() bool { return false }

// Emit implements combat.Bridge.
func (r *TextRenderer) Emit(e combat.Event) {
	line := r.Render(e)
	if line == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.w, line+"\n")
}

// Render formats e as one or more log lines without a trailing newline.
//
// Postcondition: Returns "" for events that have nothing to show.
func (r *TextRenderer) Render(e combat.Event) string {
	p := r.palette
	switch ev := e.(type) {
	case combat.BattleStarted:
		return p.Colorf(Bold, "%s  vs  %s", names(ev.Party), names(ev.Troop))
	case combat.Emerged:
		return fmt.Sprintf("%s emerges!", ev.Name)
	case combat.Preemptive:
		return p.Colorf(BrightGreen, "%s got the upper hand!", ev.Party)
	case combat.Surprised:
		return p.Colorf(BrightRed, "%s is surprised!", ev.Party)
	case combat.TurnStarted:
		return p.Colorf(BrightYellow, "== Turn %d ==", ev.Turn)
	case combat.ActionStarted:
		return r.actionStarted(ev)
	case combat.Countered:
		return p.Colorf(Yellow, "%s counterattacks %s!", ev.Counter.Name(), ev.Subject.Name())
	case combat.Reflected:
		return p.Colorf(Magenta, "%s reflects the spell!", ev.Reflector.Name())
	case combat.Substituted:
		return p.Colorf(Cyan, "%s protects %s!", ev.Substitute.Name(), ev.Target.Name())
	case combat.ActionResulted:
		return r.result(ev.Subject, ev.Target, ev.Result)
	case combat.NoEffect:
		return p.Colorf(Dim, "  There was no effect on %s.", ev.Target.Name())
	case combat.Collapsed:
		return p.Colorf(Red, "  %s is defeated!", ev.Target.Name())
	case combat.StatesExpired:
		return r.expired(ev)
	case combat.Regenerated:
		return regenerated(p, ev)
	case combat.EscapeAttempted:
		if ev.Success {
			return p.Colorize(Cyan, "The party escaped!")
		}
		return p.Colorize(Cyan, "Couldn't escape!")
	case combat.Victory:
		return victory(p, ev.Reward)
	case combat.Defeat:
		return p.Colorize(BrightRed, "The party has fallen.")
	case combat.Message:
		return p.Colorize(BrightWhite, ev.Text)
	case combat.BattleEnded:
		return p.Colorf(Bold, "Battle over: %s (%s)", ev.Result, ev.Outcome)
	default:
		return ""
	}
}

func names(cs []*battler.Combatant) string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name()
	}
	return strings.Join(out, ", ")
}

func (r *TextRenderer) actionStarted(ev combat.ActionStarted) string {
	line := fmt.Sprintf("%s uses %s", ev.Subject.Name(), ev.Skill.Name)
	if len(ev.Targets) > 0 {
		line += " on " + names(ev.Targets)
	}
	line += "."
	if ev.Forced {
		return r.palette.Colorize(Magenta, line)
	}
	return line
}

func (r *TextRenderer) result(subject, target *battler.Combatant, res battler.ActionResult) string {
	p := r.palette
	name := target.Name()
	switch {
	case res.Missed:
		return p.Colorf(Dim, "  Miss! %s takes no damage.", name)
	case res.Evaded:
		return p.Colorf(Dim, "  %s evaded the attack!", name)
	}
	var lines []string
	if res.Critical {
		lines = append(lines, p.Colorize(BrightYellow, "  A critical hit!"))
	}
	if res.HPAffected {
		switch {
		case res.HPDamage > 0 && res.Drain:
			lines = append(lines, p.Colorf(Red, "  %s drains %d HP from %s.", subject.Name(), res.HPDamage, name))
		case res.HPDamage > 0:
			lines = append(lines, p.Colorf(Red, "  %s takes %d damage.", name, res.HPDamage))
		case res.HPDamage < 0:
			lines = append(lines, p.Colorf(Green, "  %s recovers %d HP.", name, -res.HPDamage))
		default:
			lines = append(lines, fmt.Sprintf("  %s takes no damage.", name))
		}
	}
	switch {
	case res.MPDamage > 0 && res.Drain:
		lines = append(lines, p.Colorf(Blue, "  %s drains %d MP from %s.", subject.Name(), res.MPDamage, name))
	case res.MPDamage > 0:
		lines = append(lines, p.Colorf(Blue, "  %s loses %d MP.", name, res.MPDamage))
	case res.MPDamage < 0:
		lines = append(lines, p.Colorf(Blue, "  %s recovers %d MP.", name, -res.MPDamage))
	}
	switch {
	case res.TPDamage > 0:
		lines = append(lines, fmt.Sprintf("  %s loses %d TP.", name, res.TPDamage))
	case res.TPDamage < 0:
		lines = append(lines, fmt.Sprintf("  %s gains %d TP.", name, -res.TPDamage))
	}
	for _, id := range res.AddedStates {
		lines = append(lines, p.Colorf(Magenta, "  %s is afflicted with %s.", name, r.conditionName(id)))
	}
	for _, id := range res.RemovedStates {
		lines = append(lines, fmt.Sprintf("  %s is no longer %s.", name, r.conditionName(id)))
	}
	lines = appendBuffs(lines, name, "rises", res.AddedBuffs)
	lines = appendBuffs(lines, name, "falls", res.AddedDebuffs)
	lines = appendBuffs(lines, name, "returns to normal", res.RemovedBuffs)
	return strings.Join(lines, "\n")
}

func appendBuffs(lines []string, name, verb string, params []trait.Param) []string {
	for _, prm := range params {
		lines = append(lines, fmt.Sprintf("  %s's %s %s.", name, strings.ToUpper(prm.String()), verb))
	}
	return lines
}

func (r *TextRenderer) expired(ev combat.StatesExpired) string {
	name := ev.Member.Name()
	var lines []string
	for _, id := range ev.RemovedStates {
		lines = append(lines, fmt.Sprintf("%s recovers from %s.", name, r.conditionName(id)))
	}
	lines = appendBuffs(lines, name, "returns to normal", ev.RemovedBuffs)
	return strings.Join(lines, "\n")
}

func regenerated(p Palette, ev combat.Regenerated) string {
	name := ev.Member.Name()
	var lines []string
	switch {
	case ev.Regen.HP < 0:
		lines = append(lines, p.Colorf(Red, "%s takes %d damage.", name, -ev.Regen.HP))
	case ev.Regen.HP > 0:
		lines = append(lines, p.Colorf(Green, "%s regenerates %d HP.", name, ev.Regen.HP))
	}
	switch {
	case ev.Regen.MP < 0:
		lines = append(lines, p.Colorf(Blue, "%s loses %d MP.", name, -ev.Regen.MP))
	case ev.Regen.MP > 0:
		lines = append(lines, p.Colorf(Blue, "%s regenerates %d MP.", name, ev.Regen.MP))
	}
	return strings.Join(lines, "\n")
}

func victory(p Palette, rw combat.Reward) string {
	line := p.Colorf(BrightGreen, "Victory! Gained %d EXP and %d gold.", rw.Exp, rw.Gold)
	if len(rw.Items) > 0 {
		items := make([]string, len(rw.Items))
		for i, id := range rw.Items {
			items[i] = fmt.Sprintf("#%d", id)
		}
		line += "\n" + fmt.Sprintf("Found items %s.", strings.Join(items, ", "))
	}
	return line
}

func (r *TextRenderer) conditionName(id int) string {
	if r.conds != nil {
		if def, ok := r.conds.Get(id); ok {
			return def.Name
		}
	}
	return fmt.Sprintf("condition %d", id)
}
