// Package trait defines the (code, data id, value) modifiers that active
// conditions and combatant templates contribute, and the static table that
// decides how each code folds into a derived value.
package trait

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Code identifies what a trait modifies.
type Code int

const (
	CodeElementRate   Code = 11
	CodeDebuffRate    Code = 12
	CodeStateRate     Code = 13
	CodeStateResist   Code = 14
	CodeParam         Code = 21
	CodeXParam        Code = 22
	CodeSParam        Code = 23
	CodeAttackElement Code = 31
	CodeAttackState   Code = 32
	CodeAttackSpeed   Code = 33
	CodeAttackTimes   Code = 34
	CodeSkillTypeAdd  Code = 41
	CodeSkillTypeSeal Code = 42
	CodeSkillAdd      Code = 43
	CodeSkillSeal     Code = 44
	CodeEquipWeapon   Code = 51
	CodeEquipArmor    Code = 52
	CodeEquipLock     Code = 53
	CodeEquipSeal     Code = 54
	CodeSlotType      Code = 55
	CodeActionPlus    Code = 61
	CodeSpecialFlag   Code = 62
	CodeCollapseType  Code = 63
	CodePartyAbility  Code = 64
)

var codeNames = map[Code]string{
	CodeElementRate:   "element_rate",
	CodeDebuffRate:    "debuff_rate",
	CodeStateRate:     "state_rate",
	CodeStateResist:   "state_resist",
	CodeParam:         "param",
	CodeXParam:        "xparam",
	CodeSParam:        "sparam",
	CodeAttackElement: "attack_element",
	CodeAttackState:   "attack_state",
	CodeAttackSpeed:   "attack_speed",
	CodeAttackTimes:   "attack_times",
	CodeSkillTypeAdd:  "skill_type_add",
	CodeSkillTypeSeal: "skill_type_seal",
	CodeSkillAdd:      "skill_add",
	CodeSkillSeal:     "skill_seal",
	CodeEquipWeapon:   "equip_weapon",
	CodeEquipArmor:    "equip_armor",
	CodeEquipLock:     "equip_lock",
	CodeEquipSeal:     "equip_seal",
	CodeSlotType:      "slot_type",
	CodeActionPlus:    "action_plus",
	CodeSpecialFlag:   "special_flag",
	CodeCollapseType:  "collapse_type",
	CodePartyAbility:  "party_ability",
}

// String returns the YAML name of the code.
func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "code(" + strconv.Itoa(int(c)) + ")"
}

// ParseCode resolves a YAML name to a Code.
func ParseCode(s string) (Code, error) {
	for c, n := range codeNames {
		if n == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("trait: unknown code %q", s)
}

// UnmarshalYAML accepts either the code name or its number.
func (c *Code) UnmarshalYAML(node *yaml.Node) error {
	if n, err := strconv.Atoi(node.Value); err == nil {
		code := Code(n)
		if _, ok := codeNames[code]; !ok {
			return fmt.Errorf("trait: unknown code %d at line %d", n, node.Line)
		}
		*c = code
		return nil
	}
	code, err := ParseCode(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = code
	return nil
}

// Trait is one modifier. DataID selects the sub-target (element id, state id,
// parameter id, flag id); Value carries the rate, bonus, or chance.
type Trait struct {
	Code   Code    `yaml:"code"`
	DataID int     `yaml:"data_id"`
	Value  float64 `yaml:"value"`
}

// Param indexes the eight core parameters.
type Param int

const (
	MHP Param = iota
	MMP
	ATK
	DEF
	MAT
	MDF
	AGI
	LUK
	// ParamCount is the number of core parameters.
	ParamCount = 8
)

var paramNames = [ParamCount]string{"mhp", "mmp", "atk", "def", "mat", "mdf", "agi", "luk"}

func (p Param) String() string {
	if p < 0 || int(p) >= ParamCount {
		return "param(" + strconv.Itoa(int(p)) + ")"
	}
	return paramNames[p]
}

// XParam indexes the additive auxiliary rates.
type XParam int

const (
	HIT XParam = iota // hit rate
	EVA               // evasion rate
	CRI               // critical rate
	CEV               // critical evasion rate
	MEV               // magic evasion rate
	MRF               // magic reflection rate
	CNT               // counter attack rate
	HRG               // hp regeneration rate
	MRG               // mp regeneration rate
	TRG               // tp regeneration rate
)

// SParam indexes the multiplicative auxiliary rates.
type SParam int

const (
	TGR SParam = iota // target rate
	GRD               // guard effect rate
	REC               // recovery effect rate
	PHA               // pharmacology
	MCR               // mp cost rate
	TCR               // tp charge rate
	PDR               // physical damage rate
	MDR               // magical damage rate
	FDR               // floor damage rate
	EXR               // experience rate
)

// Special flag data ids.
const (
	FlagAutoBattle = iota
	FlagGuard
	FlagSubstitute
	FlagPreserveTP
)

// Party ability data ids.
const (
	AbilityEncounterHalf = iota
	AbilityEncounterNone
	AbilityCancelSurprise
	AbilityRaisePreemptive
	AbilityGoldDouble
	AbilityDropItemDouble
)

// Collapse effect data ids.
const (
	CollapseNormal = iota
	CollapseBoss
	CollapseInstant
	CollapseNone
)

// Set returns the sorted distinct data ids of every trait with the given code.
// Every code supports this existence query regardless of its value reduction.
func Set(ts []Trait, code Code) []int {
	ReductionFor(code)
	seen := make(map[int]struct{})
	var ids []int
	for _, t := range ts {
		if t.Code != code {
			continue
		}
		if _, ok := seen[t.DataID]; ok {
			continue
		}
		seen[t.DataID] = struct{}{}
		ids = append(ids, t.DataID)
	}
	sort.Ints(ids)
	return ids
}

// Has reports whether any trait with the given code carries id.
func Has(ts []Trait, code Code, id int) bool {
	ReductionFor(code)
	for _, t := range ts {
		if t.Code == code && t.DataID == id {
			return true
		}
	}
	return false
}
