package trait

import "fmt"

// Reduction is how the values of all traits sharing a code fold into one number.
// The zero value is invalid.
type Reduction int

const (
	_ Reduction = iota
	// ReduceProduct multiplies values; the empty product is 1.
	ReduceProduct
	// ReduceSum adds values; the empty sum is 0.
	ReduceSum
	// ReduceMax takes the largest data id; the empty max is 0.
	ReduceMax
	// ReduceSet only answers membership of data ids.
	ReduceSet
	// ReduceEach keeps every value as an independent chance.
	ReduceEach
)

func (r Reduction) String() string {
	switch r {
	case ReduceProduct:
		return "product"
	case ReduceSum:
		return "sum"
	case ReduceMax:
		return "max"
	case ReduceSet:
		return "set"
	case ReduceEach:
		return "each"
	default:
		return "invalid"
	}
}

var reductions = map[Code]Reduction{
	CodeElementRate:   ReduceProduct,
	CodeDebuffRate:    ReduceProduct,
	CodeStateRate:     ReduceProduct,
	CodeStateResist:   ReduceSet,
	CodeParam:         ReduceProduct,
	CodeXParam:        ReduceSum,
	CodeSParam:        ReduceProduct,
	CodeAttackElement: ReduceSet,
	CodeAttackState:   ReduceSum,
	CodeAttackSpeed:   ReduceSum,
	CodeAttackTimes:   ReduceSum,
	CodeSkillTypeAdd:  ReduceSet,
	CodeSkillTypeSeal: ReduceSet,
	CodeSkillAdd:      ReduceSet,
	CodeSkillSeal:     ReduceSet,
	CodeEquipWeapon:   ReduceSet,
	CodeEquipArmor:    ReduceSet,
	CodeEquipLock:     ReduceSet,
	CodeEquipSeal:     ReduceSet,
	CodeSlotType:      ReduceMax,
	CodeActionPlus:    ReduceEach,
	CodeSpecialFlag:   ReduceSet,
	CodeCollapseType:  ReduceMax,
	CodePartyAbility:  ReduceSet,
}

// ReductionFor returns the static reduction of code.
//
// Precondition: code is one of the declared Code constants; panics otherwise.
func ReductionFor(code Code) Reduction {
	r, ok := reductions[code]
	if !ok {
		panic(fmt.Sprintf("trait: no reduction declared for %s", code))
	}
	return r
}

func mustReduce(code Code, want Reduction) {
	if got := ReductionFor(code); got != want {
		panic(fmt.Sprintf("trait: %s folds by %s, not %s", code, got, want))
	}
}

// Fold reduces the values of traits matching (code, id) using the code's
// declared reduction, which must be ReduceProduct or ReduceSum.
//
// Postcondition: Returns 1 for an empty product and 0 for an empty sum.
func Fold(ts []Trait, code Code, id int) float64 {
	switch r := ReductionFor(code); r {
	case ReduceProduct:
		v := 1.0
		for _, t := range ts {
			if t.Code == code && t.DataID == id {
				v *= t.Value
			}
		}
		return v
	case ReduceSum:
		v := 0.0
		for _, t := range ts {
			if t.Code == code && t.DataID == id {
				v += t.Value
			}
		}
		return v
	default:
		panic(fmt.Sprintf("trait: Fold called on %s which folds by %s", code, r))
	}
}

// SumAll adds the values of every trait with code, across all data ids.
//
// Precondition: code folds by ReduceSum.
func SumAll(ts []Trait, code Code) float64 {
	mustReduce(code, ReduceSum)
	v := 0.0
	for _, t := range ts {
		if t.Code == code {
			v += t.Value
		}
	}
	return v
}

// MaxID returns the largest data id among traits with code, or 0 when none match.
//
// Precondition: code folds by ReduceMax.
func MaxID(ts []Trait, code Code) int {
	mustReduce(code, ReduceMax)
	best := 0
	for _, t := range ts {
		if t.Code == code && t.DataID > best {
			best = t.DataID
		}
	}
	return best
}

// Values returns the value of every trait with code, in order.
//
// Precondition: code folds by ReduceEach.
func Values(ts []Trait, code Code) []float64 {
	mustReduce(code, ReduceEach)
	var vs []float64
	for _, t := range ts {
		if t.Code == code {
			vs = append(vs, t.Value)
		}
	}
	return vs
}
