package dice

import (
	"math"

	"go.uber.org/zap"
)

// chanceScale is the resolution of probability draws.
const chanceScale = 1_000_000

// Roller wraps a Source and a logger. Every draw is logged at debug level with
// the label the caller gives it, so a battle can be audited draw by draw.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced with a no-op logger.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil {
		panic("dice: NewLoggedRoller requires a non-nil Source")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Intn returns a uniform int in [0, n). n <= 0 yields 0 without a draw.
func (r *Roller) Intn(label string, n int) int {
	if n <= 0 {
		return 0
	}
	v := r.src.Intn(n)
	r.logger.Debug("draw", zap.String("label", label), zap.Int("n", n), zap.Int("value", v))
	return v
}

// Range returns a uniform int in [lo, lo+max(hi-lo, 0)].
func (r *Roller) Range(label string, lo, hi int) int {
	span := hi - lo
	if span < 0 {
		span = 0
	}
	return lo + r.Intn(label, span+1)
}

// Chance reports whether a draw falls under probability p.
//
// Postcondition: Exactly one draw is consumed. p <= 0 is always false and p >= 1 is always true.
func (r *Roller) Chance(label string, p float64) bool {
	v := r.src.Intn(chanceScale)
	threshold := int(math.Round(p * chanceScale))
	ok := v < threshold
	r.logger.Debug("chance",
		zap.String("label", label),
		zap.Float64("p", p),
		zap.Bool("success", ok),
	)
	return ok
}

// Float64 returns a uniform value in [0, 1) at chance resolution.
func (r *Roller) Float64(label string) float64 {
	v := r.src.Intn(chanceScale)
	r.logger.Debug("draw", zap.String("label", label), zap.Int("n", chanceScale), zap.Int("value", v))
	return float64(v) / chanceScale
}

// Variance spreads damage by up to variance percent in either direction.
// The spread is the sum of two uniform draws so values near the base are likelier.
//
// Postcondition: |result - damage| <= floor(|damage| * variance / 100).
func (r *Roller) Variance(damage float64, variance int) float64 {
	amp := int(math.Floor(math.Max(math.Abs(damage)*float64(variance)/100, 0)))
	v := r.Intn("variance", amp+1) + r.Intn("variance", amp+1) - amp
	if damage >= 0 {
		return damage + float64(v)
	}
	return damage - float64(v)
}

// Roll evaluates a dice expression such as "2d6+3" for a script.
func (r *Roller) Roll(expr string) (Result, error) {
	e, err := Parse(expr)
	if err != nil {
		return Result{}, err
	}
	res := Result{Expr: e, Faces: make([]int, e.Count), Total: e.Modifier}
	for i := range res.Faces {
		res.Faces[i] = r.src.Intn(e.Sides) + 1
		res.Total += res.Faces[i]
	}
	r.logger.Debug("roll", zap.Stringer("result", res))
	return res, nil
}
