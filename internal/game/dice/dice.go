// Package dice draws the random numbers a battle depends on. Every draw goes
// through a Roller, which labels and logs it so a battle can be audited draw
// by draw from the debug log.
package dice

import (
	"fmt"
	"strings"
)

// Source is the randomness provider behind a Roller.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a uniform int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Result is one evaluated dice expression.
//
// Invariant: Total == sum(Faces) + Expr.Modifier.
type Result struct {
	Expr  Expression
	Faces []int
	Total int
}

// String formats r for battle logs, e.g. "2d6+3 [4+5] = 12".
func (r Result) String() string {
	faces := make([]string, len(r.Faces))
	for i, f := range r.Faces {
		faces[i] = fmt.Sprint(f)
	}
	return fmt.Sprintf("%s [%s] = %d", r.Expr.Raw, strings.Join(faces, "+"), r.Total)
}
