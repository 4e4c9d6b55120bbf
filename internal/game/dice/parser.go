package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed "NdS+M" dice expression.
//
// Invariant: Count >= 1 and Sides >= 2 after a successful Parse.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Parse parses forms such as "d20", "2d6" and "4d8-2".
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	e := Expression{Raw: expr, Count: 1}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", expr)
		}
		e.Count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die size in %q", expr)
	}
	e.Sides = sides
	if m[3] != "" {
		mod, err := strconv.Atoi(m[3])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		e.Modifier = mod
	}
	return e, nil
}
