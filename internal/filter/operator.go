package filter

import (
	"fmt"
	"strings"
)

// Operator is a comparison operator of a filter predicate.
type Operator int

const (
	// Equal matches values exactly (==).
	Equal Operator = iota
	// Different matches values that differ (!=).
	Different
	// Contains matches values containing a substring (contains).
	Contains
	// Mask matches values against a pattern (=~).
	Mask
	// None renders no operator segment at all.
	None
)

var operatorTokens = map[Operator]string{
	Equal:     "==",
	Different: "!=",
	Contains:  "contains",
	Mask:      "=~",
	None:      "",
}

// Token returns the protocol token of the operator.
func (o Operator) Token() string {
	return operatorTokens[o]
}

// String returns a readable name, used in error messages.
func (o Operator) String() string {
	switch o {
	case Equal:
		return "=="
	case Different:
		return "!="
	case Contains:
		return "contains"
	case Mask:
		return "=~"
	case None:
		return "none"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// ParseOperator maps a token (or the word "none") back to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "==", "eq":
		return Equal, nil
	case "!=", "ne":
		return Different, nil
	case "contains":
		return Contains, nil
	case "=~", "mask":
		return Mask, nil
	case "", "none":
		return None, nil
	default:
		return None, fmt.Errorf("unknown operator %q", s)
	}
}
