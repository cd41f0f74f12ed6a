package filter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyExpression indicates an expression without predicates.
var ErrEmptyExpression = errors.New("filter expression has no predicates")

// ValidationError indicates a predicate that the daemon would reject.
type ValidationError struct {
	Kind     Kind
	Operator Operator
	Allowed  []Operator
}

func (e *ValidationError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, op := range e.Allowed {
		allowed[i] = op.String()
	}
	return fmt.Sprintf("operator %s is not compatible with %s filter: use %s",
		e.Operator, e.Kind, strings.Join(allowed, " or "))
}

// IsValidationError reports whether err is a predicate validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrEmptyExpression)
}
