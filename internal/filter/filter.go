// Package filter builds the boolean filter expressions accepted by the
// find, search and list family of commands.
//
// Predicates are validated when they are constructed, so an Expression can
// always be compiled into a string the daemon accepts.
package filter

import (
	"slices"
	"strings"
)

// Kind identifies the predicate variant.
type Kind int

const (
	// KindTag compares a song tag.
	KindTag Kind = iota
	// KindFile compares the song URI.
	KindFile
	// KindBase restricts the search to a directory.
	KindBase
	// KindModifiedSince matches songs modified after a timestamp.
	KindModifiedSince
	// KindAudioFormat compares the decoded audio format.
	KindAudioFormat
)

func (k Kind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindFile:
		return "file"
	case KindBase:
		return "base"
	case KindModifiedSince:
		return "modified-since"
	case KindAudioFormat:
		return "AudioFormat"
	default:
		return "unknown"
	}
}

// allowedOperators lists, per kind, the operators the daemon understands.
var allowedOperators = map[Kind][]Operator{
	KindTag:           {Equal, Different, Contains},
	KindFile:          {Equal},
	KindBase:          {None},
	KindModifiedSince: {None},
	KindAudioFormat:   {Equal, Mask},
}

// AllowedOperators returns the operators accepted by the given kind.
func AllowedOperators(k Kind) []Operator {
	return slices.Clone(allowedOperators[k])
}

// Predicate is a single validated comparison.
// The zero value is not valid; use one of the constructors.
type Predicate struct {
	kind    Kind
	name    string
	op      Operator
	value   string
	negated bool
}

func newPredicate(kind Kind, name string, op Operator, value string) (Predicate, error) {
	if !slices.Contains(allowedOperators[kind], op) {
		return Predicate{}, &ValidationError{
			Kind:     kind,
			Operator: op,
			Allowed:  AllowedOperators(kind),
		}
	}
	return Predicate{kind: kind, name: name, op: op, value: value}, nil
}

// NewTag compares the given tag. Accepts Equal, Different or Contains.
func NewTag(tag Tag, op Operator, value string) (Predicate, error) {
	return newPredicate(KindTag, string(tag), op, value)
}

// NewFile compares the song URI. Accepts Equal.
func NewFile(op Operator, value string) (Predicate, error) {
	return newPredicate(KindFile, "file", op, value)
}

// NewBase restricts matches to a directory. Accepts None.
func NewBase(op Operator, dir string) (Predicate, error) {
	return newPredicate(KindBase, "base", op, dir)
}

// NewModifiedSince matches songs modified after the given time, expressed
// as a UNIX timestamp or ISO 8601 string. Accepts None.
func NewModifiedSince(op Operator, since string) (Predicate, error) {
	return newPredicate(KindModifiedSince, "modified-since", op, since)
}

// NewAudioFormat compares the audio format ("44100:16:2", or a mask such as
// "*:24:*"). Accepts Equal or Mask.
func NewAudioFormat(op Operator, format string) (Predicate, error) {
	return newPredicate(KindAudioFormat, "AudioFormat", op, format)
}

// Not returns a copy of the predicate with its negation flipped.
func (p Predicate) Not() Predicate {
	p.negated = !p.negated
	return p
}

// Kind returns the predicate variant.
func (p Predicate) Kind() Kind { return p.kind }

// Name returns the left-hand side of the comparison.
func (p Predicate) Name() string { return p.name }

// Operator returns the comparison operator.
func (p Predicate) Operator() Operator { return p.op }

// Value returns the unescaped right-hand side.
func (p Predicate) Value() string { return p.value }

// Negated reports whether the predicate is wrapped in a negation.
func (p Predicate) Negated() bool { return p.negated }

// String renders the predicate, escaped for embedding in a request line.
func (p Predicate) String() string {
	var sb strings.Builder
	if p.negated {
		sb.WriteString("(!")
	}
	sb.WriteString("(")
	sb.WriteString(p.name)
	sb.WriteString(" ")
	if tok := p.op.Token(); tok != "" {
		sb.WriteString(tok)
		sb.WriteString(" ")
	}
	sb.WriteString(Escape(p.value))
	sb.WriteString(")")
	if p.negated {
		sb.WriteString(")")
	}
	return sb.String()
}

// Expression is a non-empty conjunction of predicates.
type Expression struct {
	predicates []Predicate
}

// And combines predicates with a logical AND, preserving their order.
func And(predicates ...Predicate) (Expression, error) {
	if len(predicates) == 0 {
		return Expression{}, ErrEmptyExpression
	}
	return Expression{predicates: slices.Clone(predicates)}, nil
}

// Predicates returns the predicates of the expression.
func (e Expression) Predicates() []Predicate {
	return slices.Clone(e.predicates)
}

// IsEmpty reports whether the expression has no predicates.
func (e Expression) IsEmpty() bool {
	return len(e.predicates) == 0
}

// Compile renders the expression as one parenthesized string, ready to be
// wrapped in double quotes as a command argument. The zero Expression fails
// with ErrEmptyExpression.
func Compile(e Expression) (string, error) {
	if e.IsEmpty() {
		return "", ErrEmptyExpression
	}
	parts := make([]string, len(e.predicates))
	for i, p := range e.predicates {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, " AND ") + ")", nil
}

// escaper doubles the expression-level escapes so that they survive the
// protocol's own string unescaping.
var escaper = strings.NewReplacer(
	`\`, `\\\\`,
	`'`, `\\'`,
	`"`, `\\\"`,
)

// Escape quotes a literal value for use inside a filter expression that is
// itself carried in a double-quoted protocol argument.
func Escape(value string) string {
	return `\"` + escaper.Replace(value) + `\"`
}
