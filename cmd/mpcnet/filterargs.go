package main

import (
	"fmt"
	"strings"

	"github.com/difegue/mpcnet/internal/filter"
)

// tagExpression builds an AND expression from alternating tag and value
// terms, comparing each with op.
func tagExpression(op filter.Operator, terms []string) (filter.Expression, error) {
	if len(terms) == 0 || len(terms)%2 != 0 {
		return filter.Expression{}, fmt.Errorf("expected tag/value pairs, got %d terms", len(terms))
	}
	preds := make([]filter.Predicate, 0, len(terms)/2)
	for i := 0; i < len(terms); i += 2 {
		tag, err := filter.ParseTag(terms[i])
		if err != nil {
			return filter.Expression{}, err
		}
		p, err := filter.NewTag(tag, op, terms[i+1])
		if err != nil {
			return filter.Expression{}, err
		}
		preds = append(preds, p)
	}
	return filter.And(preds...)
}

// parseWhere parses terms of the form "[not] key [op] value", optionally
// separated by "and". The key is a tag name or one of file, base,
// modified-since and AudioFormat. Without an explicit operator, base and
// modified-since take none and everything else takes ==.
func parseWhere(terms []string) (filter.Expression, error) {
	var preds []filter.Predicate
	for i := 0; i < len(terms); {
		if strings.EqualFold(terms[i], "and") {
			i++
			continue
		}

		negate := false
		if strings.EqualFold(terms[i], "not") || terms[i] == "!" {
			negate = true
			i++
		}
		if i >= len(terms) {
			return filter.Expression{}, fmt.Errorf("dangling %q", terms[i-1])
		}

		key := terms[i]
		i++
		op, explicit := filter.None, false
		if i+1 < len(terms) && isOperatorToken(terms[i]) {
			op, _ = filter.ParseOperator(terms[i])
			explicit = true
			i++
		}
		if i >= len(terms) {
			return filter.Expression{}, fmt.Errorf("%s: missing value", key)
		}
		value := terms[i]
		i++

		p, err := wherePredicate(key, op, explicit, value)
		if err != nil {
			return filter.Expression{}, err
		}
		if negate {
			p = p.Not()
		}
		preds = append(preds, p)
	}
	return filter.And(preds...)
}

func isOperatorToken(s string) bool {
	switch strings.ToLower(s) {
	case "==", "!=", "contains", "=~", "none":
		return true
	}
	return false
}

func wherePredicate(key string, op filter.Operator, explicit bool, value string) (filter.Predicate, error) {
	orDefault := func(def filter.Operator) filter.Operator {
		if explicit {
			return op
		}
		return def
	}

	switch strings.ToLower(key) {
	case "file":
		return filter.NewFile(orDefault(filter.Equal), value)
	case "base":
		return filter.NewBase(orDefault(filter.None), value)
	case "modified-since":
		return filter.NewModifiedSince(orDefault(filter.None), value)
	case "audioformat":
		return filter.NewAudioFormat(orDefault(filter.Equal), value)
	}

	tag, err := filter.ParseTag(key)
	if err != nil {
		return filter.Predicate{}, err
	}
	return filter.NewTag(tag, orDefault(filter.Equal), value)
}
