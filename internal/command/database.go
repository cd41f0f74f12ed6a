package command

import (
	"github.com/difegue/mpcnet/internal/filter"
	"github.com/difegue/mpcnet/internal/protocol"
)

// TagValue pairs a tag with a value for the shorthand query forms.
type TagValue struct {
	Tag   filter.Tag
	Value string
}

// filterArg renders a compiled expression as the command's quoted argument.
// The compiled string is already escaped for the protocol.
func filterArg(expr filter.Expression) (string, error) {
	compiled, err := filter.Compile(expr)
	if err != nil {
		return "", err
	}
	return `"` + compiled + `"`, nil
}

func filtered[T any](name string, decoder DecodeFunc[T], expr filter.Expression) (Descriptor[T], error) {
	arg, err := filterArg(expr)
	if err != nil {
		return Descriptor[T]{}, err
	}
	return New(name, decoder, arg), nil
}

func tagQuery(op filter.Operator, pairs []TagValue) (filter.Expression, error) {
	preds := make([]filter.Predicate, 0, len(pairs))
	for _, tv := range pairs {
		p, err := filter.NewTag(tv.Tag, op, tv.Value)
		if err != nil {
			return filter.Expression{}, err
		}
		preds = append(preds, p)
	}
	return filter.And(preds...)
}

// Find returns songs exactly matching the expression.
func Find(expr filter.Expression) (Descriptor[[]Record], error) {
	return filtered("find", Records("file"), expr)
}

// FindTags returns songs whose tags equal the given values.
func FindTags(pairs ...TagValue) (Descriptor[[]Record], error) {
	expr, err := tagQuery(filter.Equal, pairs)
	if err != nil {
		return Descriptor[[]Record]{}, err
	}
	return Find(expr)
}

// Search returns songs matching the expression, ignoring case.
func Search(expr filter.Expression) (Descriptor[[]Record], error) {
	return filtered("search", Records("file"), expr)
}

// SearchTags returns songs whose tags contain the given values.
func SearchTags(pairs ...TagValue) (Descriptor[[]Record], error) {
	expr, err := tagQuery(filter.Contains, pairs)
	if err != nil {
		return Descriptor[[]Record]{}, err
	}
	return Search(expr)
}

// FindAdd appends exact matches to the queue.
func FindAdd(expr filter.Expression) (Descriptor[struct{}], error) {
	return filtered("findadd", Ack, expr)
}

// SearchAdd appends case-insensitive matches to the queue.
func SearchAdd(expr filter.Expression) (Descriptor[struct{}], error) {
	return filtered("searchadd", Ack, expr)
}

// List returns the unique values of tag.
func List(tag filter.Tag) Descriptor[[]string] {
	return New("list", AllValues, string(tag))
}

// ListGroup returns the unique values of tag grouped by another tag. The
// group values are interleaved in arrival order.
func ListGroup(tag, group filter.Tag) Descriptor[[]string] {
	return New("list", AllValues, string(tag), "group", string(group))
}

// ListWhere returns the unique values of tag among songs matching expr.
// An empty group leaves the result ungrouped.
func ListWhere(tag filter.Tag, expr filter.Expression, group filter.Tag) (Descriptor[[]string], error) {
	arg, err := filterArg(expr)
	if err != nil {
		return Descriptor[[]string]{}, err
	}
	args := []string{string(tag), arg}
	if group != "" {
		args = append(args, "group", string(group))
	}
	return New("list", AllValues, args...), nil
}

// ListByTag uses the legacy "list <tag> <filter-tag> <value>" form.
func ListByTag(tag, filterTag filter.Tag, value string, group filter.Tag) Descriptor[[]string] {
	args := []string{string(tag), string(filterTag), protocol.Quote(value)}
	if group != "" {
		args = append(args, "group", string(group))
	}
	return New("list", AllValues, args...)
}

// ListAll returns every directory below uri with the files it contains.
// An empty uri lists the whole database.
func ListAll(uri string) Descriptor[[]Directory] {
	if uri == "" {
		return New("listall", Directories)
	}
	return New("listall", Directories, protocol.Quote(uri))
}

// Update starts a database rescan below uri and returns the job id.
func Update(uri string) Descriptor[string] {
	if uri == "" {
		return New("update", Scalar("updating_db"))
	}
	return New("update", Scalar("updating_db"), protocol.Quote(uri))
}
