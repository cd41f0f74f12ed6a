package main

import (
	"context"
	"fmt"

	"github.com/difegue/mpcnet/internal/client"
	"github.com/difegue/mpcnet/internal/command"
	"github.com/difegue/mpcnet/internal/filter"
	"github.com/difegue/mpcnet/internal/ui"
)

// QueryFlags are shared by the song query commands.
type QueryFlags struct {
	Add    bool   `help:"Add the matching songs to the queue instead of printing them"`
	Window string `help:"Only return results start:end (0-based, end exclusive)"`
}

// runQuery prints the songs matching expr, or queues them with --add.
func (q *QueryFlags) runQuery(ctx context.Context, g *Globals, expr filter.Expression, search bool) error {
	window, err := parseWindow(q.Window)
	if err != nil {
		return err
	}

	var (
		query command.Descriptor[[]command.Record]
		add   command.Descriptor[struct{}]
	)
	switch {
	case q.Add && search:
		add, err = command.SearchAdd(expr)
	case q.Add:
		add, err = command.FindAdd(expr)
	case search:
		query, err = command.Search(expr)
	default:
		query, err = command.Find(expr)
	}
	if err != nil {
		return errInvalidFilter(err)
	}

	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	if q.Add {
		if _, err := client.Run(ctx, cl, add); err != nil {
			return mapError(err)
		}
		ui.PrintSuccess("Matching songs added to the queue")
		return nil
	}

	songs, err := client.Run(ctx, cl, query.WithWindow(window))
	if err != nil {
		return mapError(err)
	}
	return g.printRecords(songs)
}

type FindCmd struct {
	QueryFlags
	Terms []string `arg:"" predictor:"term" help:"Tag/value pairs, e.g. Artist 'Miles Davis' Album 'Kind of Blue'"`
}

func (c *FindCmd) Run(ctx context.Context, g *Globals) error {
	expr, err := tagExpression(filter.Equal, c.Terms)
	if err != nil {
		return errInvalidFilter(err)
	}
	return c.runQuery(ctx, g, expr, false)
}

type SearchCmd struct {
	QueryFlags
	Terms []string `arg:"" predictor:"term" help:"Tag/substring pairs, case-insensitive"`
}

func (c *SearchCmd) Run(ctx context.Context, g *Globals) error {
	expr, err := tagExpression(filter.Contains, c.Terms)
	if err != nil {
		return errInvalidFilter(err)
	}
	return c.runQuery(ctx, g, expr, true)
}

type WhereCmd struct {
	QueryFlags
	Search bool     `short:"s" help:"Match case-insensitively (search instead of find)"`
	Terms  []string `arg:"" predictor:"term" help:"Terms '[not] key [op] value', e.g. Artist == Foo and not Genre contains Jazz"`
}

func (c *WhereCmd) Run(ctx context.Context, g *Globals) error {
	expr, err := parseWhere(c.Terms)
	if err != nil {
		return errInvalidFilter(err)
	}
	return c.runQuery(ctx, g, expr, c.Search)
}

type ListCmd struct {
	Tag    string   `arg:"" predictor:"tag" help:"Tag whose values to list"`
	Filter []string `arg:"" optional:"" predictor:"term" help:"Restrict to songs matching these where-terms"`
	Group  string   `predictor:"tag" help:"Group the values by another tag"`
}

func (c *ListCmd) Run(ctx context.Context, g *Globals) error {
	list, err := c.descriptor()
	if err != nil {
		return errInvalidFilter(err)
	}

	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	values, err := client.Run(ctx, cl, list)
	if err != nil {
		return mapError(err)
	}
	return g.printValues(c.Tag, values)
}

func (c *ListCmd) descriptor() (command.Descriptor[[]string], error) {
	tag, err := filter.ParseTag(c.Tag)
	if err != nil {
		return command.Descriptor[[]string]{}, err
	}
	var group filter.Tag
	if c.Group != "" {
		if group, err = filter.ParseTag(c.Group); err != nil {
			return command.Descriptor[[]string]{}, err
		}
	}

	switch {
	case len(c.Filter) == 0 && group == "":
		return command.List(tag), nil
	case len(c.Filter) == 0:
		return command.ListGroup(tag, group), nil
	}

	expr, err := parseWhere(c.Filter)
	if err != nil {
		return command.Descriptor[[]string]{}, err
	}
	return command.ListWhere(tag, expr, group)
}

type LsCmd struct {
	Path string `arg:"" optional:"" help:"Directory to list, relative to the music directory"`
}

func (c *LsCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	dirs, err := client.Run(ctx, cl, command.ListAll(c.Path))
	if err != nil {
		return mapError(err)
	}

	if g.yaml() {
		type entry struct {
			Directory string   `yaml:"directory"`
			Files     []string `yaml:"files"`
		}
		out := make([]entry, 0, len(dirs))
		for _, d := range dirs {
			out = append(out, entry{Directory: d.Path, Files: d.Files})
		}
		return ui.WriteYAML(ui.Output, out)
	}
	ui.PrintDirectories(dirs)
	return nil
}

type UpdateCmd struct {
	Path string `arg:"" optional:"" help:"Only rescan below this directory"`
}

func (c *UpdateCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	job, err := client.Run(ctx, cl, command.Update(c.Path))
	if err != nil {
		return mapError(err)
	}
	ui.PrintSuccess(fmt.Sprintf("Database update started (job %s)", job))
	return nil
}
