package main

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/difegue/mpcnet/internal/client"
	"github.com/difegue/mpcnet/internal/command"
	"github.com/difegue/mpcnet/internal/ui"
)

type AddCmd struct {
	URI string `arg:"" help:"Song or directory URI, relative to the music directory"`
	Pos int    `default:"-1" help:"Insert at this queue position instead of appending"`
}

func (c *AddCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	add := command.Add(c.URI)
	if c.Pos >= 0 {
		add = command.AddAt(c.URI, c.Pos)
	}
	if _, err := client.Run(ctx, cl, add); err != nil {
		return mapError(err)
	}
	ui.PrintSuccess(fmt.Sprintf("Added %s", c.URI))
	return nil
}

type DeleteCmd struct {
	Start int `arg:"" help:"Queue position to remove (0-based)"`
	End   int `arg:"" optional:"" default:"-1" help:"Remove up to this position, exclusive"`
}

func (c *DeleteCmd) Validate() error {
	if c.Start < 0 {
		return fmt.Errorf("position %d is negative", c.Start)
	}
	if c.End >= 0 && c.End <= c.Start {
		return fmt.Errorf("end %d must be greater than start %d", c.End, c.Start)
	}
	return nil
}

func (c *DeleteCmd) Run(ctx context.Context, g *Globals) error {
	if c.End < 0 {
		return runAction(ctx, g, command.Delete(c.Start), fmt.Sprintf("Removed position %d", c.Start))
	}
	return runAction(ctx, g, command.DeleteRange(c.Start, c.End),
		fmt.Sprintf("Removed positions %d to %d", c.Start, c.End-1))
}

type ClearCmd struct{}

func (c *ClearCmd) Run(ctx context.Context, g *Globals) error {
	return runAction(ctx, g, command.Clear(), "Queue cleared")
}

type QueueCmd struct{}

func (c *QueueCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	var songs []command.Record
	var status command.Record
	var b command.Batch
	command.AddTo(&b, command.PlaylistInfo(), &songs)
	command.AddTo(&b, command.Status(), &status)
	if err := cl.RunBatch(ctx, &b); err != nil {
		return mapError(err)
	}

	if g.yaml() {
		return ui.WriteYAML(ui.Output, struct {
			Current string     `yaml:"current,omitempty"`
			Songs   *yaml.Node `yaml:"songs"`
		}{status.Get("song"), ui.RecordsNode(songs)})
	}
	ui.PrintQueue(songs, status.Get("song"))
	return nil
}
