package main

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/difegue/mpcnet/internal/client"
	"github.com/difegue/mpcnet/internal/command"
	"github.com/difegue/mpcnet/internal/ui"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	var status, song command.Record
	var b command.Batch
	command.AddTo(&b, command.Status(), &status)
	command.AddTo(&b, command.CurrentSong(), &song)
	if err := cl.RunBatch(ctx, &b); err != nil {
		return mapError(err)
	}

	if g.yaml() {
		return ui.WriteYAML(ui.Output, struct {
			Status *yaml.Node `yaml:"status"`
			Song   *yaml.Node `yaml:"song"`
		}{ui.RecordNode(status), ui.RecordNode(song)})
	}
	ui.PrintStatus(status, song)
	return nil
}

type CurrentCmd struct{}

func (c *CurrentCmd) Run(ctx context.Context, g *Globals) error {
	return showRecord(ctx, g, command.CurrentSong(), "No current song.")
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx context.Context, g *Globals) error {
	return showRecord(ctx, g, command.Stats(), "No statistics.")
}

func showRecord(ctx context.Context, g *Globals, cmd command.Command[command.Record], empty string) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	rec, err := client.Run(ctx, cl, cmd)
	if err != nil {
		return mapError(err)
	}

	if g.yaml() {
		return ui.WriteYAML(ui.Output, ui.RecordNode(rec))
	}
	if len(rec) == 0 {
		ui.PrintInfo(empty)
		return nil
	}
	ui.PrintRecord(rec)
	return nil
}
