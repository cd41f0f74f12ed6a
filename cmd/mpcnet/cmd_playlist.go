package main

import (
	"context"
	"fmt"

	"github.com/difegue/mpcnet/internal/client"
	"github.com/difegue/mpcnet/internal/command"
	"github.com/difegue/mpcnet/internal/ui"
)

type PlaylistCmd struct {
	Add    PlaylistAddCmd    `cmd:"" help:"Add a song to a stored playlist"`
	Delete PlaylistDeleteCmd `cmd:"" name:"del" help:"Remove songs from a stored playlist"`
	List   PlaylistListCmd   `cmd:"" name:"ls" help:"List stored playlists, or the songs of one"`
}

type PlaylistAddCmd struct {
	Name string `arg:"" help:"Playlist name (created when missing)"`
	URI  string `arg:"" help:"Song URI"`
	Pos  int    `default:"-1" help:"Insert at this position instead of appending"`
}

func (c *PlaylistAddCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	add := command.PlaylistAdd(c.Name, c.URI)
	if c.Pos >= 0 {
		add = command.PlaylistAddAt(c.Name, c.URI, c.Pos)
	}
	if _, err := client.Run(ctx, cl, add); err != nil {
		return mapError(err)
	}
	ui.PrintSuccess(fmt.Sprintf("Added %s to %s", c.URI, c.Name))
	return nil
}

type PlaylistDeleteCmd struct {
	Name  string `arg:"" help:"Playlist name"`
	Start int    `arg:"" help:"Position to remove (0-based)"`
	End   int    `arg:"" optional:"" default:"-1" help:"Remove up to this position, exclusive"`
}

func (c *PlaylistDeleteCmd) Validate() error {
	if c.Start < 0 {
		return fmt.Errorf("position %d is negative", c.Start)
	}
	if c.End >= 0 && c.End <= c.Start {
		return fmt.Errorf("end %d must be greater than start %d", c.End, c.Start)
	}
	return nil
}

func (c *PlaylistDeleteCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	del := command.PlaylistDelete(c.Name, c.Start)
	if c.End >= 0 {
		del = command.PlaylistDeleteRange(c.Name, c.Start, c.End)
	}
	if _, err := client.Run(ctx, cl, del); err != nil {
		return mapError(err)
	}
	ui.PrintSuccess(fmt.Sprintf("Updated %s", c.Name))
	return nil
}

type PlaylistListCmd struct {
	Name string `arg:"" optional:"" help:"Playlist whose songs to list"`
}

func (c *PlaylistListCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	if c.Name != "" {
		files, err := client.Run(ctx, cl, command.ListPlaylist(c.Name))
		if err != nil {
			return mapError(err)
		}
		return g.printValues(c.Name, files)
	}

	playlists, err := client.Run(ctx, cl, command.ListPlaylists())
	if err != nil {
		return mapError(err)
	}
	if g.yaml() {
		return ui.WriteYAML(ui.Output, ui.RecordsNode(playlists))
	}
	ui.PrintPlaylists(playlists)
	return nil
}
