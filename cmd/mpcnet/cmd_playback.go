package main

import (
	"context"
	"fmt"

	"github.com/difegue/mpcnet/internal/client"
	"github.com/difegue/mpcnet/internal/command"
	"github.com/difegue/mpcnet/internal/ui"
)

// runAction connects, sends one command that returns nothing and prints
// message on success.
func runAction(ctx context.Context, g *Globals, cmd command.Command[struct{}], message string) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	if _, err := client.Run(ctx, cl, cmd); err != nil {
		return mapError(err)
	}
	ui.PrintSuccess(message)
	return nil
}

type PlayCmd struct {
	Pos int `arg:"" optional:"" default:"-1" help:"Queue position to play (0-based)"`
}

func (c *PlayCmd) Run(ctx context.Context, g *Globals) error {
	if c.Pos < 0 {
		return runAction(ctx, g, command.Play(), "Playing")
	}
	return runAction(ctx, g, command.PlayPos(c.Pos), fmt.Sprintf("Playing position %d", c.Pos))
}

type PauseCmd struct{}

func (c *PauseCmd) Run(ctx context.Context, g *Globals) error {
	return runAction(ctx, g, command.Pause(), "Pause toggled")
}

type StopCmd struct{}

func (c *StopCmd) Run(ctx context.Context, g *Globals) error {
	return runAction(ctx, g, command.Stop(), "Stopped")
}

type NextCmd struct{}

func (c *NextCmd) Run(ctx context.Context, g *Globals) error {
	return runAction(ctx, g, command.Next(), "Next song")
}

type PrevCmd struct{}

func (c *PrevCmd) Run(ctx context.Context, g *Globals) error {
	return runAction(ctx, g, command.Previous(), "Previous song")
}

type VolumeCmd struct {
	Level int `arg:"" optional:"" default:"-1" help:"New volume (0-100); omit to show the current one"`
}

func (c *VolumeCmd) Validate() error {
	if c.Level > 100 || c.Level < -1 {
		return fmt.Errorf("volume %d out of range 0-100", c.Level)
	}
	return nil
}

func (c *VolumeCmd) Run(ctx context.Context, g *Globals) error {
	if c.Level >= 0 {
		return runAction(ctx, g, command.SetVol(c.Level), fmt.Sprintf("Volume set to %d%%", c.Level))
	}

	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	vol, err := client.Run(ctx, cl, command.GetVol())
	if err != nil {
		return mapError(err)
	}
	if vol == "" {
		ui.PrintWarning("No mixer available")
		return nil
	}
	fmt.Fprintf(ui.Output, "%s %s%%\n", ui.Bold("Volume:"), vol)
	return nil
}

type ConsumeCmd struct {
	Mode string `arg:"" optional:"" help:"on or off; omit to show the current mode"`
}

func (c *ConsumeCmd) Validate() error {
	switch c.Mode {
	case "", "on", "off":
		return nil
	}
	return fmt.Errorf("consume mode must be on or off, got %q", c.Mode)
}

func (c *ConsumeCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	if c.Mode != "" {
		if _, err := client.Run(ctx, cl, command.SetConsume(c.Mode == "on")); err != nil {
			return mapError(err)
		}
		ui.PrintSuccess("Consume " + c.Mode)
		return nil
	}

	status, err := client.Run(ctx, cl, command.Status())
	if err != nil {
		return mapError(err)
	}
	mode := "off"
	if status.Get("consume") == "1" {
		mode = "on"
	}
	fmt.Fprintf(ui.Output, "%s %s\n", ui.Bold("Consume:"), mode)
	return nil
}
