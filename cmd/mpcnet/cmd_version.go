package main

import (
	"context"
	"fmt"

	"github.com/difegue/mpcnet/internal/ui"
)

type VersionCmd struct {
	Server bool `help:"Also show the protocol version of the daemon"`
}

func (c *VersionCmd) Run(ctx context.Context, g *Globals) error {
	fmt.Fprintf(ui.Output, "mpcnet version %s (%s)\n", version, commit)
	if !c.Server {
		return nil
	}

	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()
	fmt.Fprintf(ui.Output, "daemon protocol %s\n", cl.ServerVersion())
	return nil
}
