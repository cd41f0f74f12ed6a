package main

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/difegue/mpcnet/internal/protocol"
	"github.com/difegue/mpcnet/internal/ui"
)

type BatchCmd struct {
	Lines []string `arg:"" help:"Raw command lines, e.g. 'status' 'playlistinfo'"`
}

func (c *BatchCmd) Run(ctx context.Context, g *Globals) error {
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	resp, err := cl.Raw(ctx, protocol.WrapList(c.Lines, true)...)
	if err != nil {
		return mapError(err)
	}
	return printSegments(g, c.Lines, resp)
}

// printSegments prints the list_OK segment of every line under a header.
func printSegments(g *Globals, lines []string, resp *protocol.Response) error {
	if g.yaml() {
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for i, line := range lines {
			node.Content = append(node.Content, &yaml.Node{
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Value: "command"},
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: line},
					{Kind: yaml.ScalarNode, Value: "response"},
					ui.RecordNode(resp.Segment(i).Pairs),
				},
			})
		}
		return ui.WriteYAML(ui.Output, node)
	}

	for i, line := range lines {
		fmt.Fprintln(ui.Output, ui.Dim("# "+line))
		ui.PrintRecord(resp.Segment(i).Pairs)
	}
	return nil
}
