package ui

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/difegue/mpcnet/internal/command"
	"github.com/difegue/mpcnet/internal/protocol"
)

// RecordNode renders a record as a YAML mapping in daemon order. A key that
// repeats (multi-valued tags) becomes a sequence at its first position.
func RecordNode(pairs []protocol.Pair) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	index := map[string]*yaml.Node{}
	for _, p := range pairs {
		value := scalar(p.Value)
		existing, ok := index[p.Key]
		if !ok {
			node.Content = append(node.Content, scalar(p.Key), value)
			index[p.Key] = value
			continue
		}
		if existing.Kind != yaml.SequenceNode {
			first := *existing
			*existing = yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{&first}}
		}
		existing.Content = append(existing.Content, value)
	}
	return node
}

// RecordsNode renders records as a YAML sequence of mappings.
func RecordsNode(records []command.Record) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode}
	for _, rec := range records {
		node.Content = append(node.Content, RecordNode(rec))
	}
	return node
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// WriteYAML encodes v, which may be a *yaml.Node, with two-space indent.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
