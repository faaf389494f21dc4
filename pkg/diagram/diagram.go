// Package diagram renders a control-flow graph as deterministic mermaid
// flowchart markup plus per-node metadata records for UI popovers. Given a
// deterministic graph, re-synthesis yields byte-identical text.
package diagram

import (
	"fmt"
	"strings"

	"github.com/ladderflow/ladderflow/pkg/flow"
)

// NodeMeta is the per-node metadata record accompanying the markup
type NodeMeta struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Network   int      `json:"network_id"`
	Label     string   `json:"label"`
	Devices   []string `json:"devices,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Comment   string   `json:"comment,omitempty"`
}

// Diagram is the synthesizer output: flowchart markup and node metadata in
// the graph's deterministic node order
type Diagram struct {
	Markup string     `json:"markup"`
	Nodes  []NodeMeta `json:"nodes"`
}

// Synthesize renders the graph. Node and edge lines follow the graph's
// emission order, so output is stable across runs on unchanged input.
func Synthesize(g *flow.Graph) *Diagram {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	d := &Diagram{}
	for _, n := range g.Nodes {
		label := nodeLabel(n)
		sb.WriteString("    ")
		sb.WriteString(shape(n, label))
		sb.WriteByte('\n')

		meta := NodeMeta{
			ID:        n.ID,
			Kind:      n.Kind.String(),
			Network:   n.Network,
			Label:     label,
			Condition: n.Condition,
			Comment:   n.Comment,
		}
		for _, dev := range n.Devices {
			meta.Devices = append(meta.Devices, dev.Address())
		}
		d.Nodes = append(d.Nodes, meta)
	}

	for _, e := range g.Edges {
		sb.WriteString("    ")
		sb.WriteString(e.From)
		if label := edgeLabel(e.Label); label != "" {
			sb.WriteString(" -->|")
			sb.WriteString(label)
			sb.WriteByte('|')
		} else {
			sb.WriteString(" -->")
		}
		sb.WriteByte(' ')
		sb.WriteString(e.To)
		sb.WriteByte('\n')
	}

	d.Markup = sb.String()
	return d
}

// nodeLabel picks the display text: decisions show their condition,
// everything else its instruction summary
func nodeLabel(n *flow.Node) string {
	if n.Kind == flow.KindDecision && n.Condition != "" {
		return n.Condition
	}
	if n.Summary != "" {
		return n.Summary
	}
	return n.ID
}

// shape wraps the label in the mermaid shape for the node kind:
// terminals are stadiums, processes rectangles, decisions diamonds, calls
// subroutine brackets, loops trapezoids.
func shape(n *flow.Node, label string) string {
	quoted := fmt.Sprintf("%q", label)
	switch n.Kind {
	case flow.KindStart, flow.KindEnd:
		return fmt.Sprintf("%s([%s])", n.ID, quoted)
	case flow.KindDecision:
		return fmt.Sprintf("%s{%s}", n.ID, quoted)
	case flow.KindCall:
		return fmt.Sprintf("%s[[%s]]", n.ID, quoted)
	case flow.KindLoop:
		return fmt.Sprintf("%s[/%s/]", n.ID, quoted)
	default:
		return fmt.Sprintf("%s[%s]", n.ID, quoted)
	}
}

// edgeLabel maps graph edge labels to diagram text. Unresolved targets
// render as "?" so the diagram visibly flags them.
func edgeLabel(label string) string {
	if label == flow.LabelUnresolved {
		return "?"
	}
	return label
}
