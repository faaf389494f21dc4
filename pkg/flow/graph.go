// Package flow builds the control-flow graph of a decoded ladder program:
// one node per network segment, edges for fall-through, conditional jumps,
// subroutine calls and loop brackets. Nodes and edges live in an arena
// addressed by stable string ids, so cycles and shared subroutine targets
// need no ownership tricks.
package flow

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/ladderflow/ladderflow/pkg/instr"
)

// NodeKind classifies a flow node for diagram shaping
type NodeKind int

const (
	KindStart NodeKind = iota
	KindProcess
	KindDecision
	KindCall
	KindLoop
	KindEnd
)

// String returns the string representation of a node kind
func (k NodeKind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindProcess:
		return "process"
	case KindDecision:
		return "decision"
	case KindCall:
		return "call"
	case KindLoop:
		return "loop"
	case KindEnd:
		return "end"
	default:
		return "unknown"
	}
}

// StartNodeID is the id of the synthetic entry node preceding network 1
const StartNodeID = "start"

// NodeID derives the stable identifier for a network segment. The scheme
// is a deterministic function of network id and segment ordinal, so
// re-analysis of unchanged input reproduces identical ids.
func NodeID(network, ordinal int) string {
	return fmt.Sprintf("N%d_%d", network, ordinal)
}

// Node is one flow node. Immutable once the graph is built.
type Node struct {
	ID        string
	Kind      NodeKind
	Network   int // originating network id, -1 for the synthetic start
	Devices   []instr.DeviceRef
	Condition string // boolean-expression summary, Decision nodes only
	Comment   string // network comment, carried on the first segment
	Summary   string // short instruction summary for diagram labels
}

// Edge is a directed edge between two flow nodes. Label is "" for plain
// fall-through, or one of "true", "false", "?", "return", "loop". Back
// marks edges that close a cycle so traversals can skip them.
type Edge struct {
	From  string
	To    string
	Label string
	Back  bool
}

// Graph is the control-flow graph arena: nodes and edges in deterministic
// emission order, addressed by stable ids.
type Graph struct {
	Nodes []*Node
	Edges []Edge
	Entry string
	Exits []string

	index map[string]*Node
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{index: make(map[string]*Node)}
}

// AddNode appends a node to the arena
func (g *Graph) AddNode(n *Node) {
	g.Nodes = append(g.Nodes, n)
	g.index[n.ID] = n
}

// AddEdge appends an edge. Both endpoints must already exist.
func (g *Graph) AddEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// Node returns the node with the given id, or nil
func (g *Graph) Node(id string) *Node {
	return g.index[id]
}

// Outgoing returns the edges leaving the given node, in emission order
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// removeNodes drops the given node ids and every edge touching them,
// preserving the order of what remains
func (g *Graph) removeNodes(ids map[string]bool) {
	if len(ids) == 0 {
		return
	}
	nodes := g.Nodes[:0]
	for _, n := range g.Nodes {
		if ids[n.ID] {
			delete(g.index, n.ID)
			continue
		}
		nodes = append(nodes, n)
	}
	g.Nodes = nodes

	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if ids[e.From] || ids[e.To] {
			continue
		}
		edges = append(edges, e)
	}
	g.Edges = edges
}

// computeExits fills the exit set: End nodes with no outgoing edges. When
// the program has no terminal marker at all, the final dangling node
// serves as the exit, and when even that is missing the final node does.
func (g *Graph) computeExits() {
	outDegree := make(map[string]int)
	for _, e := range g.Edges {
		outDegree[e.From]++
	}

	g.Exits = g.Exits[:0]
	for _, n := range g.Nodes {
		if n.Kind == KindEnd && outDegree[n.ID] == 0 {
			g.Exits = append(g.Exits, n.ID)
		}
	}
	if len(g.Exits) == 0 {
		for i := len(g.Nodes) - 1; i >= 0; i-- {
			n := g.Nodes[i]
			if outDegree[n.ID] == 0 && n.Kind != KindStart {
				g.Exits = append(g.Exits, n.ID)
				break
			}
		}
	}
	if len(g.Exits) == 0 {
		// Every node feeds a cycle (e.g. a lone backward jump with no
		// END); the final node still stands in as the exit.
		for i := len(g.Nodes) - 1; i >= 0; i-- {
			if g.Nodes[i].Kind != KindStart {
				g.Exits = append(g.Exits, g.Nodes[i].ID)
				break
			}
		}
	}
	slices.Sort(g.Exits)
}
