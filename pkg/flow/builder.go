package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ladderflow/ladderflow/pkg/diag"
	"github.com/ladderflow/ladderflow/pkg/instr"
)

// ErrUnbalancedLoop is the fatal builder failure for mismatched FOR/NEXT
// brackets. Graph integrity cannot be guaranteed, so no partial graph is
// returned.
var ErrUnbalancedLoop = errors.New("unbalanced FOR/NEXT loop")

// Edge labels used by the builder
const (
	LabelTrue       = "true"
	LabelFalse      = "false"
	LabelUnresolved = "unresolved"
	LabelReturn     = "return"
	LabelLoop       = "loop"
)

// segment is one run of instructions inside a network, closed by a flow
// instruction (CJ, CALL, END, FEND, FOR, NEXT) or the end of the network
type segment struct {
	node         *Node
	network      int
	instructions []instr.Instruction
	terminal     *instr.Instruction // nil when the segment just falls through
}

// Build wires the control-flow graph for the decoded networks, in the
// order given. Non-fatal findings (unresolved jump targets, unreachable
// networks) come back as diagnostics; unbalanced loop brackets abort with
// ErrUnbalancedLoop.
func Build(networks []instr.Network) (*Graph, []diag.Diagnostic, error) {
	if len(networks) == 0 {
		return nil, nil, errors.New("no networks to build")
	}

	b := &builder{
		graph:    NewGraph(),
		netFirst: make(map[int]string),
		labels:   make(map[uint16]int),
	}

	b.collectLabels(networks)
	b.segmentNetworks(networks)
	if err := b.wireEdges(); err != nil {
		return nil, nil, err
	}
	b.pruneUnreachable(networks)
	b.graph.computeExits()
	markBackEdges(b.graph)

	return b.graph, b.diags, nil
}

type builder struct {
	graph    *Graph
	diags    []diag.Diagnostic
	segs     []*segment
	netFirst map[int]string // network id -> first segment node id
	labels   map[uint16]int // pointer label -> defining network id
}

// collectLabels builds the per-pass read-only label table before any edge
// wiring, so forward and backward jumps resolve alike
func (b *builder) collectLabels(networks []instr.Network) {
	for _, net := range networks {
		for _, label := range net.Labels() {
			if _, exists := b.labels[label.Number]; !exists {
				b.labels[label.Number] = net.ID
			}
		}
	}
}

// segmentNetworks splits each network at its flow instructions and creates
// one node per segment in (network order, instruction order)
func (b *builder) segmentNetworks(networks []instr.Network) {
	start := &Node{ID: StartNodeID, Kind: KindStart, Network: -1, Summary: "START"}
	b.graph.AddNode(start)

	for _, net := range networks {
		ordinal := 0
		var current []instr.Instruction

		flush := func(terminal *instr.Instruction) {
			if len(current) == 0 && terminal == nil && ordinal > 0 {
				return
			}
			seg := &segment{
				network:      net.ID,
				instructions: current,
				terminal:     terminal,
			}
			if terminal != nil {
				seg.instructions = append(seg.instructions, *terminal)
			}
			seg.node = b.makeNode(net, ordinal, seg)
			b.graph.AddNode(seg.node)
			b.segs = append(b.segs, seg)
			if ordinal == 0 {
				b.netFirst[net.ID] = seg.node.ID
			}
			ordinal++
			current = nil
		}

		for _, in := range net.Instructions {
			if in.Opcode.IsFlow() {
				terminal := in
				flush(&terminal)
				continue
			}
			current = append(current, in)
		}
		flush(nil)
	}
}

// makeNode derives the node for a segment: id, kind, device set, condition
// summary and display text
func (b *builder) makeNode(net instr.Network, ordinal int, seg *segment) *Node {
	node := &Node{
		ID:      NodeID(net.ID, ordinal),
		Kind:    KindProcess,
		Network: net.ID,
		Devices: uniqueDevices(seg.instructions),
	}
	if ordinal == 0 {
		node.Comment = net.Comment
	}

	if seg.terminal == nil {
		node.Summary = summarize(seg.instructions)
		return node
	}

	switch seg.terminal.Opcode {
	case instr.OpCJ:
		node.Kind = KindDecision
		node.Condition = Render(conditionOf(seg.instructions))
		node.Summary = seg.terminal.String()
	case instr.OpCALL:
		node.Kind = KindCall
		node.Summary = seg.terminal.String()
	case instr.OpEND, instr.OpFEND:
		node.Kind = KindEnd
		node.Summary = seg.terminal.Opcode.String()
	case instr.OpFOR:
		node.Kind = KindLoop
		node.Summary = seg.terminal.String()
	case instr.OpNEXT:
		node.Summary = seg.terminal.Opcode.String()
	}
	return node
}

// wireEdges connects segments: fall-through, decisions, calls with return
// edges, loop brackets. Returns ErrUnbalancedLoop on mismatched FOR/NEXT.
func (b *builder) wireEdges() error {
	if len(b.segs) > 0 {
		b.graph.AddEdge(Edge{From: StartNodeID, To: b.segs[0].node.ID})
	}

	var forStack []*segment

	for i, seg := range b.segs {
		next := ""
		if i+1 < len(b.segs) {
			next = b.segs[i+1].node.ID
		}

		if seg.terminal == nil {
			if next != "" {
				b.graph.AddEdge(Edge{From: seg.node.ID, To: next})
			}
			continue
		}

		switch seg.terminal.Opcode {
		case instr.OpCJ:
			target := b.resolveTarget(seg, *seg.terminal)
			label := LabelTrue
			if target == "" {
				target = b.addUnresolvedNode(seg)
				label = LabelUnresolved
			}
			b.graph.AddEdge(Edge{From: seg.node.ID, To: target, Label: label})
			if next != "" {
				b.graph.AddEdge(Edge{From: seg.node.ID, To: next, Label: LabelFalse})
			}

		case instr.OpCALL:
			target := b.resolveTarget(seg, *seg.terminal)
			if target == "" {
				placeholder := b.addUnresolvedNode(seg)
				b.graph.AddEdge(Edge{From: seg.node.ID, To: placeholder, Label: LabelUnresolved})
				// Execution still resumes after the call site, so the tail
				// of the program stays reachable.
				if next != "" {
					b.graph.AddEdge(Edge{From: seg.node.ID, To: next})
				}
				continue
			}
			b.graph.AddEdge(Edge{From: seg.node.ID, To: target})
			// Implicit return: the subroutine's END resumes at the segment
			// following the call site. Multiple call sites produce multiple
			// return edges; the graph is not a tree.
			if subEnd := b.subroutineEnd(target); subEnd != "" && next != "" {
				b.graph.AddEdge(Edge{From: subEnd, To: next, Label: LabelReturn})
			}

		case instr.OpEND, instr.OpFEND:
			// Terminal: no outgoing edges.

		case instr.OpFOR:
			forStack = append(forStack, seg)
			if next != "" {
				b.graph.AddEdge(Edge{From: seg.node.ID, To: next})
			}

		case instr.OpNEXT:
			if len(forStack) == 0 {
				return fmt.Errorf("%w: NEXT without FOR in network %d", ErrUnbalancedLoop, seg.network)
			}
			open := forStack[len(forStack)-1]
			forStack = forStack[:len(forStack)-1]
			b.graph.AddEdge(Edge{From: seg.node.ID, To: open.node.ID, Label: LabelLoop, Back: true})
			if next != "" {
				b.graph.AddEdge(Edge{From: seg.node.ID, To: next})
			}
		}
	}

	if len(forStack) > 0 {
		return fmt.Errorf("%w: FOR without NEXT in network %d", ErrUnbalancedLoop, forStack[len(forStack)-1].network)
	}
	return nil
}

// resolveTarget maps a CJ/CALL label operand to the target network's first
// segment node, or "" when the label is undefined
func (b *builder) resolveTarget(seg *segment, terminal instr.Instruction) string {
	label, ok := terminal.TargetLabel()
	if !ok {
		b.diags = append(b.diags, diag.Errorf(diag.UnresolvedJumpTarget, seg.network,
			"%s carries no target label", terminal.Opcode))
		return ""
	}
	targetNet, ok := b.labels[label.Number]
	if !ok {
		b.diags = append(b.diags, diag.Errorf(diag.UnresolvedJumpTarget, seg.network,
			"target %s is not defined anywhere in the program", label))
		return ""
	}
	return b.netFirst[targetNet]
}

// addUnresolvedNode synthesizes the visible placeholder an unresolved edge
// points at, keeping the every-edge-references-a-node invariant
func (b *builder) addUnresolvedNode(seg *segment) string {
	id := "U" + strings.TrimPrefix(seg.node.ID, "N")
	if b.graph.Node(id) == nil {
		b.graph.AddNode(&Node{
			ID:      id,
			Kind:    KindProcess,
			Network: seg.network,
			Summary: "unresolved target",
		})
	}
	return id
}

// subroutineEnd locates the End node terminating the subroutine entered at
// the given node: the first End segment from the entry onward, falling back
// to the final segment of the program
func (b *builder) subroutineEnd(entryID string) string {
	started := false
	for _, seg := range b.segs {
		if seg.node.ID == entryID {
			started = true
		}
		if started && seg.node.Kind == KindEnd {
			return seg.node.ID
		}
	}
	if len(b.segs) > 0 {
		return b.segs[len(b.segs)-1].node.ID
	}
	return ""
}

// pruneUnreachable removes every node not reachable from the entry and
// reports each fully-unreachable network as a diagnostic
func (b *builder) pruneUnreachable(networks []instr.Network) {
	reached := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		if reached[id] {
			return
		}
		reached[id] = true
		for _, e := range b.graph.Outgoing(id) {
			visit(e.To)
		}
	}
	visit(StartNodeID)

	reachedNetworks := make(map[int]bool)
	for _, seg := range b.segs {
		if reached[seg.node.ID] {
			reachedNetworks[seg.network] = true
		}
	}
	for _, net := range networks {
		if !reachedNetworks[net.ID] {
			b.diags = append(b.diags, diag.Warnf(diag.UnreachableNetwork, net.ID,
				"network %d is never reached from the program entry", net.ID))
		}
	}

	doomed := make(map[string]bool)
	for _, n := range b.graph.Nodes {
		if !reached[n.ID] {
			doomed[n.ID] = true
		}
	}
	b.graph.removeNodes(doomed)
	b.graph.Entry = StartNodeID
}

// summarize builds the display text for a plain process segment
func summarize(instructions []instr.Instruction) string {
	if len(instructions) == 0 {
		return "(empty)"
	}
	for _, in := range instructions {
		if in.Opcode.IsOutput() || !in.Opcode.Known() || in.Opcode >= instr.OpMOV {
			return in.String()
		}
	}
	return instructions[0].String()
}

// uniqueDevices returns the distinct device references of a segment in
// first-appearance order
func uniqueDevices(instructions []instr.Instruction) []instr.DeviceRef {
	seen := make(map[instr.DeviceRef]bool)
	var out []instr.DeviceRef
	for _, in := range instructions {
		for _, dev := range in.Devices() {
			if !seen[dev] {
				seen[dev] = true
				out = append(out, dev)
			}
		}
	}
	return out
}

// markBackEdges classifies edges that close a cycle using three-color DFS
// (white unvisited, gray on stack, black finished). An edge into a gray
// node is a back edge. Backward CJ cycles are legal ladder logic; marking
// them lets the synthesizer render without infinite traversal.
func markBackEdges(g *Graph) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	adjacency := make(map[string][]int)
	for i, e := range g.Edges {
		adjacency[e.From] = append(adjacency[e.From], i)
	}

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, idx := range adjacency[id] {
			to := g.Edges[idx].To
			switch color[to] {
			case white:
				visit(to)
			case gray:
				g.Edges[idx].Back = true
			}
		}
		color[id] = black
	}
	visit(g.Entry)
}
