package diagram

import (
	"strings"
	"testing"

	"github.com/ladderflow/ladderflow/pkg/flow"
	"github.com/ladderflow/ladderflow/pkg/instr"
)

func buildTestGraph(t *testing.T) *flow.Graph {
	t.Helper()
	networks := []instr.Network{
		{ID: 1, Comment: "guard", Instructions: []instr.Instruction{
			instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 1)),
			instr.Inst(instr.OpCJ, instr.Label{Number: 3}),
		}},
		{ID: 2, Instructions: []instr.Instruction{
			instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 2)),
			instr.Inst(instr.OpOUT, instr.Dev(instr.DeviceOutput, 1)),
		}},
		{ID: 3, Instructions: []instr.Instruction{
			instr.Inst(instr.OpLBL, instr.Label{Number: 3}),
			instr.Inst(instr.OpEND),
		}},
	}
	g, _, err := flow.Build(networks)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

// TestSynthesize_Shapes verifies node kind to shape mapping and edge labels
func TestSynthesize_Shapes(t *testing.T) {
	d := Synthesize(buildTestGraph(t))

	if !strings.HasPrefix(d.Markup, "flowchart TD\n") {
		t.Errorf("Expected flowchart header, got %q", firstLine(d.Markup))
	}
	wantLines := []string{
		`start(["START"])`,
		`N1_0{"X001"}`,
		`N2_0["OUT Y001"]`,
		`N3_0(["END"])`,
		`N1_0 -->|true| N3_0`,
		`N1_0 -->|false| N2_0`,
		`N2_0 --> N3_0`,
		`start --> N1_0`,
	}
	for _, want := range wantLines {
		if !strings.Contains(d.Markup, want) {
			t.Errorf("Expected markup to contain %q.\nMarkup:\n%s", want, d.Markup)
		}
	}
}

// TestSynthesize_Metadata verifies per-node metadata records
func TestSynthesize_Metadata(t *testing.T) {
	d := Synthesize(buildTestGraph(t))

	var decision *NodeMeta
	for i := range d.Nodes {
		if d.Nodes[i].ID == "N1_0" {
			decision = &d.Nodes[i]
		}
	}
	if decision == nil {
		t.Fatal("Expected metadata for N1_0")
	}
	if decision.Kind != "decision" {
		t.Errorf("Expected kind decision, got %s", decision.Kind)
	}
	if decision.Network != 1 {
		t.Errorf("Expected network 1, got %d", decision.Network)
	}
	if decision.Condition != "X001" {
		t.Errorf("Expected condition X001, got %q", decision.Condition)
	}
	if len(decision.Devices) != 1 || decision.Devices[0] != "X001" {
		t.Errorf("Expected devices [X001], got %v", decision.Devices)
	}
	if decision.Comment != "guard" {
		t.Errorf("Expected network comment carried into metadata, got %q", decision.Comment)
	}
}

// TestSynthesize_Deterministic verifies byte-identical output across runs
func TestSynthesize_Deterministic(t *testing.T) {
	first := Synthesize(buildTestGraph(t))
	second := Synthesize(buildTestGraph(t))
	if first.Markup != second.Markup {
		t.Error("Expected byte-identical markup across synthesis runs")
	}
}

// TestSynthesize_UnresolvedEdge verifies unresolved jumps render with a
// distinguishing label
func TestSynthesize_UnresolvedEdge(t *testing.T) {
	networks := []instr.Network{
		{ID: 1, Instructions: []instr.Instruction{
			instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 1)),
			instr.Inst(instr.OpCJ, instr.Label{Number: 42}),
		}},
		{ID: 2, Instructions: []instr.Instruction{instr.Inst(instr.OpEND)}},
	}
	g, _, err := flow.Build(networks)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	d := Synthesize(g)
	if !strings.Contains(d.Markup, "-->|?|") {
		t.Errorf("Expected unresolved edge rendered as |?|.\nMarkup:\n%s", d.Markup)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
