package flow

import (
	"testing"

	"github.com/ladderflow/ladderflow/pkg/instr"
)

func condText(t *testing.T, instructions ...instr.Instruction) string {
	t.Helper()
	// Append the CJ the condition feeds so conditionOf sees a terminal.
	instructions = append(instructions, instr.Inst(instr.OpCJ, instr.Label{Number: 1}))
	return Render(conditionOf(instructions))
}

// TestCondition_Series verifies series contacts combine with AND
func TestCondition_Series(t *testing.T) {
	got := condText(t,
		instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 1)),
		instr.Inst(instr.OpAND, instr.Dev(instr.DeviceInput, 2)),
		instr.Inst(instr.OpANI, instr.Dev(instr.DeviceMemory, 5)),
	)
	want := "X001 AND X002 AND NOT M005"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// TestCondition_Parallel verifies parallel branches combine with OR
func TestCondition_Parallel(t *testing.T) {
	got := condText(t,
		instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 1)),
		instr.Inst(instr.OpOR, instr.Dev(instr.DeviceInput, 2)),
	)
	want := "X001 OR X002"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// TestCondition_MixedGrouping verifies the expression tree keeps the real
// ladder grouping: an OR branch inside a series chain is parenthesized
func TestCondition_MixedGrouping(t *testing.T) {
	got := condText(t,
		instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 1)),
		instr.Inst(instr.OpOR, instr.Dev(instr.DeviceMemory, 100)),
		instr.Inst(instr.OpAND, instr.Dev(instr.DeviceInput, 2)),
	)
	want := "(X001 OR M100) AND X002"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// TestCondition_BlockMerge verifies ANB/ORB merge whole logic blocks
func TestCondition_BlockMerge(t *testing.T) {
	// (X001 OR X002) AND (X003 OR X004) via two blocks merged by ANB
	got := condText(t,
		instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 1)),
		instr.Inst(instr.OpOR, instr.Dev(instr.DeviceInput, 2)),
		instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 3)),
		instr.Inst(instr.OpOR, instr.Dev(instr.DeviceInput, 4)),
		instr.Inst(instr.OpANB),
	)
	want := "(X001 OR X002) AND (X003 OR X004)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	// Two series blocks merged by ORB
	got = condText(t,
		instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 1)),
		instr.Inst(instr.OpAND, instr.Dev(instr.DeviceInput, 2)),
		instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 3)),
		instr.Inst(instr.OpAND, instr.Dev(instr.DeviceInput, 4)),
		instr.Inst(instr.OpORB),
	)
	want = "X001 AND X002 OR X003 AND X004"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// TestCondition_NoContacts verifies a CJ with no preceding logic renders
// an empty condition
func TestCondition_NoContacts(t *testing.T) {
	if got := condText(t); got != "" {
		t.Errorf("Expected empty condition, got %q", got)
	}
}
