package instr

import (
	"strings"
)

// Instruction is one decoded ladder instruction: an opcode plus its
// ordered operands. Instructions are immutable once decoded.
type Instruction struct {
	Opcode   Opcode
	Raw      uint16 // on-disk opcode word, meaningful when Opcode is OpUnknown
	Operands []Operand
}

// String renders the instruction in mnemonic form, e.g. "AND X002"
func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.opcodeName()
	}
	parts := make([]string, 0, len(in.Operands)+1)
	parts = append(parts, in.opcodeName())
	for _, op := range in.Operands {
		parts = append(parts, op.String())
	}
	return strings.Join(parts, " ")
}

func (in Instruction) opcodeName() string {
	if in.Opcode == OpUnknown {
		return Opcode(in.Raw).String()
	}
	return in.Opcode.String()
}

// Devices returns the device references among the operands, in order
func (in Instruction) Devices() []DeviceRef {
	var devs []DeviceRef
	for _, op := range in.Operands {
		if d, ok := op.(DeviceRef); ok {
			devs = append(devs, d)
		}
	}
	return devs
}

// TargetLabel returns the first label operand, if any
func (in Instruction) TargetLabel() (Label, bool) {
	for _, op := range in.Operands {
		if l, ok := op.(Label); ok {
			return l, true
		}
	}
	return Label{}, false
}

// Network is one ladder network (rung): an ordered instruction list with
// an optional comment. Network order defines fall-through execution.
type Network struct {
	ID           int
	Instructions []Instruction
	Comment      string
}

// Devices returns every device reference in the network, in instruction order
func (n Network) Devices() []DeviceRef {
	var devs []DeviceRef
	for _, in := range n.Instructions {
		devs = append(devs, in.Devices()...)
	}
	return devs
}

// Labels returns the pointer labels defined at the head of the network
func (n Network) Labels() []Label {
	var labels []Label
	for _, in := range n.Instructions {
		if in.Opcode != OpLBL {
			break
		}
		if l, ok := in.TargetLabel(); ok {
			labels = append(labels, l)
		}
	}
	return labels
}
