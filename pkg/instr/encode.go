package instr

import (
	"encoding/binary"
)

// EncodeRecord encodes an instruction sequence into the record wire form.
// It is the inverse of DecodeRecord and is used by fixture builders.
func EncodeRecord(instructions []Instruction) []byte {
	var out []byte
	for _, in := range instructions {
		opWord := uint16(in.Opcode)
		if in.Opcode == OpUnknown {
			opWord = in.Raw
		}
		out = binary.LittleEndian.AppendUint16(out, opWord)
		out = binary.LittleEndian.AppendUint16(out, uint16(len(in.Operands)))
		for _, operand := range in.Operands {
			out = binary.LittleEndian.AppendUint16(out, encodeOperand(operand))
		}
	}
	return out
}

func encodeOperand(operand Operand) uint16 {
	switch op := operand.(type) {
	case DeviceRef:
		return uint16(op.Kind)<<12 | op.Number&0x0FFF
	case Literal:
		return uint16(operandClassLiteral)<<12 | op.Value&0x0FFF
	case Label:
		return uint16(operandClassLabel)<<12 | op.Number&0x0FFF
	default:
		return 0
	}
}

// Inst is a convenience constructor for building instruction sequences in
// fixtures and tests.
func Inst(op Opcode, operands ...Operand) Instruction {
	return Instruction{Opcode: op, Raw: uint16(op), Operands: operands}
}

// Dev is a convenience constructor for a device reference operand
func Dev(kind DeviceKind, number uint16) DeviceRef {
	return DeviceRef{Kind: kind, Number: number}
}
