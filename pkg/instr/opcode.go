// Package instr defines the decoded instruction model for ladder networks
// and the decoder that produces it from raw record bytes.
package instr

import (
	"fmt"
)

// Opcode identifies a ladder instruction
type Opcode uint16

// Instruction vocabulary. The numeric values match the on-disk encoding
// used by GX Works-style exports.
const (
	OpLD  Opcode = 0x00 // load normally-open contact
	OpLDI Opcode = 0x01 // load normally-closed contact
	OpAND Opcode = 0x02
	OpANI Opcode = 0x03
	OpOR  Opcode = 0x04
	OpORI Opcode = 0x05
	OpANB Opcode = 0x06 // AND the two top logic blocks
	OpORB Opcode = 0x07 // OR the two top logic blocks
	OpMPS Opcode = 0x08 // push branch point
	OpMRD Opcode = 0x09 // reread branch point
	OpMPP Opcode = 0x0A // pop branch point
	OpOUT Opcode = 0x0B
	OpSET Opcode = 0x0C
	OpRST Opcode = 0x0D
	OpPLS Opcode = 0x0E
	OpPLF Opcode = 0x0F

	OpCJ   Opcode = 0x10 // conditional jump to pointer label
	OpCALL Opcode = 0x11 // subroutine call to pointer label
	OpEND  Opcode = 0x12 // program / subroutine end
	OpFEND Opcode = 0x13 // main program end
	OpFOR  Opcode = 0x14 // loop bracket open, literal repeat count
	OpNEXT Opcode = 0x15 // loop bracket close
	OpLBL  Opcode = 0x16 // pointer label definition at the head of a network

	OpMOV Opcode = 0x20
	OpADD Opcode = 0x21
	OpSUB Opcode = 0x22
	OpCMP Opcode = 0x23

	// OpUnknown marks an opcode outside the recognized vocabulary. The
	// instruction is kept as an opaque process step so its device operands
	// still reach the symbol table.
	OpUnknown Opcode = 0xFFFF
)

var opcodeNames = map[Opcode]string{
	OpLD: "LD", OpLDI: "LDI", OpAND: "AND", OpANI: "ANI", OpOR: "OR", OpORI: "ORI",
	OpANB: "ANB", OpORB: "ORB", OpMPS: "MPS", OpMRD: "MRD", OpMPP: "MPP",
	OpOUT: "OUT", OpSET: "SET", OpRST: "RST", OpPLS: "PLS", OpPLF: "PLF",
	OpCJ: "CJ", OpCALL: "CALL", OpEND: "END", OpFEND: "FEND",
	OpFOR: "FOR", OpNEXT: "NEXT", OpLBL: "LBL",
	OpMOV: "MOV", OpADD: "ADD", OpSUB: "SUB", OpCMP: "CMP",
}

// String returns the mnemonic for the opcode
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_%#04x", uint16(op))
}

// Known reports whether the opcode belongs to the recognized vocabulary
func (op Opcode) Known() bool {
	_, ok := opcodeNames[op]
	return ok
}

// IsContact reports whether the opcode reads a boolean condition
// (LD/LDI/AND/ANI/OR/ORI)
func (op Opcode) IsContact() bool {
	return op <= OpORI
}

// IsBlock reports whether the opcode merges logic blocks (ANB/ORB)
func (op Opcode) IsBlock() bool {
	return op == OpANB || op == OpORB
}

// IsBranch reports whether the opcode manages ladder branch points
// (MPS/MRD/MPP)
func (op Opcode) IsBranch() bool {
	return op == OpMPS || op == OpMRD || op == OpMPP
}

// IsOutput reports whether the opcode drives a coil (OUT/SET/RST/PLS/PLF)
func (op Opcode) IsOutput() bool {
	return op >= OpOUT && op <= OpPLF
}

// IsFlow reports whether the opcode redirects or terminates execution
func (op Opcode) IsFlow() bool {
	switch op {
	case OpCJ, OpCALL, OpEND, OpFEND, OpFOR, OpNEXT:
		return true
	}
	return false
}

// IsTerminal reports whether the opcode unconditionally ends execution
func (op Opcode) IsTerminal() bool {
	return op == OpEND || op == OpFEND
}
