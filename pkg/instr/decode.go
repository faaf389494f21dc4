package instr

import (
	"encoding/binary"
	"fmt"
)

// maxOperands bounds the operand count of a single instruction. Nothing in
// the recognized vocabulary takes more than three operands; the headroom
// covers unknown vendor instructions without letting a corrupt count word
// run away.
const maxOperands = 8

// DecodeError reports a malformed instruction stream. Offset is the byte
// position within the record where decoding failed.
type DecodeError struct {
	Reason string
	Offset int
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed at byte %d: %s", e.Offset, e.Reason)
}

// operand class nibbles beyond the device kinds
const (
	operandClassLabel   = 0xE
	operandClassLiteral = 0xF
)

// DecodeRecord decodes one raw network record into an ordered instruction
// sequence. Unknown opcodes are preserved as opaque instructions so device
// cross-referencing still covers them; malformed structure (truncation,
// runaway operand counts, unrecognized operand classes) is a DecodeError.
func DecodeRecord(id int, payload []byte, comment string) (Network, error) {
	net := Network{ID: id, Comment: comment}

	offset := 0
	for offset < len(payload) {
		if len(payload)-offset < 4 {
			return Network{}, &DecodeError{Reason: "truncated instruction header", Offset: offset}
		}
		opWord := binary.LittleEndian.Uint16(payload[offset:])
		nops := int(binary.LittleEndian.Uint16(payload[offset+2:]))
		if nops > maxOperands {
			return Network{}, &DecodeError{
				Reason: fmt.Sprintf("operand count %d exceeds maximum %d", nops, maxOperands),
				Offset: offset + 2,
			}
		}
		if len(payload)-offset-4 < nops*2 {
			return Network{}, &DecodeError{Reason: "truncated operand list", Offset: offset + 4}
		}

		operands := make([]Operand, 0, nops)
		for i := 0; i < nops; i++ {
			wordOffset := offset + 4 + i*2
			word := binary.LittleEndian.Uint16(payload[wordOffset:])
			operand, err := decodeOperand(word, wordOffset)
			if err != nil {
				return Network{}, err
			}
			operands = append(operands, operand)
		}

		in := Instruction{Opcode: Opcode(opWord), Raw: opWord, Operands: operands}
		if !in.Opcode.Known() {
			in.Opcode = OpUnknown
		}
		net.Instructions = append(net.Instructions, in)

		offset += 4 + nops*2
	}

	return net, nil
}

// decodeOperand decodes a single operand word. The top nibble selects the
// operand class, the low 12 bits the value. Device identity must never be
// guessed: an unrecognized class is an error, not a fallback device.
func decodeOperand(word uint16, offset int) (Operand, error) {
	class := word >> 12
	value := word & 0x0FFF

	switch class {
	case operandClassLiteral:
		return Literal{Value: value}, nil
	case operandClassLabel:
		return Label{Number: value}, nil
	default:
		kind := DeviceKind(class)
		if !kind.Valid() {
			return nil, &DecodeError{
				Reason: fmt.Sprintf("unrecognized operand class %#x", class),
				Offset: offset,
			}
		}
		return DeviceRef{Kind: kind, Number: value}, nil
	}
}
