package instr

import (
	"fmt"
)

// DeviceKind identifies the device class a reference addresses
type DeviceKind uint8

// Device classes in on-disk order: the operand word's top nibble selects
// the kind, the low 12 bits the device number.
const (
	DeviceInput   DeviceKind = 0x0 // X: input contact
	DeviceOutput  DeviceKind = 0x1 // Y: output coil
	DeviceMemory  DeviceKind = 0x2 // M: internal relay
	DeviceData    DeviceKind = 0x3 // D: data register
	DeviceTimer   DeviceKind = 0x4 // T: timer
	DeviceCounter DeviceKind = 0x5 // C: counter
	DeviceState   DeviceKind = 0x6 // S: state relay
)

var deviceKindPrefix = map[DeviceKind]string{
	DeviceInput:   "X",
	DeviceOutput:  "Y",
	DeviceMemory:  "M",
	DeviceData:    "D",
	DeviceTimer:   "T",
	DeviceCounter: "C",
	DeviceState:   "S",
}

// Prefix returns the single-letter device prefix ("X", "Y", ...)
func (k DeviceKind) Prefix() string {
	if p, ok := deviceKindPrefix[k]; ok {
		return p
	}
	return "?"
}

// Valid reports whether the kind is a recognized device class
func (k DeviceKind) Valid() bool {
	_, ok := deviceKindPrefix[k]
	return ok
}

// Operand is the closed variant type for instruction operands: a device
// reference, a numeric literal, or a pointer label.
type Operand interface {
	fmt.Stringer
	isOperand()
}

// DeviceRef is an operand addressing a device. Equality is kind+number,
// which makes DeviceRef usable as a map key in the symbol table.
type DeviceRef struct {
	Kind   DeviceKind
	Number uint16
}

func (DeviceRef) isOperand() {}

// Address returns the normalized textual form, e.g. "X001", "D100".
// Numbers are zero-padded to three digits to match the originating tool.
func (d DeviceRef) Address() string {
	return fmt.Sprintf("%s%03d", d.Kind.Prefix(), d.Number)
}

// String returns the normalized address
func (d DeviceRef) String() string {
	return d.Address()
}

// Literal is a numeric constant operand (e.g. a FOR repeat count)
type Literal struct {
	Value uint16
}

func (Literal) isOperand() {}

// String renders the literal in the conventional K-constant form
func (l Literal) String() string {
	return fmt.Sprintf("K%d", l.Value)
}

// Label is a pointer-label operand, the target of CJ/CALL and the payload
// of an LBL definition.
type Label struct {
	Number uint16
}

func (Label) isOperand() {}

// String renders the pointer name, e.g. "P12"
func (l Label) String() string {
	return fmt.Sprintf("P%d", l.Number)
}
