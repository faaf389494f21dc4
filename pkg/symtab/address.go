package symtab

import (
	"strconv"
	"strings"

	"github.com/ladderflow/ladderflow/pkg/instr"
)

var prefixKinds = map[string]instr.DeviceKind{
	"X": instr.DeviceInput,
	"Y": instr.DeviceOutput,
	"M": instr.DeviceMemory,
	"D": instr.DeviceData,
	"T": instr.DeviceTimer,
	"C": instr.DeviceCounter,
	"S": instr.DeviceState,
}

// ParseAddress parses a textual device address ("X001", "d100") into a
// device reference. Leading zeros and case are insignificant.
func ParseAddress(address string) (instr.DeviceRef, bool) {
	address = strings.ToUpper(strings.TrimSpace(address))
	if len(address) < 2 {
		return instr.DeviceRef{}, false
	}
	kind, ok := prefixKinds[address[:1]]
	if !ok {
		return instr.DeviceRef{}, false
	}
	number, err := strconv.Atoi(address[1:])
	if err != nil || number < 0 || number > 0x0FFF {
		return instr.DeviceRef{}, false
	}
	return instr.DeviceRef{Kind: kind, Number: uint16(number)}, true
}
