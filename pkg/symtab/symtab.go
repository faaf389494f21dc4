// Package symtab builds the device cross-reference: every device referenced
// anywhere in a decodable network, mapped to the networks referencing it.
// The table is populated during decoding, not graph building, so devices in
// unreachable networks are still indexed.
package symtab

import (
	"golang.org/x/exp/slices"

	"github.com/ladderflow/ladderflow/pkg/instr"
)

// Table maps device references to the set of network ids referencing them.
// It is append-only during a pass and read-only afterwards; Freeze marks
// the transition.
type Table struct {
	refs   map[instr.DeviceRef]map[int]bool
	frozen bool
}

// New creates an empty symbol table
func New() *Table {
	return &Table{refs: make(map[instr.DeviceRef]map[int]bool)}
}

// Record registers every device reference in the network. Calling Record
// after Freeze panics: the table is immutable once assembly completes.
func (t *Table) Record(net instr.Network) {
	if t.frozen {
		panic("symtab: Record after Freeze")
	}
	for _, dev := range net.Devices() {
		set, ok := t.refs[dev]
		if !ok {
			set = make(map[int]bool)
			t.refs[dev] = set
		}
		set[net.ID] = true
	}
}

// Freeze marks the table read-only
func (t *Table) Freeze() {
	t.frozen = true
}

// Lookup returns the network ids referencing the device, in ascending
// order. A device that was never referenced yields an empty slice, not an
// error.
func (t *Table) Lookup(dev instr.DeviceRef) []int {
	set, ok := t.refs[dev]
	if !ok {
		return nil
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LookupAddress resolves a normalized address string (e.g. "X001") and
// returns the referencing network ids. Unknown or unparsable addresses
// yield an empty slice.
func (t *Table) LookupAddress(address string) []int {
	dev, ok := ParseAddress(address)
	if !ok {
		return nil
	}
	return t.Lookup(dev)
}

// Devices returns every referenced device in deterministic order: by kind,
// then by number.
func (t *Table) Devices() []instr.DeviceRef {
	devs := make([]instr.DeviceRef, 0, len(t.refs))
	for dev := range t.refs {
		devs = append(devs, dev)
	}
	slices.SortFunc(devs, func(a, b instr.DeviceRef) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return int(a.Number) - int(b.Number)
	})
	return devs
}

// Len returns the number of distinct devices referenced
func (t *Table) Len() int {
	return len(t.refs)
}
