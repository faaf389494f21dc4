package analysis

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ladderflow/ladderflow/pkg/container"
	"github.com/ladderflow/ladderflow/pkg/instr"
)

// genArtifact turns a slice of (device number, jump target) seeds into a
// well-formed blob artifact: one logic network per seed plus a labeled
// END network so every program terminates
func genArtifact(seeds []uint16, compress bool) []byte {
	var records []container.Record
	for i, seed := range seeds {
		ins := []instr.Instruction{
			instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, seed%0x1000)),
		}
		if seed%3 == 0 {
			ins = append(ins, instr.Inst(instr.OpCJ, instr.Label{Number: 1}))
		} else {
			ins = append(ins, instr.Inst(instr.OpOUT, instr.Dev(instr.DeviceOutput, seed%0x1000)))
		}
		records = append(records, container.Record{NetworkID: i + 1, Payload: instr.EncodeRecord(ins)})
	}
	records = append(records, container.Record{
		NetworkID: len(seeds) + 1,
		Payload: instr.EncodeRecord([]instr.Instruction{
			instr.Inst(instr.OpLBL, instr.Label{Number: 1}),
			instr.Inst(instr.OpEND),
		}),
	})
	return container.WriteBlob(records, compress)
}

// TestAnalysisProperties verifies pass invariants over generated programs
func TestAnalysisProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)
	analyzer := New(Options{Workers: 4})

	properties.Property("re-analysis is deterministic", prop.ForAll(
		func(seeds []uint16, compress bool) bool {
			data := genArtifact(seeds, compress)
			first, err := analyzer.Run(context.Background(), data)
			if err != nil {
				return false
			}
			second, err := analyzer.Run(context.Background(), data)
			if err != nil {
				return false
			}
			return first.Diagram().Markup == second.Diagram().Markup
		},
		gen.SliceOf(gen.UInt16()),
		gen.Bool(),
	))

	properties.Property("every edge references existing nodes", prop.ForAll(
		func(seeds []uint16) bool {
			actx, err := analyzer.Run(context.Background(), genArtifact(seeds, false))
			if err != nil {
				return false
			}
			g := actx.Graph()
			for _, e := range g.Edges {
				if g.Node(e.From) == nil || g.Node(e.To) == nil {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt16()),
	))

	properties.Property("device lookups agree with decoded networks", prop.ForAll(
		func(seeds []uint16) bool {
			actx, err := analyzer.Run(context.Background(), genArtifact(seeds, false))
			if err != nil {
				return false
			}
			for _, dev := range actx.Devices() {
				ids, ok := actx.DeviceNetworks(dev.Address())
				if !ok || len(ids) == 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt16()),
	))

	properties.TestingRun(t)
}
