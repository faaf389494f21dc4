package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/ladderflow/ladderflow/pkg/diag"
	"github.com/ladderflow/ladderflow/pkg/diagram"
	"github.com/ladderflow/ladderflow/pkg/flow"
	"github.com/ladderflow/ladderflow/pkg/instr"
	"github.com/ladderflow/ladderflow/pkg/symtab"
)

// Context is the immutable result of one analysis pass. Once assembled it
// is never mutated, so concurrent readers need no locking. Re-running a
// pass on the same input yields a fresh Context with a new PassID but
// byte-identical derived artifacts.
type Context struct {
	passID    uuid.UUID
	createdAt time.Time

	networks    []instr.Network
	graph       *flow.Graph
	diagram     *diagram.Diagram
	symbols     *symtab.Table
	diagnostics []diag.Diagnostic
}

// PassID identifies this analysis pass
func (c *Context) PassID() uuid.UUID { return c.passID }

// CreatedAt is the wall-clock time the pass completed
func (c *Context) CreatedAt() time.Time { return c.createdAt }

// NetworkCount is the number of networks that decoded successfully
func (c *Context) NetworkCount() int { return len(c.networks) }

// Networks returns the decoded networks in program order
func (c *Context) Networks() []instr.Network {
	out := make([]instr.Network, len(c.networks))
	copy(out, c.networks)
	return out
}

// Graph returns the control-flow graph. Callers must treat it as
// read-only.
func (c *Context) Graph() *flow.Graph { return c.graph }

// Diagram returns the flowchart markup and node metadata
func (c *Context) Diagram() *diagram.Diagram { return c.diagram }

// Node looks up one graph node by id, nil when absent
func (c *Context) Node(id string) *flow.Node { return c.graph.Node(id) }

// DeviceNetworks returns the sorted network ids referencing the given
// device address, e.g. "X1" or "X001". An unparsable address reports ok
// false; a valid but unreferenced address reports ok true and no ids.
func (c *Context) DeviceNetworks(address string) ([]int, bool) {
	ref, ok := symtab.ParseAddress(address)
	if !ok {
		return nil, false
	}
	return c.symbols.Lookup(ref), true
}

// Devices returns every device referenced anywhere in the program, in
// deterministic kind-then-number order
func (c *Context) Devices() []instr.DeviceRef { return c.symbols.Devices() }

// Diagnostics returns every diagnostic accumulated across the pass, in
// pipeline-stage order
func (c *Context) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// DiagnosticsBySeverity filters the pass diagnostics to one severity
func (c *Context) DiagnosticsBySeverity(sev diag.Severity) []diag.Diagnostic {
	return diag.FilterSeverity(c.diagnostics, sev)
}
