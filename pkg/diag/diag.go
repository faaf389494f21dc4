// Package diag defines the diagnostics accumulated during an analysis pass.
// Non-fatal findings (skipped container entries, unresolved jump targets,
// unreachable networks) are recorded here instead of aborting the pass.
package diag

import (
	"fmt"
)

// Severity classifies how serious a diagnostic is
type Severity int

const (
	// Warning diagnostics flag degraded output that is still usable
	Warning Severity = iota
	// Error diagnostics flag dropped or unresolved program structure
	Error
)

// String returns the string representation of a severity
func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the severity as its string form
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses a severity from its string form
func (s *Severity) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"warning"`:
		*s = Warning
	case `"error"`:
		*s = Error
	default:
		return fmt.Errorf("unknown severity %s", data)
	}
	return nil
}

// Kind identifies the condition a diagnostic reports
type Kind string

const (
	// SkippedEntry reports a container entry that could not be read
	SkippedEntry Kind = "skipped_entry"
	// DecodeFailed reports a network whose instruction stream could not be decoded
	DecodeFailed Kind = "decode_failed"
	// UnresolvedJumpTarget reports a CJ/CALL whose label has no definition
	UnresolvedJumpTarget Kind = "unresolved_jump_target"
	// UnreachableNetwork reports a network never reached from the program entry
	UnreachableNetwork Kind = "unreachable_network"
)

// Diagnostic is a single non-fatal finding attached to an analysis pass.
// Network is -1 when the finding is not tied to a specific network.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Network  int      `json:"network_id"`
	Message  string   `json:"message"`
}

// String renders a diagnostic for logs and CLI output
func (d Diagnostic) String() string {
	if d.Network >= 0 {
		return fmt.Sprintf("%s: %s (network %d): %s", d.Severity, d.Kind, d.Network, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Kind, d.Message)
}

// Errorf builds an error-severity diagnostic
func Errorf(kind Kind, network int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Kind: kind, Network: network, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-severity diagnostic
func Warnf(kind Kind, network int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Kind: kind, Network: network, Message: fmt.Sprintf(format, args...)}
}

// FilterSeverity returns the diagnostics matching the given severity,
// preserving order
func FilterSeverity(list []Diagnostic, severity Severity) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, d := range list {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}
