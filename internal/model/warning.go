package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WarningKind classifies the recoverable anomalies the engine surfaces
// instead of failing.
type WarningKind int

const (
	// WarnDanglingDependency means an edge referenced a module absent from
	// the graph and was dropped.
	WarnDanglingDependency WarningKind = iota
	// WarnCycleBreak means the orderer force-emitted a node to break a
	// dependency cycle.
	WarnCycleBreak
	// WarnProbeTimeout means a tool probe exceeded its per-check timeout.
	WarnProbeTimeout
)

// String returns the kind name used in reports.
func (k WarningKind) String() string {
	switch k {
	case WarnDanglingDependency:
		return "dangling_dependency"
	case WarnCycleBreak:
		return "cycle_break"
	case WarnProbeTimeout:
		return "probe_timeout"
	}
	return "unknown"
}

// MarshalJSON renders the kind as its string name in reports.
func (k WarningKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts the string names produced by MarshalJSON, so emitted
// warning documents can be decoded back into the model.
func (k *WarningKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "dangling_dependency":
		*k = WarnDanglingDependency
	case "cycle_break":
		*k = WarnCycleBreak
	case "probe_timeout":
		*k = WarnProbeTimeout
	default:
		return fmt.Errorf("unknown warning kind %q", name)
	}
	return nil
}

// Warning is a structured, renderer-agnostic record of a recovered anomaly.
// Rendering and logging of warnings belong to the caller.
type Warning struct {
	Kind WarningKind `json:"kind"`
	// Subject is the module or tool ID the warning is about.
	Subject string `json:"subject"`
	// Related holds the other participating IDs: the missing dependency for
	// a dangling edge, or the unsatisfied dependencies cut by a cycle break.
	Related []string `json:"related,omitempty"`
	Detail  string   `json:"detail"`
}

// DanglingDependency builds the warning for a dropped edge from `from` to a
// module that is not present in the graph.
func DanglingDependency(from, missing string) Warning {
	return Warning{
		Kind:    WarnDanglingDependency,
		Subject: from,
		Related: []string{missing},
		Detail:  fmt.Sprintf("module %q depends on %q, which is not in the graph; edge dropped", from, missing),
	}
}

// CycleBreak builds the warning for a forced emission of `node` whose listed
// dependencies were still unsatisfied.
func CycleBreak(node string, unsatisfied []string) Warning {
	return Warning{
		Kind:    WarnCycleBreak,
		Subject: node,
		Related: unsatisfied,
		Detail: fmt.Sprintf("dependency cycle broken at %q (unsatisfied: %s)",
			node, strings.Join(unsatisfied, ", ")),
	}
}

// ProbeTimeout builds the warning for a tool probe that hit its deadline.
func ProbeTimeout(toolID string) Warning {
	return Warning{
		Kind:    WarnProbeTimeout,
		Subject: toolID,
		Detail:  fmt.Sprintf("probe for tool %q timed out", toolID),
	}
}
