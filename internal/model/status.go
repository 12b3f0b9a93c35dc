package model

import (
	"encoding/json"
	"time"
)

// ToolStatus is the terminal status of a single tool check.
type ToolStatus int

const (
	// StatusUnknown is the state of a tool that has never been checked.
	StatusUnknown ToolStatus = iota
	// StatusInstalled means the probe confirmed the tool is present.
	StatusInstalled
	// StatusNotInstalled means the probe signalled the tool is absent.
	StatusNotInstalled
	// StatusError means the probe infrastructure itself failed (timeout,
	// pool error, misconfigured strategy).
	StatusError
)

// String returns the status name used in reports.
func (s ToolStatus) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusNotInstalled:
		return "not_installed"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// MarshalJSON renders the status as its string name in reports.
func (s ToolStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the string names produced by MarshalJSON. Unknown
// names map to StatusUnknown so stale cache files degrade to a re-check
// rather than an error.
func (s *ToolStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "installed":
		*s = StatusInstalled
	case "not_installed":
		*s = StatusNotInstalled
	case "error":
		*s = StatusError
	default:
		*s = StatusUnknown
	}
	return nil
}

// ToolStatusResult is an immutable snapshot of one check invocation. A
// re-check produces a new result; results are never mutated in place.
type ToolStatusResult struct {
	Status          ToolStatus `json:"status"`
	ObservedVersion string     `json:"observed_version,omitempty"`
	// VersionValid is false only when a required version was declared, a
	// version probe ran, and the observed version failed the policy
	// (different major, or below the minimum bound).
	VersionValid bool   `json:"version_valid"`
	Message      string `json:"message,omitempty"`
	// DurationMS is the wall-clock cost of the check in milliseconds.
	DurationMS int64 `json:"check_duration_ms"`
}

// SetDuration records the check's wall-clock cost.
func (r *ToolStatusResult) SetDuration(d time.Duration) {
	r.DurationMS = d.Milliseconds()
}

// Usable reports whether the tool satisfies a module requirement: present
// and version-valid.
func (r ToolStatusResult) Usable() bool {
	return r.Status == StatusInstalled && r.VersionValid
}
