package model

// CheckStrategy identifies how a tool's presence is probed. Exactly one
// strategy applies to any given tool; resolution precedence lives in the
// toolcheck package.
type CheckStrategy int

const (
	// StrategyCommand runs an explicit shell command; exit 0 means installed.
	StrategyCommand CheckStrategy = iota
	// StrategyPath checks that an explicit filesystem path exists.
	StrategyPath
	// StrategyPackageManager asks the configured package manager whether the
	// package is installed.
	StrategyPackageManager
	// StrategyExpression evaluates a boolean shell expression.
	StrategyExpression
	// StrategyDefault looks up an executable named after the tool on PATH.
	StrategyDefault
)

// String returns the strategy name used in logs and error messages.
func (s CheckStrategy) String() string {
	switch s {
	case StrategyCommand:
		return "command"
	case StrategyPath:
		return "path"
	case StrategyPackageManager:
		return "package_manager"
	case StrategyExpression:
		return "expression"
	case StrategyDefault:
		return "default"
	}
	return "unknown"
}

// ToolConfig is the declared configuration for a single external tool.
// Empty probe fields simply mean the corresponding strategy does not apply;
// a tool with no probe fields at all falls through to StrategyDefault, so
// every tool is checkable.
type ToolConfig struct {
	ID string

	// RequiredVersion is a semver minimum bound within the same major
	// version. Validation only runs when VersionCommand is also set.
	RequiredVersion string
	// VersionCommand is a shell command whose output contains the observed
	// version.
	VersionCommand string

	// CheckCommand is an explicit probe command (highest precedence).
	CheckCommand string
	// CheckPath is an explicit filesystem path to test for existence.
	CheckPath string
	// Package is the package-manager package name to query.
	Package string
	// Expression is a boolean shell expression; truthy exit means installed.
	Expression string

	// Optional tools never block a module from being loadable.
	Optional bool
}
