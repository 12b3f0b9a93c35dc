package model

// ModuleKind distinguishes between the two kinds of modules loom manages.
type ModuleKind int

const (
	// Fiber is a top-level module grouping one or more chains. It is the
	// unit that can be globally enabled or disabled.
	Fiber ModuleKind = iota
	// Chain is a sub-module belonging to exactly one fiber.
	Chain
)

// String returns the lower-case name of the kind for logs and reports.
func (k ModuleKind) String() string {
	switch k {
	case Fiber:
		return "fiber"
	case Chain:
		return "chain"
	}
	return "unknown"
}

// Provenance records how a module entered the registry.
type Provenance int

const (
	// Discovered means the module was found only by scanning the modules
	// directory.
	Discovered Provenance = iota
	// Configured means the module was explicitly declared in the workspace
	// configuration, whether or not it was also discovered on disk.
	Configured
)

// String returns the lower-case name of the provenance for logs and reports.
func (p Provenance) String() string {
	if p == Configured {
		return "configured"
	}
	return "discovered"
}

// ModuleNode is a single module record. Nodes are assembled by the registry
// during configuration load and discovery, and are treated as immutable once
// the dependency graph is built. Identity is the ID; IDs are unique within a
// kind.
type ModuleNode struct {
	ID         string
	Kind       ModuleKind
	Enabled    bool
	Provenance Provenance

	// ParentFiber is the owning fiber's ID for chain nodes. Empty for fibers.
	ParentFiber string

	// SelfDeps holds dependency IDs self-reported by the module's own
	// manifest. ConfigDeps holds dependency IDs declared for this module in
	// the workspace configuration. The graph builder unions the two; neither
	// source overrides the other.
	SelfDeps   []string
	ConfigDeps []string

	// ToolDeps holds the IDs of external tools this module requires.
	ToolDeps []string
}

// CoreFiberID is the conventional name of the single foundational fiber that
// every other module implicitly depends on.
const CoreFiberID = "core"

// DotfilesFiberID is the conventional name of the fiber pinned immediately
// after core when special-fiber pinning is enabled.
const DotfilesFiberID = "dotfiles"
