package config

// Model is the unified, format-agnostic representation of a loaded
// configuration source: a workspace file or a single module manifest.
type Model struct {
	// Fibers preserves declaration order; the orderer's default tie-break is
	// input order, so order here is significant.
	Fibers []*Fiber
	// Tools is keyed by tool ID. Later sources override earlier ones when
	// models are merged (workspace wins over module manifests).
	Tools map[string]*Tool
	// PackageManager is the optional package-manager probe configuration.
	// Nil when no package_manager block was declared.
	PackageManager *PackageManager
}

// NewModel returns an empty model with initialized collections.
func NewModel() *Model {
	return &Model{Tools: make(map[string]*Tool)}
}

// Fiber is the format-agnostic representation of a `fiber` block.
type Fiber struct {
	Name string
	// Enabled is nil when the block did not set the attribute, so the
	// registry can distinguish "unset" from an explicit false.
	Enabled   *bool
	DependsOn []string
	// Tools lists the fiber's own tool requirements by ID.
	Tools  []string
	Chains []*Chain
}

// Chain is the format-agnostic representation of a `chain` block nested in
// a fiber.
type Chain struct {
	Name    string
	Enabled *bool
	Tools   []string
}

// Tool is the format-agnostic representation of a `tool` block.
type Tool struct {
	Name            string
	RequiredVersion string
	VersionCommand  string
	CheckCommand    string
	CheckPath       string
	Package         string
	Expression      string
	Optional        bool
}

// PackageManager configures the package-manager membership probe. The query
// command may contain the placeholder `{package}`, replaced per tool.
type PackageManager struct {
	Name         string
	ListCommand  string
	QueryCommand string
}
