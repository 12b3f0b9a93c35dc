// Package schema declares the HCL-tagged structs that workspace files and
// module manifests decode into. Translation into the format-agnostic config
// model happens in the internal/hcl package.
package schema

import "github.com/hashicorp/hcl/v2"

// Chain represents a `chain` block nested inside a fiber.
type Chain struct {
	Name    string   `hcl:"name,label"`
	Enabled *bool    `hcl:"enabled,optional"`
	Tools   []string `hcl:"tools,optional"`
}

// Fiber represents a `fiber` block from a workspace file or a module
// manifest. The enabled attribute is an expression so configurations can
// gate fibers on the ambient `os`/`arch` variables.
type Fiber struct {
	Name      string   `hcl:"name,label"`
	Enabled   *bool    `hcl:"enabled,optional"`
	DependsOn []string `hcl:"depends_on,optional"`
	Tools     []string `hcl:"tools,optional"`
	Chains    []*Chain `hcl:"chain,block"`
}

// Tool represents a `tool` block declaring how a tool is probed.
type Tool struct {
	Name            string `hcl:"name,label"`
	RequiredVersion string `hcl:"required_version,optional"`
	VersionCommand  string `hcl:"version_command,optional"`
	CheckCommand    string `hcl:"check_command,optional"`
	CheckPath       string `hcl:"check_path,optional"`
	Package         string `hcl:"check_package,optional"`
	Expression      string `hcl:"check_expression,optional"`
	Optional        bool   `hcl:"optional,optional"`
}

// PackageManager represents the `package_manager` block.
type PackageManager struct {
	Name         string `hcl:"name,label"`
	ListCommand  string `hcl:"list_command"`
	QueryCommand string `hcl:"query_command,optional"`
}

// Root represents the top-level structure of any loom HCL file. Workspace
// files and module manifests share one schema; a manifest simply tends to
// declare a single fiber.
type Root struct {
	Fibers          []*Fiber          `hcl:"fiber,block"`
	Tools           []*Tool           `hcl:"tool,block"`
	PackageManagers []*PackageManager `hcl:"package_manager,block"`
	Body            hcl.Body          `hcl:",remain"`
}
