package hcl

import (
	"github.com/loomworks/loom/internal/config"
	"github.com/loomworks/loom/internal/schema"
)

// mergeRoot translates one decoded file into the agnostic model, merging it
// with whatever earlier files contributed. Fibers accumulate in declaration
// order; tool blocks with the same name override earlier ones, so files
// loaded later (the workspace) win over files loaded earlier (manifests).
func mergeRoot(model *config.Model, root *schema.Root) {
	for _, f := range root.Fibers {
		model.Fibers = append(model.Fibers, translateFiber(f))
	}
	for _, t := range root.Tools {
		model.Tools[t.Name] = translateTool(t)
	}
	for _, pm := range root.PackageManagers {
		model.PackageManager = &config.PackageManager{
			Name:         pm.Name,
			ListCommand:  pm.ListCommand,
			QueryCommand: pm.QueryCommand,
		}
	}
}

// translateFiber converts the HCL-specific fiber schema into the agnostic model.
func translateFiber(f *schema.Fiber) *config.Fiber {
	out := &config.Fiber{
		Name:      f.Name,
		Enabled:   f.Enabled,
		DependsOn: f.DependsOn,
		Tools:     f.Tools,
	}
	for _, c := range f.Chains {
		out.Chains = append(out.Chains, &config.Chain{
			Name:    c.Name,
			Enabled: c.Enabled,
			Tools:   c.Tools,
		})
	}
	return out
}

// translateTool converts the HCL-specific tool schema into the agnostic model.
func translateTool(t *schema.Tool) *config.Tool {
	return &config.Tool{
		Name:            t.Name,
		RequiredVersion: t.RequiredVersion,
		VersionCommand:  t.VersionCommand,
		CheckCommand:    t.CheckCommand,
		CheckPath:       t.CheckPath,
		Package:         t.Package,
		Expression:      t.Expression,
		Optional:        t.Optional,
	}
}
