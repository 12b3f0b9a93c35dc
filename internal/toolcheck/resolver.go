package toolcheck

import "github.com/loomworks/loom/internal/model"

// ResolveStrategy maps a tool configuration to the single strategy that
// will probe it. Precedence when several probe fields are set: explicit
// command, then path, then package, then expression. A tool with no
// probe fields falls through to a PATH lookup by its own ID, so every
// tool resolves to something runnable.
func ResolveStrategy(cfg model.ToolConfig) model.CheckStrategy {
	switch {
	case cfg.CheckCommand != "":
		return model.StrategyCommand
	case cfg.CheckPath != "":
		return model.StrategyPath
	case cfg.Package != "":
		return model.StrategyPackageManager
	case cfg.Expression != "":
		return model.StrategyExpression
	}
	return model.StrategyDefault
}
