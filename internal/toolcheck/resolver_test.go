package toolcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomworks/loom/internal/model"
)

func TestResolveStrategy_Precedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		cfg  model.ToolConfig
		want model.CheckStrategy
	}{
		{
			name: "command beats everything",
			cfg: model.ToolConfig{
				CheckCommand: "git --version",
				CheckPath:    "/usr/bin/git",
				Package:      "git",
				Expression:   "command -v git",
			},
			want: model.StrategyCommand,
		},
		{
			name: "path beats package and expression",
			cfg: model.ToolConfig{
				CheckPath:  "/usr/bin/git",
				Package:    "git",
				Expression: "command -v git",
			},
			want: model.StrategyPath,
		},
		{
			name: "package beats expression",
			cfg:  model.ToolConfig{Package: "git", Expression: "command -v git"},
			want: model.StrategyPackageManager,
		},
		{
			name: "expression alone",
			cfg:  model.ToolConfig{Expression: "command -v git"},
			want: model.StrategyExpression,
		},
		{
			name: "nothing set falls through to default",
			cfg:  model.ToolConfig{ID: "git"},
			want: model.StrategyDefault,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ResolveStrategy(tc.cfg))
		})
	}
}
