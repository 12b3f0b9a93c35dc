package app

import (
	"encoding/json"
	"io"

	"github.com/loomworks/loom/internal/model"
)

// Report is the JSON document emitted by the report and status modes.
type Report struct {
	Order    []string                          `json:"order"`
	Modules  []ModuleReport                    `json:"modules"`
	Tools    map[string]model.ToolStatusResult `json:"tools,omitempty"`
	Warnings []model.Warning                   `json:"warnings,omitempty"`
}

// ModuleReport is the per-fiber loadability verdict.
type ModuleReport struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
	// Loadable means enabled and every non-optional required tool is
	// installed with a valid version.
	Loadable bool `json:"loadable"`
	// MissingTools lists the non-optional tools blocking loadability.
	MissingTools []string `json:"missing_tools,omitempty"`
}

// buildReport combines the load order with tool results into per-module
// loadability verdicts. The modules section follows the computed order.
func (a *App) buildReport(ordered []string, results map[string]model.ToolStatusResult, warnings []model.Warning) *Report {
	report := &Report{
		Order:    ordered,
		Tools:    results,
		Warnings: warnings,
	}

	requiredTools := a.registry.RequiredTools()
	for _, id := range ordered {
		node, ok := a.registry.Fiber(id)
		if !ok {
			continue
		}

		mr := ModuleReport{ID: id, Enabled: node.Enabled, Loadable: node.Enabled}
		for _, toolID := range a.registry.ModuleToolDeps(id) {
			if requiredTools[toolID].Optional {
				continue
			}
			if !results[toolID].Usable() {
				mr.Loadable = false
				mr.MissingTools = append(mr.MissingTools, toolID)
			}
		}
		report.Modules = append(report.Modules, mr)
	}
	return report
}

// render writes the report as indented JSON. Status mode narrows the
// document to the tool results and warnings.
func (r *Report) render(w io.Writer, mode string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if mode == ModeStatus {
		return enc.Encode(struct {
			Tools    map[string]model.ToolStatusResult `json:"tools"`
			Warnings []model.Warning                   `json:"warnings,omitempty"`
		}{Tools: r.Tools, Warnings: r.Warnings})
	}
	return enc.Encode(r)
}
