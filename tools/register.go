package tools

import (
	"github.com/armatrix/toolgate"
)

// RegisterAll registers all built-in tools into the provided registry.
func RegisterAll(registry *toolgate.Registry) error {
	if err := toolgate.RegisterTool(registry, &ReadTool{}); err != nil {
		return err
	}
	if err := toolgate.RegisterTool(registry, &WriteTool{}); err != nil {
		return err
	}
	if err := toolgate.RegisterTool(registry, &EditTool{}); err != nil {
		return err
	}
	if err := toolgate.RegisterTool(registry, &BashTool{}); err != nil {
		return err
	}
	if err := toolgate.RegisterTool(registry, &GlobTool{}); err != nil {
		return err
	}
	return toolgate.RegisterTool(registry, &GrepTool{})
}
