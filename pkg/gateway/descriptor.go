package gateway

import (
	"context"
	"fmt"
)

// Handler is the calling convention every tool binds to. Arguments have
// already been validated against the tool's schema when a handler runs.
type Handler func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error)

// Parameter describes one argument of a tool.
type Parameter struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Enum        []string    `json:"enum,omitempty"`
	Items       string      `json:"items,omitempty"` // element type for arrays
	Default     interface{} `json:"default,omitempty"`
}

// ToolDescriptor is the registry's catalog entry for a tool: its unique
// name, a description for the calling agent, the declared parameters, and
// the handler bound to it. Descriptors are immutable after registration.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Handler     Handler     `json:"-"`
}

var validParamTypes = map[string]bool{
	"string": true, "number": true, "integer": true,
	"boolean": true, "array": true, "object": true,
}

// Validate checks that a descriptor is complete enough to register.
func (d *ToolDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if d.Description == "" {
		return fmt.Errorf("tool description cannot be empty")
	}
	if d.Handler == nil {
		return fmt.Errorf("tool handler cannot be nil")
	}

	for _, param := range d.Parameters {
		if param.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if !validParamTypes[param.Type] {
			return fmt.Errorf("invalid parameter type %q for %s", param.Type, param.Name)
		}
		if param.Items != "" && param.Type != "array" {
			return fmt.Errorf("items is only valid on array parameters (%s)", param.Name)
		}
		if param.Items != "" && !validParamTypes[param.Items] {
			return fmt.Errorf("invalid item type %q for %s", param.Items, param.Name)
		}
		if len(param.Enum) > 0 && param.Type != "string" {
			return fmt.Errorf("enum is only valid on string parameters (%s)", param.Name)
		}
	}

	return nil
}

// InputSchema renders the declared parameters as a JSON Schema object of the
// shape {"type":"object","properties":{...},"required":[...]}. The required
// list is always present, even when empty.
func (d *ToolDescriptor) InputSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(d.Parameters))
	required := []string{}

	for _, param := range d.Parameters {
		prop := map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		if len(param.Enum) > 0 {
			prop["enum"] = param.Enum
		}
		if param.Items != "" {
			prop["items"] = map[string]interface{}{"type": param.Items}
		}
		if param.Default != nil {
			prop["default"] = param.Default
		}
		properties[param.Name] = prop

		if param.Required {
			required = append(required, param.Name)
		}
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Descriptor is the wire representation of a tool for the listing and
// detail endpoints.
type Descriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Describe returns the wire representation of the descriptor.
func (d *ToolDescriptor) Describe() Descriptor {
	return Descriptor{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.InputSchema(),
	}
}
