// Package tools defines the bounded catalog of domain operations the model
// may invoke. The catalog is a static registration table built once at
// startup; descriptors are immutable after registration.
package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/davmoreno/lucia/internal/completion"
)

// Param describes one tool parameter for schema generation and validation.
type Param struct {
	Name        string
	Type        string // "string", "number" or "integer"
	Description string
	Required    bool
}

// Descriptor is one catalog entry: the model-facing contract plus the
// function that implements it.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
	Run         func(ctx context.Context, args map[string]any) (string, error)
}

// Spec renders the descriptor as the schema shape the completion service
// expects.
func (d Descriptor) Spec() completion.ToolSpec {
	properties := make(map[string]any, len(d.Params))
	var required []string
	for _, p := range d.Params {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return completion.ToolSpec{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  schema,
	}
}

// InvocationError reports an unknown tool or arguments that violate the
// parameter schema. It is fed back into the model context, never fatal.
type InvocationError struct {
	Tool   string
	Reason string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("tool %q: %s", e.Tool, e.Reason)
}

// Registry is the process-wide tool catalog.
type Registry struct {
	byName map[string]Descriptor
	order  []string
}

func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.Name == "" || d.Run == nil {
			return nil, fmt.Errorf("tool descriptor missing name or function: %+v", d.Name)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", d.Name)
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Specs lists every tool in registration order for the completion request.
func (r *Registry) Specs() []completion.ToolSpec {
	out := make([]completion.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].Spec())
	}
	return out
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Invoke validates the requested call against the catalog and executes it.
// Schema violations return *InvocationError.
func (r *Registry) Invoke(ctx context.Context, call completion.ToolCall) (string, error) {
	d, ok := r.byName[call.Name]
	if !ok {
		return "", &InvocationError{Tool: call.Name, Reason: "unknown tool"}
	}
	args, err := validateArgs(d, call.Arguments)
	if err != nil {
		return "", err
	}
	return d.Run(ctx, args)
}

// validateArgs checks required parameters and coerces values to the declared
// types. Models occasionally send numbers as strings; those are accepted.
func validateArgs(d Descriptor, args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, p := range d.Params {
		raw, present := args[p.Name]
		if !present || raw == nil {
			if p.Required {
				return nil, &InvocationError{Tool: d.Name, Reason: fmt.Sprintf("missing required parameter %q", p.Name)}
			}
			continue
		}
		coerced, err := coerce(raw, p.Type)
		if err != nil {
			return nil, &InvocationError{Tool: d.Name, Reason: fmt.Sprintf("parameter %q: %v", p.Name, err)}
		}
		out[p.Name] = coerced
	}
	return out, nil
}

func coerce(v any, typ string) (any, error) {
	switch typ {
	case "string":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	case "number":
		return toFloat(v)
	case "integer":
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		n := int(f)
		if float64(n) != f {
			return nil, fmt.Errorf("expected integer, got %v", f)
		}
		return n, nil
	default:
		return v, nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

// Float reads an optional numeric argument with a default.
func Float(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

// Int reads an optional integer argument with a default.
func Int(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(int); ok {
		return v
	}
	return fallback
}

// String reads an optional string argument with a default.
func String(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
