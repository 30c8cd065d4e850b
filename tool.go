package toolgate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/armatrix/toolgate/confirm"
	"github.com/armatrix/toolgate/internal/schema"
)

// Kind is the capability category of a tool. Mode overrides use it to
// decide whether a call needs confirmation.
type Kind int

const (
	KindReadOnly Kind = iota // inspects state, never mutates
	KindWrite                // creates or replaces files
	KindEdit                 // modifies existing files in place
	KindExecute              // runs external commands
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindReadOnly:
		return "read-only"
	case KindWrite:
		return "write"
	case KindEdit:
		return "edit"
	case KindExecute:
		return "execute"
	default:
		return "unknown"
	}
}

// Mutating reports whether the kind changes state. Mutating tools must
// pass an allow decision or an approved confirmation before executing.
func (k Kind) Mutating() bool {
	return k != KindReadOnly
}

// Validator checks raw parameters before a tool executes.
type Validator interface {
	Validate(raw json.RawMessage) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(raw json.RawMessage) error

// Validate calls f.
func (f ValidatorFunc) Validate(raw json.RawMessage) error { return f(raw) }

// Descriptor is the registry entry for one tool. Descriptors are
// registered once at startup and immutable afterward.
type Descriptor struct {
	Name        string
	Kind        Kind
	Description string

	// Schema is the JSON Schema for the tool's parameters, used for
	// model-facing introspection.
	Schema json.RawMessage

	// Validator rejects malformed parameters during the pipeline's
	// validation step. Nil skips validation.
	Validator Validator

	// ConfirmFunc inspects bound parameters and returns confirmation
	// details if the call needs operator sign-off regardless of the
	// policy decision. Nil means the tool never asks on its own.
	ConfirmFunc func(params json.RawMessage) *confirm.Details

	// AffectedPaths reports which filesystem paths a call touches, fed
	// to the policy engine's glob rules. Nil means no paths.
	AffectedPaths func(params json.RawMessage) []string

	// ExitsPlanMode marks the dedicated plan-mode exit action, the one
	// tool plan mode does not force to ask.
	ExitsPlanMode bool

	// Execute runs the tool. It receives validated parameters and the
	// per-call execution context.
	Execute func(ctx context.Context, params json.RawMessage, ec *ExecContext) (*Result, error)
}

// Registry is a name-keyed catalogue of tool descriptors. Registration
// happens during startup; reads are safe for concurrent callers.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Descriptor
	order []string // preserve registration order
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Descriptor)}
}

// Register adds a descriptor. Re-registering an existing name fails
// with ErrDuplicateTool.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("toolgate: descriptor must have a name")
	}
	if d.Execute == nil {
		return fmt.Errorf("toolgate: tool %q has no executor", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
	}
	r.tools[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// All returns descriptors in registration order.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Tool is the generic interface for typed tools. The type parameter T
// defines the input struct deserialized from the model's JSON.
type Tool[T any] interface {
	Name() string
	Kind() Kind
	Description() string
	Execute(ctx context.Context, input T, ec *ExecContext) (*Result, error)
}

// Confirmer is an optional capability for typed tools that decide per
// call whether they need operator confirmation.
type Confirmer[T any] interface {
	Confirm(input T) *confirm.Details
}

// PathReporter is an optional capability for typed tools that touch the
// filesystem.
type PathReporter[T any] interface {
	AffectedPaths(input T) []string
}

// RegisterTool registers a typed tool. The input type T drives the
// generated schema and the parameter validator; the Confirmer and
// PathReporter capabilities are wired when the tool implements them.
func RegisterTool[T any](r *Registry, tool Tool[T]) error {
	d := &Descriptor{
		Name:        tool.Name(),
		Kind:        tool.Kind(),
		Description: tool.Description(),
		Schema:      schema.Generate[T](),
		Validator:   schema.For[T](),
		Execute: func(ctx context.Context, raw json.RawMessage, ec *ExecContext) (*Result, error) {
			input, err := decode[T](raw)
			if err != nil {
				return ErrorResult(fmt.Sprintf("invalid input: %s", err.Error())), nil
			}
			return tool.Execute(ctx, input, ec)
		},
	}

	if c, ok := tool.(Confirmer[T]); ok {
		d.ConfirmFunc = func(raw json.RawMessage) *confirm.Details {
			input, err := decode[T](raw)
			if err != nil {
				return nil // validation rejects this before confirmation matters
			}
			return c.Confirm(input)
		}
	}

	if p, ok := tool.(PathReporter[T]); ok {
		d.AffectedPaths = func(raw json.RawMessage) []string {
			input, err := decode[T](raw)
			if err != nil {
				return nil
			}
			return p.AffectedPaths(input)
		}
	}

	if pe, ok := tool.(interface{ ExitsPlanMode() bool }); ok {
		d.ExitsPlanMode = pe.ExitsPlanMode()
	}

	return r.Register(d)
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}
