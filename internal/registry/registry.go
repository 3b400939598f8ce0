package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrUnknownKind is returned for kinds nobody registered.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrInvalidParams is returned when params do not fit the kind.
	ErrInvalidParams = errors.New("invalid params")
)

// Module is implemented by packages contributing node kinds.
type Module interface {
	Register(r *Registry)
}

// Kind describes a primitive node kind.
type Kind struct {
	Name        string
	Description string
	// Params is the type params are converted to before Build is called.
	// cty.NilType means the kind takes no params.
	Params cty.Type
	// ParamsGo optionally names the Go struct the kind decodes its params
	// into with gocty. Validate checks that it matches Params.
	ParamsGo reflect.Type
	// Build returns the signature and rule for one node of this kind.
	Build func(params cty.Value, types *sockettype.Registry) (node.Signature, node.Rule, error)
}

// TakesParams reports whether the kind accepts params.
func (k *Kind) TakesParams() bool {
	return k.Params != cty.NilType
}

// Registry holds the registered kinds of one engine instance.
type Registry struct {
	kinds map[string]*Kind
	types *sockettype.Registry
}

// New creates an empty registry whose kinds resolve socket types in types.
// A nil types uses sockettype.Default().
func New(types *sockettype.Registry) *Registry {
	if types == nil {
		types = sockettype.Default()
	}
	return &Registry{
		kinds: make(map[string]*Kind),
		types: types,
	}
}

// Types returns the socket type registry.
func (r *Registry) Types() *sockettype.Registry { return r.types }

// RegisterKind adds k. Registering the same name twice is a programming
// error and panics.
func (r *Registry) RegisterKind(k *Kind) {
	if k == nil || k.Name == "" {
		panic("node kind must have a name")
	}
	if k.Build == nil {
		panic(fmt.Sprintf("node kind '%s' has no Build function", k.Name))
	}
	if _, exists := r.kinds[k.Name]; exists {
		panic(fmt.Sprintf("node kind with name '%s' already registered", k.Name))
	}
	slog.Debug("Registering node kind.", "name", k.Name)
	r.kinds[k.Name] = k
}

// Lookup returns the kind registered as name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns the registered kind names in ascending order.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterModules registers every module in order.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}
