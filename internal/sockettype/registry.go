package sockettype

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var (
	// ErrTypeConflict is returned when a name is registered twice with
	// different underlying types.
	ErrTypeConflict = errors.New("type conflict")
	// ErrUnknownType is returned when a name has not been registered.
	ErrUnknownType = errors.New("unknown socket type")
	// ErrNotConvertible is returned when a conversion is declared between
	// types that cty cannot convert.
	ErrNotConvertible = errors.New("types are not convertible")
)

type conversion struct {
	from, to string
}

// Registry holds the registered socket types and declared conversions.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	types       map[string]Type
	conversions map[conversion]struct{}
}

// New creates a registry holding only the built-in types.
func New() *Registry {
	r := &Registry{
		types:       make(map[string]Type),
		conversions: make(map[conversion]struct{}),
	}
	for _, t := range []Type{Number, String, Bool, Any} {
		r.types[t.name] = t
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry. It is created on first use and
// never torn down.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New()
	})
	return defaultReg
}

// Register adds a type. Registering an identical descriptor again returns
// the existing type.
func (r *Registry) Register(desc Descriptor) (Type, error) {
	if desc.Name == "" {
		return Type{}, fmt.Errorf("socket type name cannot be empty")
	}
	if desc.Type == cty.NilType {
		return Type{}, fmt.Errorf("socket type %q has no underlying type", desc.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[desc.Name]; ok {
		if existing.ty.Equals(desc.Type) {
			return existing, nil
		}
		return Type{}, fmt.Errorf("%w: %q is registered as %s, not %s",
			ErrTypeConflict, desc.Name, existing.ty.FriendlyName(), desc.Type.FriendlyName())
	}

	t := Type{name: desc.Name, ty: desc.Type}
	r.types[desc.Name] = t
	return t, nil
}

// RegisterHandle registers a custom typed handle wrapping values of the Go
// type goType. Re-registering the same name with the same Go type returns
// the existing handle type.
func (r *Registry) RegisterHandle(name string, goType reflect.Type) (Type, error) {
	if goType == nil {
		return Type{}, fmt.Errorf("handle type %q needs a Go type", name)
	}

	r.mu.RLock()
	existing, ok := r.types[name]
	r.mu.RUnlock()
	if ok {
		if existing.ty.IsCapsuleType() && existing.ty.EncapsulatedType() == goType {
			return existing, nil
		}
		return Type{}, fmt.Errorf("%w: %q is already registered as %s", ErrTypeConflict, name, existing.ty.FriendlyName())
	}

	return r.Register(Descriptor{Name: name, Type: cty.Capsule(name, goType)})
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// MustLookup is like Lookup but returns ErrUnknownType for missing names.
func (r *Registry) MustLookup(name string) (Type, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return Type{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

// Names returns all registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether t was registered in this registry.
func (r *Registry) Contains(t Type) bool {
	existing, ok := r.Lookup(t.name)
	return ok && existing.Equals(t)
}

// DeclareConvertible permits edges from sockets of type from to sockets of
// type to. The declaration is rejected unless cty can convert the values.
func (r *Registry) DeclareConvertible(from, to Type) error {
	if !r.Contains(from) {
		return fmt.Errorf("%w: %s", ErrUnknownType, from)
	}
	if !r.Contains(to) {
		return fmt.Errorf("%w: %s", ErrUnknownType, to)
	}
	if convert.GetConversion(from.ty, to.ty) == nil {
		return fmt.Errorf("%w: %w: %s to %s", ErrTypeConflict, ErrNotConvertible, from, to)
	}

	r.mu.Lock()
	r.conversions[conversion{from: from.name, to: to.name}] = struct{}{}
	r.mu.Unlock()
	return nil
}

// Convertible reports whether a conversion from one type to the other was
// declared.
func (r *Registry) Convertible(from, to Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conversions[conversion{from: from.name, to: to.name}]
	return ok
}

// Compatible reports whether an edge may connect a source socket of type
// src to a destination socket of type dst.
func (r *Registry) Compatible(src, dst Type) bool {
	if src.IsZero() || dst.IsZero() {
		return false
	}
	if src.Equals(dst) || src.IsAny() || dst.IsAny() {
		return true
	}
	return r.Convertible(src, dst)
}

// NeedsConversion reports whether values must be converted when flowing
// from src to dst. Values leaving an "any" socket are converted too, since
// nothing guaranteed their type at compile time.
func NeedsConversion(src, dst Type) bool {
	return !src.Equals(dst) && !dst.IsAny()
}

// Convert converts v to the destination type.
func Convert(v cty.Value, dst Type) (cty.Value, error) {
	if dst.IsAny() || v.Type().Equals(dst.ty) {
		return v, nil
	}
	out, err := convert.Convert(v, dst.ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot convert %s to %s: %w", v.Type().FriendlyName(), dst, err)
	}
	return out, nil
}
