// Package registry is the process-wide, name-indexed collection of struct
// and union descriptors: populate once after a layout load (mirroring how
// the teacher's gocore.Process builds its rtTypeByName map while parsing
// DWARF), then resolve names lazily on every field access afterwards.
package registry

import (
	"fmt"
	"sync"

	radix "github.com/armon/go-radix"

	"github.com/cstruct-go/cstruct/ctype"
)

// Registry is a mutable, name-indexed store of struct/union descriptors.
// The package-level functions operate on a default Registry for callers
// happy with global state (as spec.md's reference does); construct one
// directly to thread it explicitly instead (spec.md §5's suggested
// Context refactor).
type Registry struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{tree: radix.New()}
}

// Register merges structs into r, keyed by their map keys; Struct.Name is
// not consulted, so a key that disagrees with Struct.Name is stored as
// given (the way the reference's update_structs(dict) simply trusts the
// caller's mapping).
func (r *Registry) Register(structs map[string]*ctype.Struct) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, s := range structs {
		r.tree.Insert(name, s)
	}
}

// Lookup resolves x to a *ctype.Struct: a bare descriptor passes through
// unchanged, a string is resolved against r and fails with a
// name-resolution error if absent, per spec.md §4.1.
func (r *Registry) Lookup(x any) (*ctype.Struct, error) {
	switch v := x.(type) {
	case *ctype.Struct:
		return v, nil
	case string:
		r.mu.RLock()
		defer r.mu.RUnlock()
		val, ok := r.tree.Get(v)
		if !ok {
			return nil, &NameResolutionError{Name: v}
		}
		return val.(*ctype.Struct), nil
	default:
		panic(fmt.Sprintf("registry: Lookup called with %T, want string or *ctype.Struct", x))
	}
}

// Names returns every registered struct name, in radix (lexical) order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	r.tree.Walk(func(s string, _ interface{}) bool {
		names = append(names, s)
		return false
	})
	return names
}

// NameResolutionError is returned by Lookup when a string name isn't
// registered. It satisfies the access package's error-kind taxonomy
// (access.NameResolution) without importing access, which would create
// an import cycle (access depends on registry, not the reverse).
type NameResolutionError struct {
	Name string
}

func (e *NameResolutionError) Error() string {
	return fmt.Sprintf("registry: no struct named %q registered", e.Name)
}

// Default is the process-wide registry used by the package-level
// Register/Lookup helpers, mirroring the reference's module-global
// STRUCTS dict.
var Default = New()

// Register merges structs into the default registry.
func Register(structs map[string]*ctype.Struct) { Default.Register(structs) }

// Lookup resolves x against the default registry.
func Lookup(x any) (*ctype.Struct, error) { return Default.Lookup(x) }
