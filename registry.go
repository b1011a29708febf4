package pdarrow

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Registry resolves type aliases to extension types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]ExtensionDType
}

// NewRegistry creates a registry with every built-in extension type
// registered. Parametric types (datetime64[ns, <tz>], period[<freq>],
// interval[<subtype>, <closed>]) are resolved by parsing the alias.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]ExtensionDType)}

	r.register(ExtensionTypes.Int8)
	r.register(ExtensionTypes.Int16)
	r.register(ExtensionTypes.Int32)
	r.register(ExtensionTypes.Int64)
	r.register(ExtensionTypes.Uint8)
	r.register(ExtensionTypes.Uint16)
	r.register(ExtensionTypes.Uint32)
	r.register(ExtensionTypes.Uint64)
	r.register(ExtensionTypes.Float32)
	r.register(ExtensionTypes.Float64)
	r.register(ExtensionTypes.Boolean)
	r.register(ExtensionTypes.String)
	r.register(NewCategoricalDType(nil, false))
	r.register(&IntervalDType{})

	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry used when no other
// registry is configured.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds an extension type under its name
func (r *Registry) Register(dt ExtensionDType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := dt.Name()
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("extension type already registered: %s", name)
	}
	r.types[name] = dt
	return nil
}

// register is internal method for initial setup
func (r *Registry) register(dt ExtensionDType) {
	r.types[dt.Name()] = dt
}

var (
	datetimeTZPattern = regexp.MustCompile(`^datetime64\[ns,\s*([^\]]+)\]$`)
	periodPattern     = regexp.MustCompile(`^period\[([^\]]+)\]$`)
	intervalPattern   = regexp.MustCompile(`^interval\[([^,\]]+)(?:,\s*([a-z]+))?\]$`)
)

// Find resolves alias to an extension type. It reports false for names that
// are not extension types, including primitive type names.
func (r *Registry) Find(alias string) (ExtensionDType, bool) {
	alias = strings.TrimSpace(alias)
	r.mu.RLock()
	dt, ok := r.types[alias]
	r.mu.RUnlock()
	if ok {
		return dt, true
	}
	if m := datetimeTZPattern.FindStringSubmatch(alias); m != nil {
		loc, err := LoadZone(strings.TrimSpace(m[1]))
		if err != nil {
			return nil, false
		}
		return NewDatetimeTZDType(loc), true
	}
	if m := periodPattern.FindStringSubmatch(alias); m != nil {
		freq, err := ParseFreq(m[1])
		if err != nil {
			return nil, false
		}
		return NewPeriodDType(freq), true
	}
	if m := intervalPattern.FindStringSubmatch(alias); m != nil {
		subtype, ok := ParsePrimitive(m[1])
		if !ok {
			return nil, false
		}
		var closed Closed
		if m[2] != "" {
			c, err := ParseClosed(m[2])
			if err != nil {
				return nil, false
			}
			closed = c
		}
		return &IntervalDType{subtype: subtype, closed: closed}, true
	}
	return nil, false
}

// Resolve turns an Alias into the type it names: a registered extension type
// first, then a primitive type name. Other types are returned unchanged.
func (r *Registry) Resolve(dt DType) (DType, error) {
	alias, ok := dt.(Alias)
	if !ok {
		return dt, nil
	}
	if ext, ok := r.Find(string(alias)); ok {
		return ext, nil
	}
	if prim, ok := ParsePrimitive(string(alias)); ok {
		return prim, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDType, string(alias))
}
