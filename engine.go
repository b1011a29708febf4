package pdarrow

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Engine builds typed arrays. It is immutable after construction and safe for
// concurrent use; every call owns the storage it allocates.
type Engine struct {
	mem      memory.Allocator
	logger   log.Logger
	registry *Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithAllocator sets the allocator used for all Arrow storage.
func WithAllocator(mem memory.Allocator) Option {
	return func(e *Engine) {
		e.mem = mem
	}
}

// WithLogger sets the logger receiving debug records for every fallback to a
// looser representation.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry sets the registry resolving type aliases.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// NewEngine creates an engine. By default it allocates with
// memory.DefaultAllocator, discards log records and resolves aliases through
// DefaultRegistry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		mem:    memory.DefaultAllocator,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = DefaultRegistry()
	}
	return e
}

// Allocator returns the engine's allocator.
func (e *Engine) Allocator() memory.Allocator { return e.mem }

// AsType converts arr to dtype, resolving an Alias through the engine's
// registry.
func (e *Engine) AsType(arr ExtensionArray, dtype DType, copy bool) (ArrayLike, error) {
	dtype, err := e.registry.Resolve(dtype)
	if err != nil {
		return nil, err
	}
	return arr.AsType(dtype, copy)
}

func (e *Engine) logFallback(branch string, dtype DType, err error) {
	level.Debug(e.logger).Log("msg", "falling back to a looser representation", "branch", branch, "dtype", dtypeName(dtype), "err", err)
}

var defaultEngine = NewEngine()

// Array builds an extension array from data with the default engine.
func Array(data any, dtype DType, copy bool) (ExtensionArray, error) {
	return defaultEngine.Array(data, dtype, copy)
}

// Sanitize converts data to a one-dimensional buffer or extension array with
// the default engine.
func Sanitize(data any, length int, dtype DType, copy, raiseCastFailure bool) (ArrayLike, error) {
	return defaultEngine.Sanitize(data, length, dtype, copy, raiseCastFailure)
}
