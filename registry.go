package routeprobe

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// TypeRegistry maps TypeRef shapes to Generators, resolving unregistered
// shapes via buildGenerator's structural fallback synthesis.
//
// A TypeRegistry is safe for concurrent use: Resolve takes a read lock,
// Register/Unregister take a write lock.
type TypeRegistry struct {
	mu       sync.RWMutex
	override map[string]Generator
	schemas  SchemaTable
	logger   *slog.Logger
}

// NewTypeRegistry creates a registry with no overrides; every TypeRef
// resolves through buildGenerator's structural synthesis until
// Register is called.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		override: make(map[string]Generator),
		schemas:  make(SchemaTable),
	}
}

// WithLogger sets the logger used for duplicate-registration warnings,
// mirroring App.WithLogger's fallback-to-slog.Default() convention.
func (r *TypeRegistry) WithLogger(logger *slog.Logger) *TypeRegistry {
	r.logger = logger
	return r
}

// WithSchemas merges table into the registry's SchemaTable, used to
// resolve Ref(name) nodes encountered during synthesis.
func (r *TypeRegistry) WithSchemas(table SchemaTable) *TypeRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range table {
		r.schemas[k] = v
	}
	return r
}

// typeKey computes the registration key for t. Primitives key off their
// primitive kind, Refs off their RefName and Enums off their value list;
// Record, Seq, Map, Optional and OneOf have no key and return "", so an
// anonymous composite shape can only be given a dedicated override by
// registering it under a Ref(name).
func typeKey(t TypeRef) string {
	switch t.Kind {
	case KindPrimitive:
		return "primitive:" + t.Primitive.String()
	case KindRef:
		return "ref:" + t.RefName
	case KindEnum:
		key := "enum:"
		for _, v := range t.EnumValues {
			key += v + ","
		}
		return key
	default:
		return ""
	}
}

// Register installs gen as the generator for t. If t already has a
// registered generator, Register fails with *AlreadyRegisteredError
// unless override is true, in which case the prior generator is
// replaced and the replacement is logged at Warn.
func (r *TypeRegistry) Register(t TypeRef, gen Generator, override bool) error {
	key := typeKey(t)
	if key == "" {
		panic("routeprobe: Register requires a primitive, enum, or Ref TypeRef")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.override[key]; exists {
		if !override {
			return &AlreadyRegisteredError{Type: key}
		}
		logger := r.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("overriding existing generator registration", slog.String("type", key))
	}
	r.override[key] = gen
	return nil
}

// Unregister removes any override for t, reverting it to structural
// synthesis. Mirrors strategy_for_type's unregister_strategy.
func (r *TypeRegistry) Unregister(t TypeRef) {
	key := typeKey(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.override, key)
}

// RegistrationEntry is one (TypeRef, Generator) pair passed to
// RegisterMany, with its own override flag.
type RegistrationEntry struct {
	Type     TypeRef
	Gen      Generator
	Override bool
}

// RegisterMany installs a batch of registrations atomically: it first
// checks every entry for a duplicate-without-override conflict, and if
// any entry conflicts, none of the batch is applied — the caller gets a
// single *AlreadyRegisteredError back instead of a partially-registered
// registry.
func (r *TypeRegistry) RegisterMany(entries []RegistrationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, len(entries))
	seenInBatch := make(map[string]bool, len(entries))
	for i, e := range entries {
		key := typeKey(e.Type)
		if key == "" {
			panic("routeprobe: RegisterMany requires primitive, enum, or Ref TypeRefs")
		}
		keys[i] = key
		_, existsAlready := r.override[key]
		if (existsAlready || seenInBatch[key]) && !e.Override {
			return &AlreadyRegisteredError{Type: key}
		}
		seenInBatch[key] = true
	}

	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	for i, e := range entries {
		if _, exists := r.override[keys[i]]; exists {
			logger.Warn("overriding existing generator registration", slog.String("type", keys[i]))
		}
		r.override[keys[i]] = e.Gen
	}
	return nil
}

// Override is a released scope created by Scoped; calling Release
// restores the registry to its pre-Scoped state for that one TypeRef.
// Release is idempotent via sync.Once, the same RAII-guard shape as a
// deferred unlock, so callers can safely both defer Release() and call
// it explicitly on an early-return path.
type Override struct {
	once    sync.Once
	release func()
}

// Release restores the prior generator (or removes the override
// entirely, if none existed) exactly once.
func (o *Override) Release() {
	o.once.Do(o.release)
}

// Scoped temporarily overrides t's generator with gen, returning an
// Override whose Release restores the prior state. Go has no context
// manager, so the guard is returned for the caller to defer.
func (r *TypeRegistry) Scoped(t TypeRef, gen Generator) *Override {
	key := typeKey(t)
	if key == "" {
		panic("routeprobe: Scoped requires a primitive, enum, or Ref TypeRef")
	}
	r.mu.Lock()
	prev, had := r.override[key]
	r.override[key] = gen
	r.mu.Unlock()

	return &Override{release: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if had {
			r.override[key] = prev
		} else {
			delete(r.override, key)
		}
	}}
}

// RegisteredTypes returns the keys currently overridden, for
// diagnostics. Mirrors get_registered_types.
func (r *TypeRegistry) RegisteredTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.override))
	for k := range r.override {
		out = append(out, k)
	}
	return out
}

// Resolve returns the Generator for t: an explicit override if one is
// registered, otherwise structural synthesis via buildGenerator.
func (r *TypeRegistry) Resolve(t TypeRef) (Generator, error) {
	key := typeKey(t)
	if key != "" {
		r.mu.RLock()
		gen, ok := r.override[key]
		r.mu.RUnlock()
		if ok {
			return gen, nil
		}
	}
	r.mu.RLock()
	schemas := r.schemas
	r.mu.RUnlock()
	gen, err := buildGenerator(t, schemas, map[string]int{})
	if errors.Is(err, errRefDepthExceeded) {
		return nil, &UnsupportedTypeError{Detail: fmt.Sprintf("unbounded recursion resolving %s with no Optional/OneOf to terminate at", typeKey(t))}
	}
	return gen, err
}

// MustResolve is Resolve for call sites that have already validated t
// resolves cleanly (e.g. at startup, against a fixed RouteSpec set) and
// want a panic rather than a threaded error.
func (r *TypeRegistry) MustResolve(t TypeRef) Generator {
	gen, err := r.Resolve(t)
	if err != nil {
		panic(err)
	}
	return gen
}
