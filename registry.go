package kronosim

import "reflect"

// registryKey identifies one named singleton binding: a concrete type plus
// an optional qualifier. Bindings are scoped per-Environment and held by
// strong reference; the Environment owns both sides, so bindings never
// outlive their owner.
type registryKey struct {
	typ       reflect.Type
	qualifier string
}

// Dependency binds value as the singleton for type T under the given
// qualifier (pass "" for the unqualified binding), for later retrieval via
// Get. Re-binding the same (T, qualifier) pair replaces the prior value.
func Dependency[T any](env *Environment, qualifier string, value T) {
	key := registryKey{typ: reflect.TypeFor[T](), qualifier: qualifier}
	env.registry[key] = value
}

// Get retrieves the singleton bound for type T under qualifier. The second
// return is false if nothing was bound.
func Get[T any](env *Environment, qualifier string) (T, bool) {
	key := registryKey{typ: reflect.TypeFor[T](), qualifier: qualifier}
	v, ok := env.registry[key]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Inject retrieves the singleton bound for type T under qualifier,
// panicking with a DomainError-kind *Error if nothing was bound — the
// "required dependency" counterpart to Get's optional lookup.
func Inject[T any](env *Environment, qualifier string) T {
	v, ok := Get[T](env, qualifier)
	if !ok {
		panic(newError(DomainError, "Inject", "no binding for requested type and qualifier", nil))
	}
	return v
}
