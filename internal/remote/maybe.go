package remote

// Maybe is a tagged optional. It keeps "confirmed absent" distinct from the
// zero value, which the profile completion gate depends on.
type Maybe[T any] struct {
	value   T
	present bool
}

// Some wraps a present value.
func Some[T any](v T) Maybe[T] { return Maybe[T]{value: v, present: true} }

// None is a confirmed-absent value.
func None[T any]() Maybe[T] { return Maybe[T]{} }

// Get returns the value and whether it is present.
func (m Maybe[T]) Get() (T, bool) { return m.value, m.present }

// Present reports whether a value exists.
func (m Maybe[T]) Present() bool { return m.present }

// MustGet returns the value; callers check Present first.
func (m Maybe[T]) MustGet() T { return m.value }
