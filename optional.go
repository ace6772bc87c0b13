package descriptors

// Optional holds a value that is either unset or set.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// Get returns the held value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value has been recorded.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Or returns the held value when set, otherwise the result of fallback.
// fallback is not invoked when the value is set.
func (o Optional[T]) Or(fallback func() T) T {
	if o.set {
		return o.value
	}
	return fallback()
}
