package editor

// Field tracks one leaf form value against the snapshot it was loaded from.
// A field is dirty when its value differs from that snapshot, so setting a
// value back to the original clears the flag again.
type Field[T comparable] struct {
	value   T
	initial T
}

// NewField builds a clean field holding v.
func NewField[T comparable](v T) Field[T] {
	return Field[T]{value: v, initial: v}
}

// Set replaces the current value.
func (f *Field[T]) Set(v T) { f.value = v }

// Value returns the current value.
func (f Field[T]) Value() T { return f.value }

// Dirty reports whether the value differs from the loaded snapshot.
func (f Field[T]) Dirty() bool { return f.value != f.initial }
