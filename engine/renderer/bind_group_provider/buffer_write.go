package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Align rounds n up to the next multiple of alignment. alignment must be a power of two.
//
// Parameters:
//   - n: the size or offset
//   - alignment: the required alignment
//
// Returns:
//   - uint64: the aligned value
func Align(n, alignment uint64) uint64 {
	return (n + alignment - 1) &^ (alignment - 1)
}

// GrowCapacity returns the buffer size to allocate so that at least need bytes fit, doubling
// from current and never returning less than minimum.
//
// Parameters:
//   - current: the present capacity
//   - need: the bytes required
//   - minimum: the smallest capacity to allocate
//
// Returns:
//   - uint64: the new capacity, equal to current when need already fits
func GrowCapacity(current, need, minimum uint64) uint64 {
	if need <= current {
		return current
	}
	c := max(current, minimum)
	for c < need {
		c *= 2
	}
	return c
}
