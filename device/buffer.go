package device

import (
	"fmt"
	"sync/atomic"
)

// Access selects how a mapping may be used by the host.
type Access int

const (
	MapRead Access = iota
	MapWrite
	MapReadWrite
)

func (a Access) String() string {
	switch a {
	case MapRead:
		return "read"
	case MapWrite:
		return "write"
	case MapReadWrite:
		return "read-write"
	}
	return fmt.Sprintf("Access(%d)", int(a))
}

// Buffer is device-resident storage for n elements of T.
//
// Kernels access the storage directly through Storage. The host must go
// through Write, Fill, CopyFrom or a Mapping, all of which wait for
// outstanding device work first.
type Buffer[T any] struct {
	dev    *Device
	name   string
	data   []T
	mapped bool
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer[T any](d *Device, name string, n int) *Buffer[T] {
	return &Buffer[T]{
		dev:  d,
		name: name,
		data: make([]T, n),
	}
}

// Name returns the debug name of the buffer.
func (b *Buffer[T]) Name() string { return b.name }

// Len returns the element count.
func (b *Buffer[T]) Len() int { return len(b.data) }

// Storage returns the kernel-side view of the buffer.
// Only kernels and the device itself may touch it between Dispatch and Barrier.
func (b *Buffer[T]) Storage() []T { return b.data }

// Write uploads src into the buffer.
func (b *Buffer[T]) Write(src []T) error {
	if len(src) != len(b.data) {
		return fmt.Errorf("writing %s: %d elements into %d: %w", b.name, len(src), len(b.data), ErrSizeMismatch)
	}
	b.dev.Barrier()
	if err := b.dev.fault(OpWrite, b.name); err != nil {
		return fmt.Errorf("writing %s: %w", b.name, err)
	}
	copy(b.data, src)
	return nil
}

// Fill sets every element to v.
func (b *Buffer[T]) Fill(v T) error {
	b.dev.Barrier()
	if err := b.dev.fault(OpWrite, b.name); err != nil {
		return fmt.Errorf("filling %s: %w", b.name, err)
	}
	for i := range b.data {
		b.data[i] = v
	}
	return nil
}

// CopyFrom copies the whole of src into b on the device.
func (b *Buffer[T]) CopyFrom(src *Buffer[T]) error {
	if len(src.data) != len(b.data) {
		return fmt.Errorf("copying %s to %s: %w", src.name, b.name, ErrSizeMismatch)
	}
	b.dev.Barrier()
	if err := b.dev.fault(OpCopy, b.name); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src.name, b.name, err)
	}
	copy(b.data, src.data)
	return nil
}

// Map gives the host access to the buffer contents until Release.
// It blocks until outstanding device work has completed.
func (b *Buffer[T]) Map(access Access) (*Mapping[T], error) {
	b.dev.Barrier()
	if b.mapped {
		return nil, fmt.Errorf("mapping %s: %w", b.name, ErrAlreadyMapped)
	}
	if err := b.dev.fault(OpMap, b.name); err != nil {
		return nil, fmt.Errorf("mapping %s for %s: %w", b.name, access, err)
	}
	b.mapped = true
	return &Mapping[T]{buf: b, access: access, data: b.data}, nil
}

// Mapping is a scoped host view of a Buffer. Release it on every path,
// typically with defer.
type Mapping[T any] struct {
	buf      *Buffer[T]
	access   Access
	data     []T
	released bool
}

// Data returns the mapped elements, or nil after Release.
func (m *Mapping[T]) Data() []T { return m.data }

// Access returns the access mode the mapping was created with.
func (m *Mapping[T]) Access() Access { return m.access }

// Release unmaps the buffer. It is safe to call more than once.
// The buffer is unmapped even when an error is reported.
func (m *Mapping[T]) Release() error {
	if m.released {
		return nil
	}
	m.released = true
	m.data = nil
	m.buf.mapped = false
	if err := m.buf.dev.fault(OpUnmap, m.buf.name); err != nil {
		return fmt.Errorf("unmapping %s: %w", m.buf.name, err)
	}
	return nil
}

// Counters is a uint32 buffer supporting atomic updates from kernels.
type Counters struct {
	*Buffer[uint32]
}

// NewCounters allocates a zeroed counter buffer.
func NewCounters(d *Device, name string, n int) *Counters {
	return &Counters{Buffer: NewBuffer[uint32](d, name, n)}
}

// Add atomically adds delta to counter i and returns the previous value.
func (c *Counters) Add(i int, delta uint32) uint32 {
	return atomic.AddUint32(&c.data[i], delta) - delta
}

// Load atomically reads counter i.
func (c *Counters) Load(i int) uint32 {
	return atomic.LoadUint32(&c.data[i])
}
