package device

import "fmt"

// Op identifies a host/device hand-off operation.
type Op int

const (
	OpMap Op = iota
	OpUnmap
	OpWrite
	OpCopy
)

func (o Op) String() string {
	switch o {
	case OpMap:
		return "map"
	case OpUnmap:
		return "unmap"
	case OpWrite:
		return "write"
	case OpCopy:
		return "copy"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// FaultFunc is consulted before each hand-off operation. Returning a non-nil
// error makes the operation fail with that error.
type FaultFunc func(op Op, buffer string) error

// FailOn returns a fault hook that fails every op on the named buffer
// with ErrMapFailed or ErrUnmapFailed as appropriate.
func FailOn(op Op, buffer string) FaultFunc {
	return FailTimes(op, buffer, -1)
}

// FailTimes fails the first n matching operations (n < 0 fails forever).
func FailTimes(op Op, buffer string, n int) FaultFunc {
	remaining := n
	return func(o Op, b string) error {
		if o != op || b != buffer || remaining == 0 {
			return nil
		}
		if remaining > 0 {
			remaining--
		}
		if o == OpUnmap {
			return ErrUnmapFailed
		}
		return ErrMapFailed
	}
}
