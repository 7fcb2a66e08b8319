package types

import (
	"fmt"
)

// RegionErrorKind classifies why a Region could not be used.
type RegionErrorKind int

const (
	// RegionZeroAddress is reported for a null Region pointer or a Region whose offset is zero.
	RegionZeroAddress RegionErrorKind = iota + 1
	// RegionLengthTooBig is reported when a Region is longer than the call site permits.
	RegionLengthTooBig
	// RegionTooSmall is reported when data does not fit into a Region's capacity.
	RegionTooSmall
	// RegionLengthExceedsCapacity is reported when a Region claims more bytes than it holds.
	RegionLengthExceedsCapacity
	// RegionOutOfRange is reported when offset+capacity overflows the 32 bit address space.
	RegionOutOfRange
	// RegionOutOfBounds is reported when an access lies outside the current linear memory.
	RegionOutOfBounds
)

func (k RegionErrorKind) String() string {
	switch k {
	case RegionZeroAddress:
		return "zero address"
	case RegionLengthTooBig:
		return "region length too big"
	case RegionTooSmall:
		return "region too small"
	case RegionLengthExceedsCapacity:
		return "region length exceeds capacity"
	case RegionOutOfRange:
		return "region out of range"
	case RegionOutOfBounds:
		return "out of bounds memory access"
	default:
		return "unknown region error"
	}
}

// RegionError is a host fault raised when guest supplied pointers or lengths
// cannot be honoured. No bytes are copied when it is returned.
type RegionError struct {
	Kind   RegionErrorKind
	Offset uint32
	Length uint64
	Limit  uint64
}

var (
	_ error = (*RegionError)(nil)
	_ error = (*CommunicationError)(nil)
	_ error = (*UnsupportedError)(nil)
	_ error = (*AbortError)(nil)
	_ error = (*BackendError)(nil)
)

func (e *RegionError) Error() string {
	switch e.Kind {
	case RegionLengthTooBig:
		return fmt.Sprintf("%s: got %d bytes, limit %d", e.Kind, e.Length, e.Limit)
	case RegionTooSmall:
		return fmt.Sprintf("%s: need %d bytes, capacity %d", e.Kind, e.Length, e.Limit)
	case RegionLengthExceedsCapacity:
		return fmt.Sprintf("%s: length %d, capacity %d", e.Kind, e.Length, e.Limit)
	case RegionZeroAddress:
		return e.Kind.String()
	default:
		return fmt.Sprintf("%s: offset %d, length %d", e.Kind, e.Offset, e.Length)
	}
}

// CommunicationError is a host fault caused by the guest breaking the
// host/guest protocol (bad allocator result, malformed sections, missing exports).
type CommunicationError struct {
	Msg string
}

func (e *CommunicationError) Error() string {
	return "communication error: " + e.Msg
}

// NewCommunicationError formats a CommunicationError.
func NewCommunicationError(format string, args ...interface{}) *CommunicationError {
	return &CommunicationError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedError is raised by imports that exist for ABI compatibility but
// are deliberately not implemented in this build.
type UnsupportedError struct {
	Capability string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("runtime error: %s is not supported by this VM", e.Capability)
}

// AbortError carries the message a contract passed to abort.
type AbortError struct {
	Msg string
}

func (e *AbortError) Error() string {
	return "aborted: " + e.Msg
}

// BackendError reports a failure inside a backend capability (querier, store)
// that is not attributable to the contract.
type BackendError struct {
	Msg string
}

func (e *BackendError) Error() string {
	return "backend error: " + e.Msg
}
