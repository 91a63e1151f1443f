package access

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Kind identifies which of spec.md §7's stable error kinds an *Error
// represents, so callers can errors.As to a concrete *Error and switch on
// Kind rather than string-matching messages.
type Kind int

const (
	// NullDeref: any read/write invoked with base address 0.
	NullDeref Kind = iota
	// TypeError: function/void deref, assigning into a struct field,
	// non-buffer assignment into an array, sizeof/offsetof on a bitfield.
	TypeError
	// ValueOverflow: a scalar write whose value doesn't fit its width.
	ValueOverflow
	// BufferOverflow: an array write longer than the array's byte capacity.
	BufferOverflow
	// NameResolution: a struct name absent from the registry.
	NameResolution
	// UnknownField: a field name absent from a struct descriptor.
	UnknownField
	// IndexOutOfRange: indexed access outside a known-length array.
	IndexOutOfRange
	// CrossWordBitfield: a bitfield that fits no aligned access width.
	CrossWordBitfield
	// UnsupportedFieldKind: the engine doesn't handle this type variant.
	UnsupportedFieldKind
)

func (k Kind) String() string {
	switch k {
	case NullDeref:
		return "null-deref"
	case TypeError:
		return "type-error"
	case ValueOverflow:
		return "value-overflow"
	case BufferOverflow:
		return "buffer-overflow"
	case NameResolution:
		return "name-resolution"
	case UnknownField:
		return "unknown-field"
	case IndexOutOfRange:
		return "index-out-of-range"
	case CrossWordBitfield:
		return "cross-word-bitfield"
	case UnsupportedFieldKind:
		return "unsupported-field-kind"
	default:
		return "unknown-error-kind"
	}
}

// Error is the single error type returned by this package's public
// operations. Wrap with fmt.Errorf("...: %w", err) freely; Kind survives
// through errors.As.
type Error struct {
	Kind Kind
	msg  string
	// wrapped, if set, is surfaced from Unwrap (used by NameResolution
	// errors, which wrap a *registry.NameResolutionError).
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.wrapped }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func nullDeref(context string) *Error {
	return newError(NullDeref, "base address is 0 (%s)", context)
}

func typeErr(format string, args ...any) *Error {
	return newError(TypeError, format, args...)
}

func valueOverflow(value int64, bits int64, signed bool) *Error {
	if signed {
		return newError(ValueOverflow, "value %d does not fit in signed %d-bit field", value, bits)
	}
	return newError(ValueOverflow, "value %d does not fit in unsigned %d-bit field", value, bits)
}

func bufferOverflow(gotBytes, capBytes int64) *Error {
	return newError(BufferOverflow, "buffer of %s exceeds array capacity of %s",
		humanize.Bytes(uint64(gotBytes)), humanize.Bytes(uint64(capBytes)))
}

func unknownField(structName, field string) *Error {
	return newError(UnknownField, "struct %q has no field named %q", structName, field)
}

func indexOutOfRange(key, numElem int64) *Error {
	return newError(IndexOutOfRange, "index %d not in range [0, %d)", key, numElem)
}

func crossWordBitfield(base any, bitOffset, size int64) *Error {
	return newError(CrossWordBitfield, "bitfield at base %v offset %d size %d straddles every aligned word", base, bitOffset, size)
}

func unsupportedFieldKind(t any) *Error {
	return newError(UnsupportedFieldKind, "engine has no read/write support for %T", t)
}

func nameResolution(name string, wrapped error) *Error {
	e := newError(NameResolution, "could not resolve struct %q", name)
	e.wrapped = wrapped
	return e
}
