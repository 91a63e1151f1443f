// Package memio binds the runtime accessor core to a caller-supplied memory
// backend: a bulk copy plus four sized read/write pairs. Nothing in this
// package knows whether the backend is a live ptrace'd process, a core
// dump, an embedded target's JTAG link, or an in-memory buffer (see
// membuf for that last one) -- it only checks that every accessor is set
// and dispatches by width; the null-base check lives in the access engine.
package memio

import (
	"fmt"
	"sync"
)

// Address is a byte address in the target's address space. It is a
// distinct type (rather than a bare uint64) the way the teacher's
// internal/core.Address is, so arithmetic on raw integers can't be
// mistaken for address arithmetic.
type Address uint64

// Add returns a+n.
func (a Address) Add(n int64) Address { return Address(int64(a) + n) }

// Sub returns a-b.
func (a Address) Sub(b Address) int64 { return int64(a) - int64(b) }

// Read8, Read16, Read32, Read64 read an unsigned integer of the given
// width from addr. Write8...Write64 write value (already normalized to
// unsigned n-bit two's complement by the caller) to addr.
type (
	Read8Func   func(addr Address) uint8
	Read16Func  func(addr Address) uint16
	Read32Func  func(addr Address) uint32
	Read64Func  func(addr Address) uint64
	Write8Func  func(addr Address, value uint8)
	Write16Func func(addr Address, value uint16)
	Write32Func func(addr Address, value uint32)
	Write64Func func(addr Address, value uint64)
	// BulkCopyFunc writes length bytes from bytes starting at addr.
	BulkCopyFunc func(addr Address, bytes []byte, length int)
)

// Accessors holds the five backend callables. The zero value is not usable;
// construct via SetAccessors or keep an Accessors value directly and pass
// it where needed (the explicit-context style from spec.md §5's design
// note), instead of relying on the package-level Current backend.
type Accessors struct {
	BulkCopy BulkCopyFunc
	Read8    Read8Func
	Read16   Read16Func
	Read32   Read32Func
	Read64   Read64Func
	Write8   Write8Func
	Write16  Write16Func
	Write32  Write32Func
	Write64  Write64Func
}

func (a Accessors) valid() bool {
	return a.BulkCopy != nil && a.Read8 != nil && a.Read16 != nil && a.Read32 != nil &&
		a.Read64 != nil && a.Write8 != nil && a.Write16 != nil && a.Write32 != nil && a.Write64 != nil
}

var (
	mu      sync.RWMutex
	current Accessors
)

// SetAccessors installs the process-wide memory backend. This is how the
// core gets repointed at a new target; the RWMutex only makes the install
// itself atomic with respect to concurrent Current() calls -- it does not
// serialize the reads and writes the returned Accessors perform (see
// spec.md §5).
func SetAccessors(a Accessors) {
	if !a.valid() {
		panic("memio: SetAccessors called with a nil accessor")
	}
	mu.Lock()
	defer mu.Unlock()
	current = a
}

// Current returns the installed Accessors. Panics if none has been
// installed, since every read/write in this module is otherwise a nil
// pointer dereference one frame down.
func Current() Accessors {
	mu.RLock()
	defer mu.RUnlock()
	if !current.valid() {
		panic("memio: no accessors installed; call SetAccessors first")
	}
	return current
}

// AddressOf computes the byte address of a field bitOffset bits into the
// structure based at base, per spec.md §4.2: address_of(base, bit_offset)
// = base + bit_offset/8.
func AddressOf(base Address, bitOffset int64) Address {
	return base.Add(bitOffset / 8)
}

// ReadWidth reads an unsigned integer of the given bit width (8/16/32/64)
// from addr using the accessors in a.
func ReadWidth(a Accessors, width int64, addr Address) uint64 {
	switch width {
	case 8:
		return uint64(a.Read8(addr))
	case 16:
		return uint64(a.Read16(addr))
	case 32:
		return uint64(a.Read32(addr))
	case 64:
		return a.Read64(addr)
	default:
		panic(fmt.Sprintf("memio: unsupported access width %d", width))
	}
}

// WriteWidth writes value (already masked to width bits) to addr using
// the given width (8/16/32/64).
func WriteWidth(a Accessors, width int64, addr Address, value uint64) {
	switch width {
	case 8:
		a.Write8(addr, uint8(value))
	case 16:
		a.Write16(addr, uint16(value))
	case 32:
		a.Write32(addr, uint32(value))
	case 64:
		a.Write64(addr, value)
	default:
		panic(fmt.Sprintf("memio: unsupported access width %d", width))
	}
}
