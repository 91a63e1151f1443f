// Package membuf implements the five memio accessor callables against a
// flat in-process byte slice, for driving this module's core against a
// simulated buffer (spec.md §1's "simulated buffer" backend) rather than
// a live debuggee. It is the one concrete backend this module ships;
// anything that attaches to a real process, core dump, or embedded
// target is an external collaborator (spec.md §1) and lives outside this
// repository.
//
// Adapted from the byte-order-aware read/write shape of the teacher's
// internal/core.Process (which holds a binary.ByteOrder and serves sized
// reads over a spliced set of memory mappings); membuf simplifies that to
// one contiguous slice, since a simulated buffer has no holes.
package membuf

import (
	"encoding/binary"
	"fmt"

	"github.com/cstruct-go/cstruct/memio"
)

// Buffer is a simulated target address space: len(Data) bytes of data,
// addressable starting at Base.
type Buffer struct {
	Base  memio.Address
	Data  []byte
	Order binary.ByteOrder
}

// New returns a Buffer of len(data) bytes addressable starting at base,
// using order for all multi-byte accesses. This is the one place
// endianness is decided -- per spec.md §1, "the memory accessors are the
// authority on byte order", not the core.
func New(base memio.Address, data []byte, order binary.ByteOrder) *Buffer {
	return &Buffer{Base: base, Data: data, Order: order}
}

func (b *Buffer) off(addr memio.Address) int {
	o := addr.Sub(b.Base)
	if o < 0 || int(o) >= len(b.Data) {
		panic(fmt.Sprintf("membuf: address %#x out of bounds [%#x, %#x)", addr, b.Base, b.Base.Add(int64(len(b.Data)))))
	}
	return int(o)
}

// Accessors returns the memio.Accessors bound to this buffer.
func (b *Buffer) Accessors() memio.Accessors {
	return memio.Accessors{
		BulkCopy: func(addr memio.Address, bytes []byte, length int) {
			o := b.off(addr)
			copy(b.Data[o:o+length], bytes[:length])
		},
		Read8:  func(addr memio.Address) uint8 { return b.Data[b.off(addr)] },
		Write8: func(addr memio.Address, v uint8) { b.Data[b.off(addr)] = v },
		Read16: func(addr memio.Address) uint16 {
			return b.Order.Uint16(b.Data[b.off(addr):])
		},
		Write16: func(addr memio.Address, v uint16) {
			b.Order.PutUint16(b.Data[b.off(addr):], v)
		},
		Read32: func(addr memio.Address) uint32 {
			return b.Order.Uint32(b.Data[b.off(addr):])
		},
		Write32: func(addr memio.Address, v uint32) {
			b.Order.PutUint32(b.Data[b.off(addr):], v)
		},
		Read64: func(addr memio.Address) uint64 {
			return b.Order.Uint64(b.Data[b.off(addr):])
		},
		Write64: func(addr memio.Address, v uint64) {
			b.Order.PutUint64(b.Data[b.off(addr):], v)
		},
	}
}

// Install is a convenience that calls memio.SetAccessors(b.Accessors()).
func (b *Buffer) Install() {
	memio.SetAccessors(b.Accessors())
}
