// Package access is the field I/O engine and navigation-handle layer:
// given a ctype.Type, a base address, and a bit offset, it performs typed
// reads and writes -- including bitfield slicing, sign correction, and
// overflow checking -- and builds the StructPtr/ArrayPtr/Ptr handles that
// let callers chain through nested fields without materializing copies.
package access

import (
	"github.com/cstruct-go/cstruct/ctype"
	"github.com/cstruct-go/cstruct/memio"
	"github.com/cstruct-go/cstruct/registry"
)

// accessWidths are the only widths the backend can service, in ascending
// order, as required by spec.md §4.3's bitfield width-selection rule.
var accessWidths = [...]int64{8, 16, 32, 64}

// Read performs a typed read of t at bit offset bitOffset within the
// structure based at base, per spec.md §4.3. base must be non-zero.
func Read(t ctype.Type, base memio.Address, bitOffset int64) (any, error) {
	if base == 0 {
		return nil, nullDeref("read")
	}
	a := memio.Current()
	addr := memio.AddressOf(base, bitOffset)

	switch v := t.(type) {
	case ctype.Scalar:
		raw := memio.ReadWidth(a, v.Size, addr)
		if v.Signed {
			return asSigned(raw, v.Size), nil
		}
		return raw, nil

	case ctype.Bitfield:
		return readBitfield(a, base, bitOffset, v)

	case ctype.Pointer:
		ptr := memio.Address(memio.ReadWidth(a, v.Size, addr))
		switch pt := v.Pointed.(type) {
		case ctype.StructField:
			s, err := registry.Lookup(pt.StructName)
			if err != nil {
				return nil, nameResolution(pt.StructName, err)
			}
			return StructPtr{Struct: s, Addr: ptr}, nil
		case ctype.Array:
			return ArrayPtr{Addr: ptr, NumElem: pt.NumElem, Elem: pt.Elem}, nil
		default:
			return Ptr{Pointed: v.Pointed, Addr: ptr}, nil
		}

	case ctype.StructField:
		s, err := registry.Lookup(v.StructName)
		if err != nil {
			return nil, nameResolution(v.StructName, err)
		}
		return StructPtr{Struct: s, Addr: addr}, nil

	case ctype.Array:
		return ArrayPtr{Addr: addr, NumElem: v.NumElem, Elem: v.Elem}, nil

	case ctype.Function:
		return nil, typeErr("attempt to dereference a function pointer")
	case ctype.Void:
		return nil, typeErr("attempt to dereference a void pointer")

	default:
		return nil, unsupportedFieldKind(t)
	}
}

// readBitfield implements spec.md §4.3's bitfield extraction: pick the
// smallest aligned access width covering the field, read that word, shift
// and mask out the field's bits, then sign-extend if needed.
func readBitfield(a memio.Accessors, base memio.Address, bitOffset int64, bf ctype.Bitfield) (any, error) {
	width, ok := bitfieldWidth(bitOffset, bf.Size)
	if !ok {
		return nil, crossWordBitfield(base, bitOffset, bf.Size)
	}

	alignedBitOffset := (bitOffset / width) * width
	addr := memio.AddressOf(base, alignedBitOffset)
	word := memio.ReadWidth(a, width, addr)

	intra := bitOffset - alignedBitOffset
	shift := width - intra - bf.Size
	mask := uint64(1)<<uint(bf.Size) - 1
	val := (word >> uint(shift)) & mask

	if bf.Signed {
		return asSigned(val, bf.Size), nil
	}
	return val, nil
}

// bitfieldWidth picks the smallest w in {8,16,32,64} such that
// (bitOffset mod w) + size <= w, i.e. the field fits entirely within one
// aligned w-bit word at its offset. Returns ok=false if no such w exists.
func bitfieldWidth(bitOffset, size int64) (width int64, ok bool) {
	for _, w := range accessWidths {
		if bitOffset%w+size <= w {
			return w, true
		}
	}
	return 0, false
}

// asSigned sign-extends the low bits-many bits of raw (an unsigned
// two's-complement encoding) to a signed int64.
func asSigned(raw uint64, bits int64) int64 {
	if bits == 64 {
		return int64(raw)
	}
	signBit := uint64(1) << uint(bits-1)
	if raw&signBit != 0 {
		return int64(raw) - int64(1)<<uint(bits)
	}
	return int64(raw)
}

// asUnsigned converts a signed value to its bits-wide two's-complement
// unsigned encoding, the inverse of asSigned.
func asUnsigned(value int64, bits int64) uint64 {
	if value >= 0 {
		return uint64(value)
	}
	return uint64(value + 1<<uint(bits))
}

// Write performs a typed write of value into t at bit offset bitOffset
// within the structure based at base, per spec.md §4.4. base must be
// non-zero.
func Write(t ctype.Type, base memio.Address, bitOffset int64, value any) error {
	if base == 0 {
		return nullDeref("write")
	}
	a := memio.Current()
	addr := memio.AddressOf(base, bitOffset)

	switch v := t.(type) {
	case ctype.Scalar:
		n, err := asInt64(value)
		if err != nil {
			return err
		}
		if err := checkOverflow(n, v.Size, v.Signed); err != nil {
			return err
		}
		raw := uint64(n)
		if v.Signed {
			raw = asUnsigned(n, v.Size)
		}
		memio.WriteWidth(a, v.Size, addr, raw)
		return nil

	case ctype.Bitfield:
		return writeBitfield(a, base, bitOffset, v, value)

	case ctype.Pointer:
		n, err := asInt64(value)
		if err != nil {
			return err
		}
		if err := checkOverflow(n, v.Size, false); err != nil {
			return err
		}
		memio.WriteWidth(a, v.Size, addr, uint64(n))
		return nil

	case ctype.StructField:
		return typeErr("can't set struct field %q directly; set its fields instead", v.StructName)

	case ctype.Array:
		buf, err := asBytes(value)
		if err != nil {
			return err
		}
		capBytes := v.TotalSize / 8
		if int64(len(buf)) > capBytes {
			return bufferOverflow(int64(len(buf)), capBytes)
		}
		a.BulkCopy(addr, buf, len(buf))
		return nil

	default:
		return unsupportedFieldKind(t)
	}
}

// writeBitfield implements a read-modify-write of the bitfield's covering
// word, mirroring readBitfield's width selection. The Python reference
// leaves bitfield write unimplemented (spec.md §4.4); this Go port
// completes it per the spec's guidance to mirror the read algorithm.
func writeBitfield(a memio.Accessors, base memio.Address, bitOffset int64, bf ctype.Bitfield, value any) error {
	n, err := asInt64(value)
	if err != nil {
		return err
	}
	if err := checkBitfieldOverflow(n, bf.Size, bf.Signed); err != nil {
		return err
	}

	width, ok := bitfieldWidth(bitOffset, bf.Size)
	if !ok {
		return crossWordBitfield(base, bitOffset, bf.Size)
	}

	alignedBitOffset := (bitOffset / width) * width
	addr := memio.AddressOf(base, alignedBitOffset)
	word := memio.ReadWidth(a, width, addr)

	intra := bitOffset - alignedBitOffset
	shift := uint(width - intra - bf.Size)
	mask := uint64(1)<<uint(bf.Size) - 1

	raw := asUnsigned(n, bf.Size) & mask
	word = (word &^ (mask << shift)) | (raw << shift)

	memio.WriteWidth(a, width, addr, word)
	return nil
}

// checkOverflow implements spec.md §4.4's scalar/pointer range check,
// preserving the reference's documented quirk: the signed lower bound is
// -(1<<bits) rather than the true two's-complement minimum
// -(1<<(bits-1)), one step too lax. See SPEC_FULL.md §9 and DESIGN.md for
// why this is kept rather than "fixed". bits==64 is special-cased: in Go a
// shift by the full operand width or more yields 0, so 1<<64 silently
// evaluates to 0 rather than overflowing --
// every int64 bit pattern is already a valid signed or (via wraparound)
// unsigned 64-bit value, so there is no narrower range to reject.
func checkOverflow(value int64, bits int64, signed bool) error {
	if bits == 64 {
		return nil
	}
	if signed {
		lo := -(int64(1) << uint(bits))
		hi := int64(1) << uint(bits-1)
		if value < lo || value >= hi {
			return valueOverflow(value, bits, true)
		}
		return nil
	}
	if value < 0 || uint64(value) >= uint64(1)<<uint(bits) {
		return valueOverflow(value, bits, false)
	}
	return nil
}

// checkBitfieldOverflow implements spec.md §4.4's bitfield range check.
// Unlike checkOverflow's scalar path, bitfields get the tight
// two's-complement signed range [-(1<<(size-1)), 1<<(size-1)) with none of
// the scalar open-question's extra slack -- DESIGN.md's lax-lower-bound
// decision is scoped to scalar writes only. size==64 is special-cased for
// the same full-width-shift reason as checkOverflow.
func checkBitfieldOverflow(value int64, size int64, signed bool) error {
	if size == 64 {
		return nil
	}
	if signed {
		lo := -(int64(1) << uint(size-1))
		hi := int64(1) << uint(size-1)
		if value < lo || value >= hi {
			return valueOverflow(value, size, true)
		}
		return nil
	}
	if value < 0 || uint64(value) >= uint64(1)<<uint(size) {
		return valueOverflow(value, size, false)
	}
	return nil
}

// asInt64 coerces the handful of integer-ish Go types callers are likely
// to pass (the reference accepts plain Python ints) into an int64.
func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case memio.Address:
		return int64(v), nil
	default:
		return 0, typeErr("can't write a %T as a scalar/pointer value", value)
	}
}

// asBytes converts a string or []byte into a byte slice. A string is taken
// as its raw bytes: for ASCII text that is the same as the reference's
// ASCII encoding; non-ASCII text is not rejected and is written as its
// UTF-8 bytes.
func asBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, typeErr("can't assign %T to an array; assign a string or []byte, or set its elements", value)
	}
}
