package access

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/cstruct-go/cstruct/ctype"
	"github.com/cstruct-go/cstruct/memio"
	"github.com/cstruct-go/cstruct/registry"
)

// Partial binds a struct descriptor (or registered name) once and returns
// a function that casts any address against it, mirroring the Python
// reference's partial_struct(name)(addr) idiom for repeatedly re-typing
// addresses against the same layout.
func Partial(structOrName any) (func(addr memio.Address) StructPtr, error) {
	s, err := registry.Lookup(structOrName)
	if err != nil {
		return nil, nameResolution(fmt.Sprint(structOrName), err)
	}
	return func(addr memio.Address) StructPtr {
		return StructPtr{Struct: s, Addr: addr}
	}, nil
}

// Sizeof returns the size in bytes of structOrName, or of one of its
// fields when field is non-empty. Bitfields have no byte-granular size
// and raise a type error.
func Sizeof(structOrName any, field string) (int64, error) {
	s, err := registry.Lookup(structOrName)
	if err != nil {
		return 0, nameResolution(fmt.Sprint(structOrName), err)
	}
	if field == "" {
		return s.TotalSize / 8, nil
	}
	f, ok := s.Fields.Get(field)
	if !ok {
		return 0, unknownField(s.Name, field)
	}
	if _, isBitfield := f.Type.(ctype.Bitfield); isBitfield {
		return 0, typeErr("can't take the size of bitfield %q", field)
	}
	return f.Type.Bits() / 8, nil
}

// Offsetof returns the byte offset of field within structOrName. Bitfield
// offsets raise a type error, since they aren't byte-granular.
func Offsetof(structOrName any, field string) (int64, error) {
	s, err := registry.Lookup(structOrName)
	if err != nil {
		return 0, nameResolution(fmt.Sprint(structOrName), err)
	}
	f, ok := s.Fields.Get(field)
	if !ok {
		return 0, unknownField(s.Name, field)
	}
	if _, isBitfield := f.Type.(ctype.Bitfield); isBitfield {
		return 0, typeErr("can't take the offset of bitfield %q", field)
	}
	return f.BitOffset / 8, nil
}

// ContainerOf returns a StructPtr rooted at ptrLike's address minus
// Offsetof(structOrName, field): the classic container_of idiom for
// recovering an enclosing struct from a pointer to one of its fields.
// ptrLike is anything Addressable, or a plain memio.Address.
func ContainerOf(ptrLike any, structOrName any, field string) (StructPtr, error) {
	addr, err := toAddress(ptrLike)
	if err != nil {
		return StructPtr{}, err
	}
	off, err := Offsetof(structOrName, field)
	if err != nil {
		return StructPtr{}, err
	}
	s, err := registry.Lookup(structOrName)
	if err != nil {
		return StructPtr{}, nameResolution(fmt.Sprint(structOrName), err)
	}
	return StructPtr{Struct: s, Addr: addr.Add(-off)}, nil
}

// Addressable is implemented by every handle type so ContainerOf and
// to_int-style helpers can accept any of them interchangeably.
type Addressable interface {
	Int() memio.Address
}

func toAddress(v any) (memio.Address, error) {
	switch x := v.(type) {
	case memio.Address:
		return x, nil
	case Addressable:
		return x.Int(), nil
	default:
		return 0, typeErr("can't resolve %T to an address", v)
	}
}

// DumpStruct writes a human-readable walk of sp to w: each field in
// ascending-offset order, recursing into embedded struct handles up to
// levels deep, skipping fields that are a StructPtr of the same struct
// type (self-referential, e.g. an intrusive list) to avoid cycles, and
// skipping null pointers.
func DumpStruct(w io.Writer, sp StructPtr, levels int, indent int) {
	type ordered struct {
		name string
		off  int64
	}
	names := sp.Struct.Fields.Names()
	fields := make([]ordered, len(names))
	for i, n := range names {
		f, _ := sp.Struct.Fields.Get(n)
		fields[i] = ordered{name: n, off: f.BitOffset}
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].off < fields[j].off })

	pad := func() string {
		b := make([]byte, indent)
		for i := range b {
			b[i] = ' '
		}
		return string(b)
	}

	for _, fo := range fields {
		val, err := sp.Get(fo.name)
		if err != nil {
			fmt.Fprintf(w, "%s%s : %v\n", pad(), fo.name, err)
			continue
		}

		f, _ := sp.Struct.Fields.Get(fo.name)

		if nested, ok := val.(StructPtr); ok &&
			!ctype.SameStruct(nested.Struct, sp.Struct) &&
			levels > 0 && nested.Addr != 0 {
			fmt.Fprintf(w, "%s%s = %v\n", pad(), fo.name, val)
			DumpStruct(w, nested, levels-1, indent+4)
			continue
		}

		if sc, ok := f.Type.(ctype.Scalar); ok {
			fmt.Fprintf(w, "%s%s %s = %v (0x%x, %s)\n", pad(), sc.Name, fo.name, val, val,
				humanize.Comma(toInt64ForDisplay(val)))
			continue
		}

		fmt.Fprintf(w, "%s%s = %v\n", pad(), fo.name, val)
	}
}

func toInt64ForDisplay(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case uint64:
		return int64(x)
	default:
		return 0
	}
}
