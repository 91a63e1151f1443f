// Package ctype describes the type model used to navigate C structures in
// an opaque address space: a closed set of tagged value types (scalars,
// bitfields, pointers, arrays, structs and unions, function and void) with
// structural equality, mirroring what a layout-extraction step would emit
// for a debuggee's types.
package ctype

import "github.com/emirpasic/gods/maps/linkedhashmap"

// Type is the common interface implemented by every type descriptor
// variant. Bits reports the type's size measured in bits; 0 for Void and
// Function, which only ever appear as a Pointer's pointee.
type Type interface {
	Bits() int64
	sealedType()
}

// Void is the type of a void pointer's pointee. Any direct read or write
// through it is a type error; it exists only to be pointed at.
type Void struct{}

func (Void) Bits() int64 { return 0 }
func (Void) sealedType() {}

// Equal reports whether other is also a Void. Provided for symmetry with
// the other variants' Equal methods.
func (v Void) Equal(other Type) bool {
	_, ok := other.(Void)
	return ok
}

// Scalar is an integer or floating-point scalar. Name carries the C
// spelling (e.g. "int", "unsigned char", "long int") for diagnostics;
// Signed governs sign extension on read and the overflow check on write.
type Scalar struct {
	Size   int64
	Name   string
	Signed bool
}

func (s Scalar) Bits() int64 { return s.Size }
func (Scalar) sealedType()   {}

func (s Scalar) Equal(other Type) bool {
	o, ok := other.(Scalar)
	return ok && s.Size == o.Size && s.Name == o.Name && s.Signed == o.Signed
}

// Bitfield is a bit-granular field, never independently named and never
// appearing anywhere but embedded in a Struct's FieldMap at a bit offset
// that need not be byte-aligned. Size must be in [1, 64].
type Bitfield struct {
	Size   int64
	Signed bool
}

func (b Bitfield) Bits() int64 { return b.Size }
func (Bitfield) sealedType()   {}

func (b Bitfield) Equal(other Type) bool {
	o, ok := other.(Bitfield)
	return ok && b.Size == o.Size && b.Signed == o.Signed
}

// Pointer is a machine pointer, Size bits wide (typically 64), to Pointed.
type Pointer struct {
	Size    int64
	Pointed Type
}

func (p Pointer) Bits() int64 { return p.Size }
func (Pointer) sealedType()   {}

func (p Pointer) Equal(other Type) bool {
	o, ok := other.(Pointer)
	if !ok || p.Size != o.Size {
		return false
	}
	return Equal(p.Pointed, o.Pointed)
}

// Array is a (possibly flexible) array of NumElem elements of type Elem.
// NumElem == 0 denotes a flexible or zero-length array, normalized to
// "unknown length" by ArrayPtr.
type Array struct {
	TotalSize int64
	NumElem   int64
	Elem      Type
}

func (a Array) Bits() int64 { return a.TotalSize }
func (Array) sealedType()   {}

func (a Array) Equal(other Type) bool {
	o, ok := other.(Array)
	if !ok || a.NumElem != o.NumElem {
		return false
	}
	return Equal(a.Elem, o.Elem)
}

// Function is a function type. It only ever appears as a Pointer's
// pointee; a direct read through it is a type error. Return may be nil.
type Function struct {
	Return Type
}

func (Function) Bits() int64 { return 0 }
func (Function) sealedType() {}

func (f Function) Equal(other Type) bool {
	o, ok := other.(Function)
	if !ok {
		return false
	}
	if f.Return == nil || o.Return == nil {
		return f.Return == nil && o.Return == nil
	}
	return Equal(f.Return, o.Return)
}

// StructField is a by-value embedded struct or union, referenced by name
// so that the registry resolves it lazily at access time (permitting
// forward and recursive struct declarations). Size is the full embedded
// bit size, carried here so layout math doesn't need a registry lookup.
type StructField struct {
	Size       int64
	StructName string
}

func (s StructField) Bits() int64 { return s.Size }
func (StructField) sealedType()   {}

func (s StructField) Equal(other Type) bool {
	o, ok := other.(StructField)
	return ok && s.Size == o.Size && s.StructName == o.StructName
}

// Field is one entry of a Struct's field map: its bit offset from the
// struct's base and its type.
type Field struct {
	BitOffset int64
	Type      Type
}

// FieldMap is an insertion-ordered name -> Field map. Struct layouts are
// printed and walked in declaration order (dump_struct-style tools sort by
// offset instead, see access.DumpStruct), so insertion order must survive
// even though Go's builtin map does not preserve it.
type FieldMap struct {
	m *linkedhashmap.Map
}

// NewFieldMap returns an empty, ready-to-use FieldMap.
func NewFieldMap() *FieldMap {
	return &FieldMap{m: linkedhashmap.New()}
}

// Set appends or overwrites the field named name.
func (fm *FieldMap) Set(name string, f Field) {
	fm.m.Put(name, f)
}

// Get looks up the field named name.
func (fm *FieldMap) Get(name string) (Field, bool) {
	v, ok := fm.m.Get(name)
	if !ok {
		return Field{}, false
	}
	return v.(Field), true
}

// Names returns field names in insertion (declaration) order.
func (fm *FieldMap) Names() []string {
	keys := fm.m.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.(string)
	}
	return names
}

// Len reports the number of fields.
func (fm *FieldMap) Len() int {
	return fm.m.Size()
}

// Equal reports whether fm and other hold the same names mapped to equal
// Fields in the same order, matching the Python reference's dict equality
// (which is order-independent) plus the order check this Go port adds for
// its stricter FieldMap type.
func (fm *FieldMap) Equal(other *FieldMap) bool {
	if fm.Len() != other.Len() {
		return false
	}
	names := fm.Names()
	otherNames := other.Names()
	for i, n := range names {
		if n != otherNames[i] {
			return false
		}
		f, _ := fm.Get(n)
		g, _ := other.Get(n)
		if f.BitOffset != g.BitOffset || !Equal(f.Type, g.Type) {
			return false
		}
	}
	return true
}

// Struct is a named aggregate (struct or union alike; unions repeat the
// same BitOffset, typically 0, across fields).
type Struct struct {
	Name      string
	TotalSize int64
	Fields    *FieldMap
}

func (s *Struct) Bits() int64 { return s.TotalSize }
func (*Struct) sealedType()   {}

func (s *Struct) Equal(other Type) bool {
	o, ok := other.(*Struct)
	if !ok {
		return false
	}
	return s.Name == o.Name && s.TotalSize == o.TotalSize && s.Fields.Equal(o.Fields)
}

// SameStruct reports whether a and b describe the same struct type. Used
// by access.DumpStruct to detect self-referential fields (e.g. an
// intrusive list_head) and avoid recursing into them forever, mirroring
// the Python reference's is_struct_type helper.
func SameStruct(a, b *Struct) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}

// Equal is the free-function form of structural equality used throughout
// this package and by access for comparing arbitrary Type values, since
// Type itself carries no Equal method (Void and scalar types would
// otherwise need boxing to satisfy a common signature).
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case Void:
		return av.Equal(b)
	case Scalar:
		return av.Equal(b)
	case Bitfield:
		return av.Equal(b)
	case Pointer:
		return av.Equal(b)
	case Array:
		return av.Equal(b)
	case Function:
		return av.Equal(b)
	case StructField:
		return av.Equal(b)
	case *Struct:
		return av.Equal(b)
	default:
		return false
	}
}
