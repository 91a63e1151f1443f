package access

import (
	"github.com/cstruct-go/cstruct/ctype"
	"github.com/cstruct-go/cstruct/memio"
)

// StructPtr is a typed handle rooted at a struct-or-union's base address.
// It owns no memory and caches no reads; every Get/Set dispatches through
// the field engine. In the Python reference this intercepts arbitrary
// attribute access; here it's the explicit Get/Set pair spec.md §9
// recommends for a typed language.
type StructPtr struct {
	Struct *ctype.Struct
	Addr   memio.Address
}

// Get reads the named field.
func (sp StructPtr) Get(field string) (any, error) {
	f, ok := sp.Struct.Fields.Get(field)
	if !ok {
		return nil, unknownField(sp.Struct.Name, field)
	}
	return Read(f.Type, sp.Addr, f.BitOffset)
}

// Set writes value into the named field.
func (sp StructPtr) Set(field string, value any) error {
	f, ok := sp.Struct.Fields.Get(field)
	if !ok {
		return unknownField(sp.Struct.Name, field)
	}
	return Write(f.Type, sp.Addr, f.BitOffset, value)
}

// FieldNames lists field names in declaration order, for introspection.
func (sp StructPtr) FieldNames() []string {
	return sp.Struct.Fields.Names()
}

// Int returns the handle's raw address.
func (sp StructPtr) Int() memio.Address { return sp.Addr }

// Equal is structural equality on (struct descriptor, address).
func (sp StructPtr) Equal(other StructPtr) bool {
	return ctype.SameStruct(sp.Struct, other.Struct) && sp.Addr == other.Addr
}

// ArrayPtr is a typed handle over a (possibly flexible-length) array.
type ArrayPtr struct {
	Addr    memio.Address
	NumElem int64 // 0 means unknown length (flexible/zero-length array)
	Elem    ctype.Type
}

// charType matches the Python reference's ArrayPtr.CHAR_TYPE special
// case: an element type equal to this descriptor triggers string
// materialization in ReadAll.
var charType = ctype.Scalar{Size: 8, Name: "char", Signed: true}

// knownLen reports the array's length and whether it is known (non-zero).
func (ap ArrayPtr) knownLen() (int64, bool) {
	return ap.NumElem, ap.NumElem != 0
}

func (ap ArrayPtr) checkIndex(key int64) error {
	if n, known := ap.knownLen(); known {
		if key < 0 || key >= n {
			return indexOutOfRange(key, n)
		}
	}
	return nil
}

// Index reads the element at key.
func (ap ArrayPtr) Index(key int64) (any, error) {
	if err := ap.checkIndex(key); err != nil {
		return nil, err
	}
	return Read(ap.Elem, ap.Addr, key*ap.Elem.Bits())
}

// SetIndex writes value into the element at key.
func (ap ArrayPtr) SetIndex(key int64, value any) error {
	if err := ap.checkIndex(key); err != nil {
		return err
	}
	return Write(ap.Elem, ap.Addr, key*ap.Elem.Bits(), value)
}

// Len returns the known element count, or (0, false) if unknown.
func (ap ArrayPtr) Len() (int64, bool) {
	return ap.knownLen()
}

// Int returns the handle's raw address.
func (ap ArrayPtr) Int() memio.Address { return ap.Addr }

// Equal is structural equality on (address, length, element type).
func (ap ArrayPtr) Equal(other ArrayPtr) bool {
	return ap.Addr == other.Addr && ap.NumElem == other.NumElem && ctype.Equal(ap.Elem, other.Elem)
}

// ReadAll materializes n successive elements (or the array's full known
// length if n < 0). If Elem equals charType (the signed 8-bit scalar named
// "char"), the result is instead a string truncated at the first NUL byte,
// matching the reference's ArrayPtr.read() special case; other 8-bit
// scalars, such as one named "signed char", yield a slice of values.
func (ap ArrayPtr) ReadAll(n int64) (any, error) {
	if n < 0 {
		known, ok := ap.knownLen()
		if !ok {
			return nil, typeErr("array length is unknown; pass an explicit count to ReadAll")
		}
		n = known
	}

	isChar := ctype.Equal(ap.Elem, charType)
	items := make([]any, 0, n)
	for i := int64(0); i < n; i++ {
		v, err := ap.Index(i)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}

	if !isChar {
		return items, nil
	}

	buf := make([]byte, 0, n)
	for _, it := range items {
		c := it.(int64)
		if c == 0 {
			break
		}
		buf = append(buf, byte(c))
	}
	return string(buf), nil
}

// Ptr is a typed handle over a single pointee, without the pointed-type
// dispatch ArrayPtr/StructField pointers get automatically -- it is what
// a Pointer whose pointee isn't itself a StructField or Array reads as.
type Ptr struct {
	Pointed ctype.Type
	Addr    memio.Address
}

// Deref reads the pointee (the reference's p() method).
func (p Ptr) Deref() (any, error) {
	return Read(p.Pointed, p.Addr, 0)
}

// Index reads the element at key, treating the pointer as the base of an
// array of Pointed.
func (p Ptr) Index(key int64) (any, error) {
	return Read(p.Pointed, p.Addr, key*p.Pointed.Bits())
}

// SetIndex writes value into the element at key.
func (p Ptr) SetIndex(key int64, value any) error {
	return Write(p.Pointed, p.Addr, key*p.Pointed.Bits(), value)
}

// Add returns a new Ptr whose address is offset by n raw bytes. Per
// spec.md §9's open question, this mirrors the reference's unscaled byte
// arithmetic rather than C's element-scaled pointer arithmetic; use
// Index/SetIndex for element-scaled access.
func (p Ptr) Add(n int64) Ptr {
	return Ptr{Pointed: p.Pointed, Addr: p.Addr.Add(n)}
}

// Int returns the handle's raw address.
func (p Ptr) Int() memio.Address { return p.Addr }

// Equal is structural equality on (pointed type, address).
func (p Ptr) Equal(other Ptr) bool {
	return ctype.Equal(p.Pointed, other.Pointed) && p.Addr == other.Addr
}
