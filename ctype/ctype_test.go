package ctype_test

import (
	"testing"

	"github.com/cstruct-go/cstruct/ctype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intType() ctype.Scalar { return ctype.Scalar{Size: 32, Name: "int", Signed: true} }

func TestScalarEquality(t *testing.T) {
	a := intType()
	b := ctype.Scalar{Size: 32, Name: "int", Signed: true}
	c := ctype.Scalar{Size: 32, Name: "unsigned int", Signed: false}

	assert.True(t, ctype.Equal(a, b))
	assert.False(t, ctype.Equal(a, c))
}

func TestPointerEqualityIsRecursive(t *testing.T) {
	p1 := ctype.Pointer{Size: 64, Pointed: intType()}
	p2 := ctype.Pointer{Size: 64, Pointed: ctype.Scalar{Size: 32, Name: "int", Signed: true}}
	p3 := ctype.Pointer{Size: 64, Pointed: ctype.Scalar{Size: 16, Name: "short", Signed: true}}

	assert.True(t, ctype.Equal(p1, p2))
	assert.False(t, ctype.Equal(p1, p3))
}

func TestStructFieldOrderPreserved(t *testing.T) {
	fm := ctype.NewFieldMap()
	fm.Set("n", ctype.Field{BitOffset: 0, Type: intType()})
	fm.Set("a", ctype.Field{BitOffset: 32, Type: ctype.Scalar{Size: 8, Name: "char", Signed: true}})
	fm.Set("b", ctype.Field{BitOffset: 40, Type: ctype.Scalar{Size: 8, Name: "char", Signed: true}})

	require.Equal(t, []string{"n", "a", "b"}, fm.Names())

	f, ok := fm.Get("a")
	require.True(t, ok)
	assert.EqualValues(t, 32, f.BitOffset)

	_, ok = fm.Get("missing")
	assert.False(t, ok)
}

func TestStructEqualityIsStructural(t *testing.T) {
	build := func() *ctype.Struct {
		fm := ctype.NewFieldMap()
		fm.Set("n", ctype.Field{BitOffset: 0, Type: intType()})
		return &ctype.Struct{Name: "x", TotalSize: 32, Fields: fm}
	}
	s1, s2 := build(), build()
	assert.True(t, ctype.Equal(s1, s2))
	assert.True(t, ctype.SameStruct(s1, s2))

	s3 := build()
	s3.Name = "y"
	assert.False(t, ctype.Equal(s1, s3))
}

func TestValidateRejectsUnalignedNonBitfield(t *testing.T) {
	fm := ctype.NewFieldMap()
	fm.Set("n", ctype.Field{BitOffset: 3, Type: intType()})
	s := &ctype.Struct{Name: "bad", TotalSize: 32, Fields: fm}

	assert.Panics(t, func() { s.Validate() })
}

func TestValidateAcceptsPackedBitfields(t *testing.T) {
	fm := ctype.NewFieldMap()
	fm.Set("bf1", ctype.Field{BitOffset: 0, Type: ctype.Bitfield{Size: 2, Signed: false}})
	fm.Set("bf2", ctype.Field{BitOffset: 2, Type: ctype.Bitfield{Size: 14, Signed: false}})
	s := &ctype.Struct{Name: "packed", TotalSize: 16, Fields: fm}

	assert.NotPanics(t, func() { s.Validate() })
}
