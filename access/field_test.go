package access_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstruct-go/cstruct/access"
	"github.com/cstruct-go/cstruct/ctype"
	"github.com/cstruct-go/cstruct/membuf"
	"github.com/cstruct-go/cstruct/memio"
)

func TestReadNullBaseIsNullDeref(t *testing.T) {
	installBE(t, make([]byte, 8))
	_, err := access.Read(intS(), memio.Address(0), 0)
	require.Error(t, err)
	assertKind(t, err, access.NullDeref)
}

func TestWriteNullBaseIsNullDeref(t *testing.T) {
	installBE(t, make([]byte, 8))
	err := access.Write(intS(), memio.Address(0), 0, 5)
	require.Error(t, err)
	assertKind(t, err, access.NullDeref)
}

func TestScalarSignedRoundTrip(t *testing.T) {
	installBE(t, make([]byte, 8))

	for _, v := range []int64{0, 1, -1, 2147483647, -2147483648} {
		require.NoError(t, access.Write(intS(), memBase, 0, v))
		got, err := access.Read(intS(), memBase, 0)
		require.NoError(t, err)
		assert.EqualValues(t, v, got)
	}
}

func TestScalar64BitAndPointerRoundTrip(t *testing.T) {
	// bits==64 is the case that exposed the checkOverflow full-width-shift
	// bug: every 64-bit scalar and every pointer (always 64 bits wide) must
	// round-trip without being rejected as value-overflow.
	installBE(t, make([]byte, 8))

	long := ctype.Scalar{Size: 64, Name: "long", Signed: true}
	for _, v := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
		require.NoError(t, access.Write(long, memBase, 0, v))
		got, err := access.Read(long, memBase, 0)
		require.NoError(t, err)
		assert.EqualValues(t, v, got)
	}

	ulong := ctype.Scalar{Size: 64, Name: "unsigned long", Signed: false}
	for _, v := range []uint64{0, 1, math.MaxUint64} {
		require.NoError(t, access.Write(ulong, memBase, 0, v))
		got, err := access.Read(ulong, memBase, 0)
		require.NoError(t, err)
		assert.EqualValues(t, v, got)
	}

	ptr := ctype.Pointer{Size: 64, Pointed: intS()}
	require.NoError(t, access.Write(ptr, memBase, 0, uint64(memBase)+4))
	gotPtr, err := access.Read(ptr, memBase, 0)
	require.NoError(t, err)
	assert.True(t, gotPtr.(access.Ptr).Equal(access.Ptr{Pointed: intS(), Addr: memBase.Add(4)}))
}

func TestScalarSignedOverflowRejected(t *testing.T) {
	installBE(t, make([]byte, 8))
	err := access.Write(intS(), memBase, 0, int64(1)<<31) // one past signed 32-bit max
	require.Error(t, err)
	assertKind(t, err, access.ValueOverflow)
}

func TestScalarSignedLowerBoundIsIntentionallyLax(t *testing.T) {
	// spec.md §9: the reference checks -(1<<size) <= v, one step past the
	// true minimum -(1<<(size-1)); this Go port preserves that quirk
	// rather than silently tightening it.
	installBE(t, make([]byte, 8))
	lax := -(int64(1) << 32) // one below the true int32 minimum
	require.NoError(t, access.Write(intS(), memBase, 0, lax))

	tooLow := lax - 1
	err := access.Write(intS(), memBase, 0, tooLow)
	require.Error(t, err)
	assertKind(t, err, access.ValueOverflow)
}

func TestScalarUnsignedOverflowRejected(t *testing.T) {
	installBE(t, make([]byte, 8))
	u := ctype.Scalar{Size: 8, Name: "unsigned char", Signed: false}
	assert.NoError(t, access.Write(u, memBase, 0, 255))
	err := access.Write(u, memBase, 0, 256)
	require.Error(t, err)
	assertKind(t, err, access.ValueOverflow)
	err = access.Write(u, memBase, 0, -1)
	require.Error(t, err)
	assertKind(t, err, access.ValueOverflow)
}

func TestBitfieldWriteReadModifyWrite(t *testing.T) {
	installBE(t, make([]byte, 4))

	lo := ctype.Bitfield{Size: 4, Signed: false}
	hi := ctype.Bitfield{Size: 4, Signed: false}

	require.NoError(t, access.Write(lo, memBase, 0, 0xA))
	require.NoError(t, access.Write(hi, memBase, 4, 0x5))

	gotLo, err := access.Read(lo, memBase, 0)
	require.NoError(t, err)
	gotHi, err := access.Read(hi, memBase, 4)
	require.NoError(t, err)

	assert.EqualValues(t, 0xA, gotLo)
	assert.EqualValues(t, 0x5, gotHi)
}

func TestBitfieldSignedRoundTrip(t *testing.T) {
	installBE(t, make([]byte, 8))
	bf := ctype.Bitfield{Size: 5, Signed: true}

	for _, v := range []int64{0, 1, 15, -1, -16} {
		require.NoError(t, access.Write(bf, memBase, 3, v))
		got, err := access.Read(bf, memBase, 3)
		require.NoError(t, err)
		assert.EqualValues(t, v, got)
	}
}

func TestBitfieldSignedWriteUsesTightBound(t *testing.T) {
	// Unlike scalar writes, bitfield writes reject the lax -(1<<size) lower
	// bound: a signed 5-bit field's true minimum is -16, and -20 must be
	// value-overflow rather than silently masked to 12.
	installBE(t, make([]byte, 8))
	bf := ctype.Bitfield{Size: 5, Signed: true}

	require.NoError(t, access.Write(bf, memBase, 3, int64(-16)))
	err := access.Write(bf, memBase, 3, int64(-20))
	require.Error(t, err)
	assertKind(t, err, access.ValueOverflow)
}

func TestArrayWriteNonBufferIsTypeError(t *testing.T) {
	installBE(t, make([]byte, 8))
	arr := ctype.Array{TotalSize: 40, NumElem: 5, Elem: charS()}
	err := access.Write(arr, memBase, 0, 5)
	require.Error(t, err)
	assertKind(t, err, access.TypeError)
}

func TestStructFieldWriteIsTypeError(t *testing.T) {
	installBE(t, make([]byte, 8))
	sf := ctype.StructField{Size: 64, StructName: "whatever"}
	err := access.Write(sf, memBase, 0, 5)
	require.Error(t, err)
	assertKind(t, err, access.TypeError)
}

// UnsupportedFieldKind is the engine's catch-all, matching the reference's
// NotImplementedError: ctype.Type is a sealed interface (its sealedType
// method is unexported), so the only variants that reach it are known ones
// the switches leave out -- Read of a *ctype.Struct, and Write of a
// Function, a Void or a *ctype.Struct. No test in this file exercises it.

func TestBufferAccessorsBigEndianSmoke(t *testing.T) {
	buf := membuf.New(memBase, make([]byte, 8), binary.BigEndian)
	buf.Install()
	require.NoError(t, access.Write(intS(), memBase, 0, 42))
	got, err := access.Read(intS(), memBase, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 42, got)
}
