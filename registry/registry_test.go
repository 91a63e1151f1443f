package registry_test

import (
	"testing"

	"github.com/cstruct-go/cstruct/ctype"
	"github.com/cstruct-go/cstruct/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fooStruct() *ctype.Struct {
	fm := ctype.NewFieldMap()
	fm.Set("n", ctype.Field{BitOffset: 0, Type: ctype.Scalar{Size: 32, Name: "int", Signed: true}})
	return &ctype.Struct{Name: "foo", TotalSize: 32, Fields: fm}
}

func TestLookupByNameAndByDescriptor(t *testing.T) {
	r := registry.New()
	s := fooStruct()
	r.Register(map[string]*ctype.Struct{"foo": s})

	got, err := r.Lookup("foo")
	require.NoError(t, err)
	assert.Same(t, s, got)

	// a bare descriptor passes through untouched
	got2, err := r.Lookup(s)
	require.NoError(t, err)
	assert.Same(t, s, got2)
}

func TestLookupMissingNameFails(t *testing.T) {
	r := registry.New()
	_, err := r.Lookup("nope")
	require.Error(t, err)

	var nameErr *registry.NameResolutionError
	assert.ErrorAs(t, err, &nameErr)
	assert.Equal(t, "nope", nameErr.Name)
}

func TestRegisterMergesRatherThanReplaces(t *testing.T) {
	r := registry.New()
	r.Register(map[string]*ctype.Struct{"a": fooStruct()})
	r.Register(map[string]*ctype.Struct{"b": fooStruct()})

	_, err := r.Lookup("a")
	assert.NoError(t, err)
	_, err = r.Lookup("b")
	assert.NoError(t, err)
}

func TestLookupRecursiveForwardDeclaration(t *testing.T) {
	// Struct "node" embeds itself by name via a pointer; the registry
	// must not need "node" to be fully built before it's registered.
	r := registry.New()
	fm := ctype.NewFieldMap()
	fm.Set("next", ctype.Field{BitOffset: 0, Type: ctype.Pointer{
		Size:    64,
		Pointed: ctype.StructField{Size: 64, StructName: "node"},
	}})
	node := &ctype.Struct{Name: "node", TotalSize: 64, Fields: fm}
	r.Register(map[string]*ctype.Struct{"node": node})

	got, err := r.Lookup("node")
	require.NoError(t, err)
	assert.Same(t, node, got)
}
