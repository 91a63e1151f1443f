package ctype

import "fmt"

// Validate checks invariants 1-3 from the data model: within a non-union
// struct, field bit offsets must be non-decreasing (equal offsets are only
// legal for unions, which this package can't distinguish from structs by
// shape alone, so Validate only rejects offsets that go backwards); every
// scalar/pointer/struct-field offset must be byte-aligned; and any
// Bitfield's Size must be in [1, 64].
//
// Validate is meant to run once, right after a loader builds a Struct by
// hand (tests, or a future loader living outside this module) -- it is not
// re-checked on every field access. Violations panic, matching the
// "can't happen" panics in the teacher's type-walking code for malformed
// descriptors.
func (s *Struct) Validate() {
	var prev int64 = -1
	for _, name := range s.Fields.Names() {
		f, _ := s.Fields.Get(name)
		if bf, ok := f.Type.(Bitfield); ok {
			if bf.Size < 1 || bf.Size > 64 {
				panic(fmt.Sprintf("ctype: struct %q field %q: bitfield size %d out of [1,64]", s.Name, name, bf.Size))
			}
		} else if f.BitOffset%8 != 0 {
			panic(fmt.Sprintf("ctype: struct %q field %q: non-bitfield at unaligned bit offset %d", s.Name, name, f.BitOffset))
		}
		if f.BitOffset < prev {
			panic(fmt.Sprintf("ctype: struct %q field %q: bit offset %d decreases from previous field", s.Name, name, f.BitOffset))
		}
		prev = f.BitOffset
	}
}
