// Package types implements the type lattice used while translating MIPS
// register and stack contents into C-like expressions. Types start out
// unconstrained and only ever narrow: a value's type can go from "any" to
// "intish" to "s32", but never back, and never from int to float.
package types

import "fmt"

// Kind is a bitmask of the possible value categories a Type may represent.
type Kind int

const (
	KindInt   Kind = 1
	KindPtr   Kind = 2
	KindFloat Kind = 4
	KindIntPtr Kind = KindInt | KindPtr
	KindAny   Kind = KindInt | KindPtr | KindFloat
)

// Sign is a bitmask tracking whether an integer type is known to be signed,
// unsigned, or still undetermined (both bits set).
type Sign int

const (
	Signed   Sign = 1
	Unsigned Sign = 2
	AnySign  Sign = Signed | Unsigned
)

// Type is a union-find node. Two Types that have been unified always share
// a representative and therefore always agree on Kind/Size/Sign from then
// on; unify never needs to be called again for that pair.
type Type struct {
	kind   Kind
	size   *int
	sign   Sign
	parent *Type
}

func newType(kind Kind, size *int, sign Sign) *Type {
	return &Type{kind: kind, size: size, sign: sign}
}

func sizePtr(n int) *int { return &n }

// Any returns a completely unconstrained type.
func Any() *Type { return newType(KindAny, nil, AnySign) }

// Intish returns an integer of unknown size and signedness.
func Intish() *Type { return newType(KindInt, nil, AnySign) }

// IntPtr returns a type that is either an integer or a pointer.
func IntPtr() *Type { return newType(KindIntPtr, nil, AnySign) }

// Ptr returns a 32-bit pointer type.
func Ptr() *Type { return newType(KindPtr, sizePtr(32), AnySign) }

// F32 returns a 32-bit float type.
func F32() *Type { return newType(KindFloat, sizePtr(32), AnySign) }

// F64 returns a 64-bit float type.
func F64() *Type { return newType(KindFloat, sizePtr(64), AnySign) }

// S32 returns a signed 32-bit integer type.
func S32() *Type { return newType(KindInt, sizePtr(32), Signed) }

// U32 returns an unsigned 32-bit integer type.
func U32() *Type { return newType(KindInt, sizePtr(32), Unsigned) }

// U64 returns an unsigned 64-bit integer type.
func U64() *Type { return newType(KindInt, sizePtr(64), Unsigned) }

// OfSize returns an otherwise-unconstrained type pinned to a given size.
func OfSize(size int) *Type { return newType(KindAny, sizePtr(size), AnySign) }

// Bool is an alias for Intish, matching the convention that MIPS has no
// native boolean representation; comparisons just produce intish values.
func Bool() *Type { return Intish() }

// Representative returns the canonical union-find root for t, path
// compressing along the way.
func (t *Type) Representative() *Type {
	if t.parent == nil {
		return t
	}
	t.parent = t.parent.Representative()
	return t.parent
}

// Unify tries to make t and other equal. On success, t and other (and
// everything previously unified with either) will always compare as the
// same representative type from then on. Unification only narrows: it
// intersects kind masks and sign masks and never introduces information
// that contradicts what was already known. A false return means the types
// are fundamentally incompatible (e.g. a float being used as a pointer).
func (t *Type) Unify(other *Type) bool {
	x := t.Representative()
	y := other.Representative()
	if x == y {
		return true
	}
	if x.size != nil && y.size != nil && *x.size != *y.size {
		return false
	}
	var size *int
	if x.size != nil {
		size = x.size
	} else {
		size = y.size
	}
	kind := x.kind & y.kind
	sign := x.sign & y.sign
	if size != nil && (*size == 8 || *size == 16) {
		kind &^= KindFloat
	}
	if size != nil && (*size == 8 || *size == 16 || *size == 64) {
		kind &^= KindPtr
	}
	if kind == 0 || sign == 0 {
		return false
	}
	if kind == KindPtr {
		thirtyTwo := 32
		size = &thirtyTwo
	}
	if sign != AnySign && kind != KindInt {
		// A concrete sign only makes sense for plain integers; this mirrors
		// an internal consistency assumption rather than a real constraint.
		return false
	}
	x.kind = kind
	x.size = size
	x.sign = sign
	y.parent = x
	return true
}

// IsFloat reports whether t is known to be a float.
func (t *Type) IsFloat() bool { return t.Representative().kind == KindFloat }

// IsPointer reports whether t is known to be a pointer.
func (t *Type) IsPointer() bool { return t.Representative().kind == KindPtr }

// IsUnsigned reports whether t is known to be unsigned.
func (t *Type) IsUnsigned() bool { return t.Representative().sign == Unsigned }

// IsAny reports whether t carries no information at all yet.
func (t *Type) IsAny() bool { return t.String() == "?" }

// Size returns t's bit width, defaulting to 32 when unconstrained.
func (t *Type) Size() int {
	r := t.Representative()
	if r.size == nil {
		return 32
	}
	return *r.size
}

// ToDecl renders t the way a C declaration would want it: with a trailing
// space, unless it is already a pointer type ending in "*".
func (t *Type) ToDecl() string {
	s := t.String()
	if len(s) > 0 && s[len(s)-1] == '*' {
		return s
	}
	return s + " "
}

func (t *Type) String() string {
	r := t.Representative()
	size := 32
	if r.size != nil {
		size = *r.size
	}
	signChar := "u"
	if r.sign&Signed != 0 {
		signChar = "s"
	}
	switch r.kind {
	case KindAny:
		if r.size != nil {
			return fmt.Sprintf("?%d", size)
		}
		return "?"
	case KindPtr:
		return "void *"
	case KindFloat:
		return fmt.Sprintf("f%d", size)
	default:
		return fmt.Sprintf("%s%d", signChar, size)
	}
}

// GoString renders t's internal union-find state for debugging, analogous
// to the teacher's __repr__ conventions elsewhere in this codebase.
func (t *Type) GoString() string {
	r := t.Representative()
	var sign string
	if r.sign&Signed != 0 {
		sign += "+"
	}
	if r.sign&Unsigned != 0 {
		sign += "-"
	}
	var kind string
	if r.kind&KindInt != 0 {
		kind += "I"
	}
	if r.kind&KindPtr != 0 {
		kind += "P"
	}
	if r.kind&KindFloat != 0 {
		kind += "F"
	}
	sizestr := "?"
	if r.size != nil {
		sizestr = fmt.Sprintf("%d", *r.size)
	}
	return fmt.Sprintf("Type(%s%s%s)", sign, kind, sizestr)
}
