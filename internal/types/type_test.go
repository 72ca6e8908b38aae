package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewbak/mips-to-c/internal/types"
)

func TestUnifyNarrowsMonotonically(t *testing.T) {
	any := types.Any()
	s32 := types.S32()
	require.True(t, any.Unify(s32))
	assert.Equal(t, "s32", any.String())
	assert.Equal(t, "s32", s32.String())
}

func TestUnifyRejectsIncompatibleKinds(t *testing.T) {
	f := types.F32()
	p := types.Ptr()
	assert.False(t, f.Unify(p))
}

func TestUnifyIntPtrNarrowsToPointerOn32Bit(t *testing.T) {
	ip := types.IntPtr()
	p := types.Ptr()
	require.True(t, ip.Unify(p))
	assert.True(t, ip.IsPointer())
	assert.Equal(t, 32, ip.Size())
}

func TestUnifySizeConflictFails(t *testing.T) {
	a := types.OfSize(16)
	b := types.OfSize(32)
	assert.False(t, a.Unify(b))
}

func TestUnifySmallSizeExcludesFloatAndPointer(t *testing.T) {
	any := types.Any()
	small := types.OfSize(16)
	require.True(t, any.Unify(small))
	assert.False(t, any.IsFloat())
	assert.False(t, any.IsPointer())
}

func TestRepresentativeIsIdempotentAfterUnify(t *testing.T) {
	a := types.Intish()
	b := types.S32()
	require.True(t, a.Unify(b))
	r1 := a.Representative()
	r2 := a.Representative()
	assert.Same(t, r1, r2)
	assert.Same(t, r1, b.Representative())
}

func TestIsAnyBeforeAndAfterUnify(t *testing.T) {
	a := types.Any()
	assert.True(t, a.IsAny())
	require.True(t, a.Unify(types.U32()))
	assert.False(t, a.IsAny())
}

func TestToDeclAddsSpaceExceptForPointer(t *testing.T) {
	assert.Equal(t, "s32 ", types.S32().ToDecl())
	assert.Equal(t, "void *", types.Ptr().ToDecl())
}
