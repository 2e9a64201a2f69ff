package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPair struct {
	ConstExprBase
}

func getTestPair(ctx *Context, a, b Value) *testPair {
	return InternConstExpr(ctx, "test.pair", ctx.IntType(), []Value{a, b},
		func() ConstExpr { return &testPair{} }).(*testPair)
}

func TestConstExprInterning(t *testing.T) {
	ctx := NewContext()
	one := GetIntLiteral(ctx, 1)
	two := GetIntLiteral(ctx, 2)

	p1 := getTestPair(ctx, one, two)
	p2 := getTestPair(ctx, one, two)
	p3 := getTestPair(ctx, two, one)

	assert.Same(t, p1, p2)
	assert.NotSame(t, p1, p3)
	assert.Equal(t, 2, p1.NumOperands())
	assert.Same(t, Value(one), p1.Operand(0))
}

func TestConstExprTracksUses(t *testing.T) {
	ctx := NewContext()
	one := GetIntLiteral(ctx, 1)
	p := getTestPair(ctx, one, GetIntLiteral(ctx, 2))

	// The expression shows up on its operands' use-lists like any user.
	found := false
	one.Uses().ForEach(func(u *Use) {
		if u.User() == User(p) {
			found = true
		}
	})
	assert.True(t, found)
}

func TestDestroyConstantReleasesOperandsAndInterning(t *testing.T) {
	ctx := NewContext()
	one := GetIntLiteral(ctx, 1)
	two := GetIntLiteral(ctx, 2)
	p := getTestPair(ctx, one, two)

	p.DestroyConstant()

	assert.True(t, one.UseEmpty())
	assert.True(t, two.UseEmpty())
	// The slot is free again: interning builds a fresh expression.
	assert.NotSame(t, p, getTestPair(ctx, one, two))
}

func TestDestroyValueCascadesIntoConstUsers(t *testing.T) {
	ctx := NewContext()
	def := newTestInstr(ctx, "producer", nil)
	p := getTestPair(ctx, def.Out(), GetIntLiteral(ctx, 2))
	consumer := newTestInstr(ctx, "consumer", p)

	def.Destroy()

	// The expression could not outlive its operand; its consumer got the
	// Undef substitution describing the expression.
	assert.True(t, def.Out().UseEmpty())
	_, isUndef := consumer.In().Get().(*UndefLiteral)
	assert.True(t, isUndef)
}

func TestNestedConstExprCascade(t *testing.T) {
	ctx := NewContext()
	def := newTestInstr(ctx, "producer", nil)
	inner := getTestPair(ctx, def.Out(), GetIntLiteral(ctx, 1))
	outer := getTestPair(ctx, inner, GetIntLiteral(ctx, 2))
	require.Equal(t, 1, inner.Uses().Len())

	def.Destroy()

	assert.True(t, inner.UseEmpty())
	assert.True(t, outer.UseEmpty())
}

func TestPruneDeadConstUsers(t *testing.T) {
	ctx := NewContext()
	def := newTestInstr(ctx, "producer", nil)
	dead := getTestPair(ctx, def.Out(), GetIntLiteral(ctx, 1))
	live := getTestPair(ctx, def.Out(), GetIntLiteral(ctx, 2))
	keeper := newTestInstr(ctx, "keeper", live)

	PruneDeadConstUsers(def.Out())

	// Only the unreferenced expression went away.
	assert.Equal(t, 1, def.Out().Uses().Len())
	assert.Same(t, Value(live), keeper.In().Get())
	// The dead expression's interning slot is free again.
	assert.NotSame(t, dead, getTestPair(ctx, def.Out(), GetIntLiteral(ctx, 1)))
}
