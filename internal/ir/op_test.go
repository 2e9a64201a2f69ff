package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryBlock(m *testModule) *Block {
	return m.Region("body").EntryBlock()
}

func TestOperandSlots(t *testing.T) {
	ctx := NewContext()
	op := newTestInstr(ctx, "op", nil)

	slot := op.GetOrCreateOperand("extra")
	assert.Same(t, slot, op.GetOrCreateOperand("extra"))
	assert.Nil(t, op.Operand("missing"))

	slot.Add(GetIntLiteral(ctx, 1))
	slot.Add(GetIntLiteral(ctx, 2))
	assert.Equal(t, 2, slot.Size())
	assert.Equal(t, int64(2), slot.GetAt(1).(*IntLiteral).Value())

	slot.Set(GetIntLiteral(ctx, 9))
	assert.Equal(t, 1, slot.Size())
	assert.Equal(t, int64(9), slot.Get().(*IntLiteral).Value())

	assert.Equal(t, []string{"in", "extra"}, op.OperandNames())
}

func TestAttrs(t *testing.T) {
	ctx := NewContext()
	op := newTestInstr(ctx, "op", nil)

	op.SetAttr("count", IntAttr(3))
	op.SetAttr("hidden", BoolAttr(true))
	op.SetAttr("label", StringAttr("intro"))

	a, ok := op.Attr("count")
	require.True(t, ok)
	assert.Equal(t, int64(3), a.(IntAttr).Value())

	op.SetAttr("count", IntAttr(4))
	a, _ = op.Attr("count")
	assert.Equal(t, int64(4), a.(IntAttr).Value())

	op.RemoveAttr("hidden")
	_, ok = op.Attr("hidden")
	assert.False(t, ok)
}

func TestDuplicateResultPanics(t *testing.T) {
	ctx := NewContext()
	op := newTestInstr(ctx, "op", nil)
	assert.Panics(t, func() { op.AddResult("out", ctx.IntType()) })
}

func TestTreeNavigation(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	blk := entryBlock(m)

	op := newTestInstr(ctx, "op", nil)
	assert.Nil(t, op.ParentBlock())

	blk.PushBackOp(op)
	assert.Same(t, blk, op.ParentBlock())
	assert.Same(t, m.Base(), op.ParentOp())
	assert.Nil(t, m.ParentOp())
}

func TestMoveBefore(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	blk := entryBlock(m)

	a := newTestInstr(ctx, "a", nil)
	b := newTestInstr(ctx, "b", nil)
	c := newTestInstr(ctx, "c", nil)
	blk.PushBackOp(a)
	blk.PushBackOp(b)
	blk.PushBackOp(c)

	c.MoveBefore(a.Base())

	var names []string
	blk.ForEachOp(func(op Op) { names = append(names, op.Base().OpName()) })
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestEraseFromParent(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	blk := entryBlock(m)

	producer := newTestInstr(ctx, "producer", nil)
	consumer := newTestInstr(ctx, "consumer", producer.Out())
	blk.PushBackOp(producer)
	blk.PushBackOp(consumer)

	producer.EraseFromParent()

	assert.Equal(t, 1, blk.NumOps())
	_, isUndef := consumer.In().Get().(*UndefLiteral)
	assert.True(t, isUndef)
}

func TestDestroyCascadesThroughRegions(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	blk := entryBlock(m)

	inner := newTestInstr(ctx, "inner", nil)
	blk.PushBackOp(inner)

	// An outside consumer of a value defined inside the module.
	outside := newTestInstr(ctx, "outside", inner.Out())

	m.Destroy()

	_, isUndef := outside.In().Get().(*UndefLiteral)
	assert.True(t, isUndef)
	assert.True(t, m.Region("body") == nil)
}

func TestDestroyInsideBlockPanics(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	op := newTestInstr(ctx, "op", nil)
	entryBlock(m).PushBackOp(op)
	assert.Panics(t, func() { op.Destroy() })
}

func TestOpKindRegistry(t *testing.T) {
	ctx := NewContext()

	op, err := NewOpOfKind("test.instr", ctx)
	require.NoError(t, err)
	assert.Equal(t, "test.instr", op.OpKind())

	_, err = NewOpOfKind("test.nonesuch", ctx)
	assert.Error(t, err)

	assert.Contains(t, RegisteredOpKinds(), "test.module")
	assert.Panics(t, func() {
		RegisterOpKind("test.instr", func(ctx *Context) Op { return nil })
	})
}

func TestBlockArgumentsAndBlockRefs(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	body := m.Region("body")
	entry := body.EntryBlock()
	next := body.AddBlock("next")

	arg := next.AddArgument("x", ctx.IntType())
	assert.Same(t, arg, next.Argument("x"))
	assert.Same(t, next, arg.Block())

	// Blocks are first-class values of block reference type.
	branch := newTestInstr(ctx, "branch", nil)
	branch.GetOrCreateOperand("target").Set(next)
	entry.PushBackOp(branch)
	assert.Equal(t, 1, next.Uses().Len())
	assert.Same(t, ctx.BlockRefType(), next.Type())
}
