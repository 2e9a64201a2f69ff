package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calliope-vn/calliope/internal/ir"
	"github.com/calliope-vn/calliope/internal/vnmodel"
)

// branchFn builds a body with one choice, a jump, a fall-through and an
// unreachable block:
//
//	entry: say; choice "Stay"->stay "Leave"->leave
//	stay:  jump end
//	leave: say            (falls through to end)
//	end:   return
//	lost:  return         (nothing targets it)
func branchFn(t *testing.T, ctx *ir.Context) *vnmodel.FunctionOp {
	t.Helper()
	fn := vnmodel.NewFunction(ctx, "main", nil)
	stay := fn.AddBlock("stay")
	leave := fn.AddBlock("leave")
	end := fn.AddBlock("end")
	fn.AddBlock("lost")

	entry := fn.Entry()
	entry.PushBackOp(vnmodel.NewSay(ctx, nil, vnmodel.PlainText(ctx, "..."), nil))
	choice := vnmodel.NewChoice(ctx, nil)
	choice.AddOption(vnmodel.PlainText(ctx, "Stay"), stay)
	choice.AddOption(vnmodel.PlainText(ctx, "Leave"), leave)
	entry.PushBackOp(choice)

	stay.PushBackOp(vnmodel.NewJump(ctx, end, nil))
	leave.PushBackOp(vnmodel.NewSay(ctx, nil, vnmodel.PlainText(ctx, "bye"), nil))
	end.PushBackOp(vnmodel.NewReturn(ctx, nil))
	return fn
}

func TestBuildCFGEdges(t *testing.T) {
	ctx := ir.NewContext()
	fn := branchFn(t, ctx)
	g := BuildCFG(fn)

	require.Len(t, g.Nodes(), 5)
	entry := g.Entry()
	require.NotNil(t, entry)
	assert.Equal(t, "entry", entry.Block().Name())

	require.Len(t, entry.Succs(), 2)
	assert.Equal(t, EdgeChoice, entry.Succs()[0].Kind)
	assert.Equal(t, "Stay", entry.Succs()[0].Label)
	assert.Equal(t, "stay", entry.Succs()[0].To.Block().Name())
	assert.Equal(t, "Leave", entry.Succs()[1].Label)
	assert.Equal(t, "leave", entry.Succs()[1].To.Block().Name())

	stay := g.Nodes()[1]
	require.Len(t, stay.Succs(), 1)
	assert.Equal(t, EdgeJump, stay.Succs()[0].Kind)
	assert.Equal(t, "end", stay.Succs()[0].To.Block().Name())

	leave := g.Nodes()[2]
	require.Len(t, leave.Succs(), 1)
	assert.Equal(t, EdgeFall, leave.Succs()[0].Kind)
	assert.Equal(t, "end", leave.Succs()[0].To.Block().Name())

	end := g.Nodes()[3]
	assert.Empty(t, end.Succs())
	assert.Len(t, end.Preds(), 2)
}

func TestUnreachableBlocks(t *testing.T) {
	ctx := ir.NewContext()
	fn := branchFn(t, ctx)
	g := BuildCFG(fn)

	lost := g.Unreachable()
	require.Len(t, lost, 1)
	assert.Equal(t, "lost", lost[0].Name())
}

func TestNodeForAndEntryOfEmptyBody(t *testing.T) {
	ctx := ir.NewContext()
	fn := branchFn(t, ctx)
	g := BuildCFG(fn)

	assert.Same(t, g.Entry(), g.NodeFor(fn.Entry()))
	assert.Nil(t, g.NodeFor(&ir.Block{}))

	other := vnmodel.NewFunction(ctx, "other", nil)
	og := BuildCFG(other)
	require.Len(t, og.Nodes(), 1)
	assert.Empty(t, og.Entry().Succs())
	assert.Empty(t, og.Unreachable(), "an empty entry block still reaches itself")
}

func TestDegradedJumpProducesNoEdge(t *testing.T) {
	ctx := ir.NewContext()
	fn := vnmodel.NewFunction(ctx, "main", nil)
	gone := fn.AddBlock("gone")
	end := fn.AddBlock("end")
	fn.Entry().PushBackOp(vnmodel.NewJump(ctx, gone, nil))
	end.PushBackOp(vnmodel.NewReturn(ctx, nil))

	gone.DestroyValue()
	gone.RemoveFromOwner()

	g := BuildCFG(fn)
	entry := g.Entry()
	assert.Empty(t, entry.Succs(), "jump to a destroyed block is not flow")
	assert.Equal(t, []*ir.Block{end}, g.Unreachable())
}
