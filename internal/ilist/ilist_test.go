package ilist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node is a minimal intrusive element for exercising the list.
type node struct {
	Elem[*node]
	id int
}

func newNode(id int) *node {
	n := &node{id: id}
	n.Attach(n)
	return n
}

func ids(l *List[*node]) []int {
	var out []int
	l.ForEach(func(n *node) { out = append(out, n.id) })
	return out
}

func TestPushBackAndFrontOrder(t *testing.T) {
	l := New[*node]("owner")

	l.PushBack(newNode(2))
	l.PushBack(newNode(3))
	l.PushFront(newNode(1))

	assert.Equal(t, []int{1, 2, 3}, ids(l))
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 1, l.Front().id)
	assert.Equal(t, 3, l.Back().id)
}

func TestInsertBefore(t *testing.T) {
	l := New[*node](nil)
	a, c := newNode(1), newNode(3)
	l.PushBack(a)
	l.PushBack(c)

	l.InsertBefore(newNode(2), c)

	assert.Equal(t, []int{1, 2, 3}, ids(l))
}

func TestRemoveRelinksNeighbors(t *testing.T) {
	l := New[*node](nil)
	a, b, c := newNode(1), newNode(2), newNode(3)
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	l.Remove(b)

	assert.Equal(t, []int{1, 3}, ids(l))
	assert.Nil(t, b.Owner())
	assert.Equal(t, c, a.Next())
	assert.Equal(t, a, c.Prev())
}

func TestParentBackReference(t *testing.T) {
	parent := "the-parent"
	l := New[*node](parent)
	n := newNode(1)

	require.Nil(t, n.ListParent())
	l.PushBack(n)
	assert.Equal(t, parent, n.ListParent())
	assert.Same(t, l, n.Owner())

	l.Remove(n)
	assert.Nil(t, n.ListParent())
}

func TestDoubleInsertPanics(t *testing.T) {
	l1 := New[*node](nil)
	l2 := New[*node](nil)
	n := newNode(1)
	l1.PushBack(n)

	assert.Panics(t, func() { l2.PushBack(n) })
	assert.Panics(t, func() { l1.PushBack(n) })
}

func TestRemoveUnownedPanics(t *testing.T) {
	l := New[*node](nil)
	assert.Panics(t, func() { l.Remove(newNode(1)) })
}

func TestMergeIntoMovesWholeChain(t *testing.T) {
	src := New[*node]("src")
	dst := New[*node]("dst")
	for i := 1; i <= 3; i++ {
		src.PushBack(newNode(i))
	}
	for i := 10; i <= 11; i++ {
		dst.PushBack(newNode(i))
	}

	src.MergeInto(dst)

	assert.Equal(t, []int{10, 11, 1, 2, 3}, ids(dst))
	assert.True(t, src.Empty())
	assert.Equal(t, 5, dst.Len())

	// Moved elements report the destination as owner without having been
	// visited individually.
	assert.Equal(t, "dst", dst.Back().ListParent())
}

func TestMergeIntoEmptySource(t *testing.T) {
	src := New[*node](nil)
	dst := New[*node](nil)
	dst.PushBack(newNode(1))

	src.MergeInto(dst)

	assert.Equal(t, []int{1}, ids(dst))
}

func TestSourceReusableAfterMerge(t *testing.T) {
	src := New[*node](nil)
	dst := New[*node](nil)
	src.PushBack(newNode(1))
	src.MergeInto(dst)

	// The source list must start a fresh membership generation.
	n := newNode(2)
	src.PushBack(n)
	assert.Equal(t, []int{2}, ids(src))
	assert.Same(t, src, n.Owner())
	assert.Equal(t, []int{1}, ids(dst))
}

func TestChainedMergeForwardsOwnership(t *testing.T) {
	a := New[*node]("a")
	b := New[*node]("b")
	c := New[*node]("c")
	n := newNode(1)
	a.PushBack(n)

	a.MergeInto(b)
	b.MergeInto(c)

	// Ownership must follow both hops, not stop at the retired middle
	// list.
	assert.Same(t, c, n.Owner())
	assert.Equal(t, "c", n.ListParent())
	assert.Equal(t, 1, c.Len())
	assert.True(t, b.Empty())

	// Removal must book against the final owner.
	n.RemoveFromOwner()
	assert.True(t, c.Empty())
	assert.Nil(t, n.Owner())
}

func TestChainedMergeMixedGenerations(t *testing.T) {
	a := New[*node](nil)
	b := New[*node](nil)
	c := New[*node](nil)

	early := newNode(1)
	a.PushBack(early)
	a.MergeInto(b)

	// late joins b directly, so the two elements carry different boxes.
	late := newNode(2)
	b.PushBack(late)
	b.MergeInto(c)

	assert.Equal(t, []int{1, 2}, ids(c))
	assert.Same(t, c, early.Owner())
	assert.Same(t, c, late.Owner())

	early.RemoveFromOwner()
	late.RemoveFromOwner()
	assert.True(t, c.Empty())
}

// hookNode records hook invocations.
type hookNode struct {
	Elem[*hookNode]
	inserted []any
	removed  []any
}

func (h *hookNode) NodeInserted(parent any) { h.inserted = append(h.inserted, parent) }
func (h *hookNode) NodeRemoved(parent any)  { h.removed = append(h.removed, parent) }

func TestHooksFire(t *testing.T) {
	l := New[*hookNode]("p")
	h := &hookNode{}
	h.Attach(h)

	l.PushBack(h)
	require.Equal(t, []any{"p"}, h.inserted)

	l.Remove(h)
	require.Equal(t, []any{"p"}, h.removed)
}

func TestClearRunsRemovalHooks(t *testing.T) {
	l := New[*hookNode]("p")
	a, b := &hookNode{}, &hookNode{}
	a.Attach(a)
	b.Attach(b)
	l.PushBack(a)
	l.PushBack(b)

	l.Clear()

	assert.True(t, l.Empty())
	assert.Len(t, a.removed, 1)
	assert.Len(t, b.removed, 1)
	assert.Nil(t, a.Owner())
}

func TestIndexOf(t *testing.T) {
	l := New[*node](nil)
	a, b := newNode(1), newNode(2)
	l.PushBack(a)
	l.PushBack(b)

	assert.Equal(t, 0, l.IndexOf(a))
	assert.Equal(t, 1, l.IndexOf(b))
	assert.Equal(t, -1, l.IndexOf(newNode(3)))
}
