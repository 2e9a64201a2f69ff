package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbolTable(t *testing.T, m *testModule) (*Region, *Block) {
	t.Helper()
	r := m.Region("symbols")
	require.True(t, r.IsSymbolTable())
	if r.Empty() {
		return r, r.AddBlock("")
	}
	return r, r.EntryBlock()
}

func symbolNames(r *Region) []string {
	var names []string
	r.ForEachSymbol(func(s SymbolOp) { names = append(names, s.SymbolName()) })
	return names
}

func TestSymbolAutoRegistration(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	table, blk := symbolTable(t, m)

	a := newTestSymbol(ctx, "alice")
	blk.PushBackOp(a)

	require.Equal(t, 1, table.NumSymbols())
	assert.Same(t, SymbolOp(a), table.Lookup("alice"))

	a.RemoveFromParent()
	assert.Equal(t, 0, table.NumSymbols())
	assert.Nil(t, table.Lookup("alice"))
}

func TestSymbolRenameKeepsIterationOrder(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	table, blk := symbolTable(t, m)

	a := newTestSymbol(ctx, "a")
	b := newTestSymbol(ctx, "b")
	blk.PushBackOp(a)
	blk.PushBackOp(b)

	a.SetOpName("c")

	assert.Nil(t, table.Lookup("a"))
	assert.Same(t, SymbolOp(a), table.Lookup("c"))
	// Renaming re-indexes without moving the op, so order is untouched.
	assert.Equal(t, []string{"c", "b"}, symbolNames(table))
}

func TestDuplicateSymbolPanics(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	_, blk := symbolTable(t, m)

	blk.PushBackOp(newTestSymbol(ctx, "dup"))
	assert.Panics(t, func() { blk.PushBackOp(newTestSymbol(ctx, "dup")) })
}

func TestRenameOntoExistingSymbolPanics(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	_, blk := symbolTable(t, m)

	a := newTestSymbol(ctx, "a")
	blk.PushBackOp(a)
	blk.PushBackOp(newTestSymbol(ctx, "b"))
	assert.Panics(t, func() { a.SetOpName("b") })
}

func TestAnonymousSymbolsGetNumericNames(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	table, blk := symbolTable(t, m)

	s0 := newTestSymbol(ctx, "")
	s1 := newTestSymbol(ctx, "")
	blk.PushBackOp(s0)
	blk.PushBackOp(s1)

	assert.Equal(t, "0", s0.SymbolName())
	assert.Equal(t, "1", s1.SymbolName())
	assert.Same(t, SymbolOp(s1), table.Lookup("1"))
}

func TestNonSymbolInSymbolTablePanics(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	_, blk := symbolTable(t, m)
	assert.Panics(t, func() { blk.PushBackOp(newTestInstr(ctx, "op", nil)) })
}

func TestPlainRegionIgnoresSymbols(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	body := m.Region("body")
	require.False(t, body.IsSymbolTable())

	// Symbols in a plain region are just ops; nothing indexes them.
	body.EntryBlock().PushBackOp(newTestSymbol(ctx, "loose"))
	assert.Panics(t, func() { body.Lookup("loose") })
}

func TestSymbolMoveBetweenTables(t *testing.T) {
	ctx := NewContext()
	m1 := newTestModule(ctx, "m1")
	m2 := newTestModule(ctx, "m2")
	t1, b1 := symbolTable(t, m1)
	t2, b2 := symbolTable(t, m2)

	s := newTestSymbol(ctx, "wanderer")
	b1.PushBackOp(s)
	require.Equal(t, 1, t1.NumSymbols())

	s.RemoveFromParent()
	b2.PushBackOp(s)

	assert.Equal(t, 0, t1.NumSymbols())
	assert.Same(t, SymbolOp(s), t2.Lookup("wanderer"))
}
