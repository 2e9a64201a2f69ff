package ir

import (
	"fmt"
	"strconv"

	"github.com/calliope-vn/calliope/internal/ilist"
)

// SymbolOp is implemented by operations that name themselves inside a
// symbol table region. The symbol name is the operation name; renames go
// through SetOpName so the table stays consistent.
type SymbolOp interface {
	Op
	SymbolName() string
}

// Symbol is the embeddable base for symbol operation kinds. Embedding it
// instead of Operation is what marks a kind as registrable.
type Symbol struct {
	Operation
}

func (s *Symbol) SymbolName() string { return s.OpName() }

// Region is a named body of an operation: an ordered list of blocks. A
// region created with AddSymbolTableRegion additionally keeps a name
// index over the symbol operations inserted anywhere in its blocks,
// maintained automatically by the insertion and removal hooks.
type Region struct {
	op     *Operation
	name   string
	blocks ilist.List[*Block]
	symtab map[string]SymbolOp
	anonN  int
}

func newRegion(op *Operation, name string, symbolTable bool) *Region {
	r := &Region{op: op, name: name}
	r.blocks.Init(r)
	if symbolTable {
		r.symtab = make(map[string]SymbolOp)
	}
	return r
}

func (r *Region) ParentOp() *Operation { return r.op }
func (r *Region) Name() string         { return r.name }

func (r *Region) IsSymbolTable() bool { return r.symtab != nil }

func (r *Region) Empty() bool    { return r.blocks.Empty() }
func (r *Region) NumBlocks() int { return r.blocks.Len() }

// EntryBlock returns the first block, or nil for an empty region.
func (r *Region) EntryBlock() *Block { return r.blocks.Front() }

func (r *Region) ForEachBlock(fn func(*Block)) { r.blocks.ForEach(fn) }

// AddBlock appends a new block with the given label. Labels are for
// dumps and navigation; the region does not require them unique.
func (r *Region) AddBlock(name string) *Block {
	b := &Block{name: name}
	b.initValue(b, r.op.ctx.BlockRefType())
	b.Attach(b)
	b.ops.Init(b)
	r.blocks.PushBack(b)
	return b
}

// Blocks returns the underlying block list for order-sensitive surgery.
func (r *Region) Blocks() *ilist.List[*Block] { return &r.blocks }

// Lookup returns the symbol registered under name, or nil. Panics if the
// region is not a symbol table.
func (r *Region) Lookup(name string) SymbolOp {
	r.requireSymbolTable()
	return r.symtab[name]
}

// NumSymbols returns the number of registered symbols.
func (r *Region) NumSymbols() int {
	r.requireSymbolTable()
	return len(r.symtab)
}

// ForEachSymbol visits the registered symbols in block insertion order,
// which the index itself does not record.
func (r *Region) ForEachSymbol(fn func(SymbolOp)) {
	r.requireSymbolTable()
	r.ForEachBlock(func(b *Block) {
		b.ForEachOp(func(op Op) { fn(op.(SymbolOp)) })
	})
}

func (r *Region) requireSymbolTable() {
	if r.symtab == nil {
		panic(fmt.Sprintf("ir: region %q is not a symbol table", r.name))
	}
}

func (r *Region) addSymbol(op Op) {
	s, ok := op.(SymbolOp)
	if !ok {
		panic(fmt.Sprintf("ir: inserting non-symbol op %q into symbol table %q", op.Base().OpName(), r.name))
	}
	name := s.SymbolName()
	if name == "" {
		// Anonymous symbols get a numeric name so the index stays total.
		for {
			name = strconv.Itoa(r.anonN)
			r.anonN++
			if _, taken := r.symtab[name]; !taken {
				break
			}
		}
		s.Base().name = name
	}
	if prev, taken := r.symtab[name]; taken && prev != s {
		panic(fmt.Sprintf("ir: duplicate symbol %q in table %q", name, r.name))
	}
	r.symtab[name] = s
}

func (r *Region) removeSymbol(op Op) {
	s := op.(SymbolOp)
	if r.symtab[s.SymbolName()] == s {
		delete(r.symtab, s.SymbolName())
	}
}

func (r *Region) renameSymbol(s SymbolOp, oldName string) {
	if r.symtab[oldName] == s {
		delete(r.symtab, oldName)
	}
	newName := s.SymbolName()
	if prev, taken := r.symtab[newName]; taken && prev != s {
		panic(fmt.Sprintf("ir: rename collides with symbol %q in table %q", newName, r.name))
	}
	r.symtab[newName] = s
}

// destroy tears down every block: inner operations first, then block
// arguments, then the block value itself. Outside references to any of
// them get the Undef substitution.
func (r *Region) destroy() {
	for !r.blocks.Empty() {
		b := r.blocks.Front()
		for !b.ops.Empty() {
			op := b.ops.Front()
			op.RemoveFromOwner()
			op.Destroy()
		}
		r.blocks.Remove(b)
		b.args.ForEach(func(_ string, a *BlockArgument) { a.DestroyValue() })
		b.args.Clear()
		b.DestroyValue()
	}
}

// Block is an ordered sequence of operations inside a region. A block is
// itself a value of block reference type, so branch-like operations can
// take it as an operand and enjoy the same use tracking and Undef
// substitution as any other value.
type Block struct {
	ValueBase
	ilist.Elem[*Block]
	name string
	args namedMap[*BlockArgument]
	ops  ilist.List[*Operation]
}

func (b *Block) Name() string { return b.name }

// ParentRegion returns the region holding this block, or nil when
// detached.
func (b *Block) ParentRegion() *Region {
	if p := b.ListParent(); p != nil {
		return p.(*Region)
	}
	return nil
}

func (b *Block) Describe() string { return "^" + b.name }

// AddArgument declares a named block argument of the given type. Panics
// on a duplicate name.
func (b *Block) AddArgument(name string, ty Type) *BlockArgument {
	a := &BlockArgument{block: b, name: name}
	a.initValue(a, ty)
	b.args.Put(name, a)
	return a
}

// Argument returns the named argument, or nil if undeclared.
func (b *Block) Argument(name string) *BlockArgument {
	a, _ := b.args.Get(name)
	return a
}

func (b *Block) ArgumentNames() []string { return b.args.Keys() }

func (b *Block) Empty() bool { return b.ops.Empty() }
func (b *Block) NumOps() int { return b.ops.Len() }

// FrontOp returns the first operation's kind view, or nil when empty.
func (b *Block) FrontOp() Op {
	if op := b.ops.Front(); op != nil {
		return op.self
	}
	return nil
}

// BackOp returns the last operation's kind view, or nil when empty.
func (b *Block) BackOp() Op {
	if op := b.ops.Back(); op != nil {
		return op.self
	}
	return nil
}

// PushBackOp appends op to the block, firing the symbol hooks when the
// enclosing region is a symbol table.
func (b *Block) PushBackOp(op Op) { b.ops.PushBack(op.Base()) }

// PushFrontOp prepends op to the block.
func (b *Block) PushFrontOp(op Op) { b.ops.PushFront(op.Base()) }

// InsertOpBefore inserts op before pos, which must be in this block.
func (b *Block) InsertOpBefore(op Op, pos *Operation) {
	if pos.ParentBlock() != b {
		panic("ir: insertion position is in a different block")
	}
	b.ops.InsertBefore(op.Base(), pos)
}

// ForEachOp visits the operations in order.
func (b *Block) ForEachOp(fn func(Op)) {
	b.ops.ForEach(func(op *Operation) { fn(op.self) })
}

// Ops returns the underlying operation list for order-sensitive surgery.
func (b *Block) Ops() *ilist.List[*Operation] { return &b.ops }

// BlockArgument is a value declared by a block, bound externally by
// whatever transfers control to it.
type BlockArgument struct {
	ValueBase
	block *Block
	name  string
}

func (a *BlockArgument) Block() *Block { return a.block }
func (a *BlockArgument) Name() string  { return a.name }

func (a *BlockArgument) Describe() string {
	return fmt.Sprintf("^%s(%s)", a.block.name, a.name)
}
