package ir

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/calliope-vn/calliope/internal/ilist"
)

// Op is the interface every operation kind implements. Concrete kinds
// embed Operation and identify themselves with a stable kind string; the
// kind is what the registry, the cloner, and the JSON codec dispatch on.
type Op interface {
	Base() *Operation
	OpKind() string
}

// PostIniter is the optional construction hook. FinishOp invokes it once
// the operation's operands, results, and regions declared by the kind
// are in place. It runs for fresh construction only, never for clones or
// imports, which rebuild state structurally.
type PostIniter interface {
	PostInit()
}

// Attr is a named metadata entry on an operation. Attributes never
// participate in def-use tracking; they hold plain data only.
type Attr interface {
	attr()
	String() string
}

type IntAttr int64

func (IntAttr) attr()            {}
func (a IntAttr) String() string { return strconv.FormatInt(int64(a), 10) }
func (a IntAttr) Value() int64   { return int64(a) }

type BoolAttr bool

func (BoolAttr) attr()            {}
func (a BoolAttr) String() string { return strconv.FormatBool(bool(a)) }
func (a BoolAttr) Value() bool    { return bool(a) }

type StringAttr string

func (StringAttr) attr()            {}
func (a StringAttr) String() string { return strconv.Quote(string(a)) }
func (a StringAttr) Value() string  { return string(a) }

// Operation is the embeddable core of every operation. It owns named
// operand slots, named results, named attributes, and named regions, and
// is itself a node in its parent block's operation list.
type Operation struct {
	ilist.Elem[*Operation]
	self     Op
	ctx      *Context
	name     string
	loc      Location
	operands namedMap[*OpOperand]
	results  namedMap[*OpResult]
	attrs    namedMap[Attr]
	regions  namedMap[*Region]
}

// InitOp wires a concrete kind into the operation machinery. Every kind
// constructor calls it exactly once, before declaring slots.
func InitOp(self Op, ctx *Context, name string, loc Location) {
	b := self.Base()
	b.self = self
	b.ctx = ctx
	b.name = name
	if loc == nil {
		loc = ctx.NullLocation()
	}
	b.loc = loc
	b.Attach(b)
}

// FinishOp completes fresh construction, running the kind's PostInit
// hook if it declares one.
func FinishOp(self Op) {
	if pi, ok := self.(PostIniter); ok {
		pi.PostInit()
	}
}

func (o *Operation) Base() *Operation { return o }

// Self returns the outermost operation kind.
func (o *Operation) Self() Op { return o.self }

func (o *Operation) Context() *Context { return o.ctx }

func (o *Operation) OpName() string { return o.name }

// SetOpName renames the operation. If the operation is a registered
// symbol, the enclosing symbol table re-indexes it under the new name.
func (o *Operation) SetOpName(name string) {
	if name == o.name {
		return
	}
	old := o.name
	o.name = name
	if r := o.symbolRegion(); r != nil {
		r.renameSymbol(o.self.(SymbolOp), old)
	}
}

func (o *Operation) Loc() Location       { return o.loc }
func (o *Operation) SetLoc(loc Location) { o.loc = loc }

// GetOrCreateOperand returns the named operand slot, creating an empty
// one on first request.
func (o *Operation) GetOrCreateOperand(name string) *OpOperand {
	if s, ok := o.operands.Get(name); ok {
		return s
	}
	s := &OpOperand{op: o, name: name}
	s.initUser(s)
	o.operands.Put(name, s)
	return s
}

// Operand returns the named slot, or nil when the operation never
// declared it.
func (o *Operation) Operand(name string) *OpOperand {
	s, _ := o.operands.Get(name)
	return s
}

func (o *Operation) OperandNames() []string { return o.operands.Keys() }

func (o *Operation) ForEachOperand(fn func(*OpOperand)) {
	o.operands.ForEach(func(_ string, s *OpOperand) { fn(s) })
}

// AddResult declares a named result of the given type. Panics on a
// duplicate name.
func (o *Operation) AddResult(name string, ty Type) *OpResult {
	r := &OpResult{op: o, name: name}
	r.initValue(r, ty)
	o.results.Put(name, r)
	return r
}

// Result returns the named result, or nil if undeclared.
func (o *Operation) Result(name string) *OpResult {
	r, _ := o.results.Get(name)
	return r
}

func (o *Operation) ResultNames() []string { return o.results.Keys() }

func (o *Operation) ForEachResult(fn func(*OpResult)) {
	o.results.ForEach(func(_ string, r *OpResult) { fn(r) })
}

// SetAttr stores or replaces a named attribute.
func (o *Operation) SetAttr(name string, a Attr) {
	o.attrs.Delete(name)
	o.attrs.Put(name, a)
}

// Attr returns the named attribute and whether it is present.
func (o *Operation) Attr(name string) (Attr, bool) { return o.attrs.Get(name) }

func (o *Operation) RemoveAttr(name string) { o.attrs.Delete(name) }

func (o *Operation) AttrNames() []string { return o.attrs.Keys() }

// AddRegion declares a named plain region. Panics on a duplicate name.
func (o *Operation) AddRegion(name string) *Region {
	r := newRegion(o, name, false)
	o.regions.Put(name, r)
	return r
}

// AddSymbolTableRegion declares a named region that indexes the symbol
// operations inserted into its blocks.
func (o *Operation) AddSymbolTableRegion(name string) *Region {
	r := newRegion(o, name, true)
	o.regions.Put(name, r)
	return r
}

// Region returns the named region, or nil if undeclared.
func (o *Operation) Region(name string) *Region {
	r, _ := o.regions.Get(name)
	return r
}

func (o *Operation) RegionNames() []string { return o.regions.Keys() }

func (o *Operation) ForEachRegion(fn func(*Region)) {
	o.regions.ForEach(func(_ string, r *Region) { fn(r) })
}

// ParentBlock returns the block currently holding this operation, or nil
// when detached.
func (o *Operation) ParentBlock() *Block {
	if p := o.ListParent(); p != nil {
		return p.(*Block)
	}
	return nil
}

// ParentOp returns the operation owning the region this operation sits
// in, or nil at the top of the tree.
func (o *Operation) ParentOp() *Operation {
	if b := o.ParentBlock(); b != nil {
		return b.ParentRegion().ParentOp()
	}
	return nil
}

// symbolRegion returns the symbol table currently holding this operation
// as a registered symbol, or nil.
func (o *Operation) symbolRegion() *Region {
	if _, ok := o.self.(SymbolOp); !ok {
		return nil
	}
	if b := o.ParentBlock(); b != nil {
		if r := b.ParentRegion(); r.IsSymbolTable() {
			return r
		}
	}
	return nil
}

// RemoveFromParent detaches the operation from its block without
// touching its contents. The operation stays fully usable and can be
// reinserted elsewhere.
func (o *Operation) RemoveFromParent() {
	o.RemoveFromOwner()
}

// EraseFromParent detaches the operation, destroys it, and returns the
// next sibling so pass loops can erase while iterating.
func (o *Operation) EraseFromParent() *Operation {
	next := o.Next()
	o.RemoveFromParent()
	o.Destroy()
	return next
}

// DropAllReferences detaches every operand edge in this operation and,
// recursively, in everything it owns. After the call the subtree
// references no outside value, so destroying it cannot dangle.
func (o *Operation) DropAllReferences() {
	o.ForEachOperand(func(s *OpOperand) { s.DropAllUses() })
	o.ForEachRegion(func(r *Region) {
		r.ForEachBlock(func(b *Block) {
			b.ForEachOp(func(inner Op) { inner.Base().DropAllReferences() })
		})
	})
}

// Destroy tears the operation down bottom-up: inner regions first, then
// this operation's own results and operands. Values defined inside that
// are still referenced from outside get the Undef substitution through
// DestroyValue. The operation must already be detached from any block.
func (o *Operation) Destroy() {
	if o.ParentBlock() != nil {
		panic(fmt.Sprintf("ir: destroying %q while still inside a block", o.name))
	}
	o.DropAllReferences()
	o.ForEachRegion(func(r *Region) { r.destroy() })
	o.ForEachResult(func(r *OpResult) { r.DestroyValue() })
	o.regions.Clear()
	o.results.Clear()
	o.operands.Clear()
	o.attrs.Clear()
}

// MoveBefore detaches the operation and reinserts it before pos, which
// must be attached to a block.
func (o *Operation) MoveBefore(pos *Operation) {
	b := pos.ParentBlock()
	if b == nil {
		panic("ir: move target is not in a block")
	}
	o.RemoveFromParent()
	b.ops.InsertBefore(o, pos)
}

// NodeInserted registers the operation with the enclosing symbol table
// when one exists; plain regions ignore insertions.
func (o *Operation) NodeInserted(parent any) {
	b := parent.(*Block)
	if r := b.ParentRegion(); r != nil && r.IsSymbolTable() {
		r.addSymbol(o.self)
	}
}

// NodeRemoved drops the symbol table registration, if any.
func (o *Operation) NodeRemoved(parent any) {
	b := parent.(*Block)
	if r := b.ParentRegion(); r != nil && r.IsSymbolTable() {
		r.removeSymbol(o.self)
	}
}

// OpOperand is a named operand slot: an ordered list of value references
// under one name, so a single slot can hold a variable-length argument
// pack.
type OpOperand struct {
	UserBase
	op   *Operation
	name string
}

func (s *OpOperand) Op() *Operation { return s.op }
func (s *OpOperand) Name() string   { return s.name }

// Get returns the slot's sole value. It is the common accessor for
// single-value slots; empty slots return nil.
func (s *OpOperand) Get() Value {
	if s.NumOperands() == 0 {
		return nil
	}
	return s.Operand(0)
}

// GetAt returns the i-th value in the slot.
func (s *OpOperand) GetAt(i int) Value { return s.Operand(i) }

// Size returns the number of values in the slot.
func (s *OpOperand) Size() int { return s.NumOperands() }

// Set makes v the slot's sole value, replacing whatever was there.
func (s *OpOperand) Set(v Value) {
	if s.NumOperands() == 0 {
		s.AddOperand(v)
		return
	}
	if s.NumOperands() > 1 {
		s.DropAllUses()
		s.AddOperand(v)
		return
	}
	s.SetOperand(0, v)
}

// Add appends v to the slot.
func (s *OpOperand) Add(v Value) { s.AddOperand(v) }

// OpResult is a named SSA-style result defined by an operation.
type OpResult struct {
	ValueBase
	op   *Operation
	name string
}

func (r *OpResult) Op() *Operation { return r.op }
func (r *OpResult) Name() string   { return r.name }

func (r *OpResult) Describe() string {
	return fmt.Sprintf("%s.%s", r.op.OpName(), r.name)
}

// The kind registry maps kind strings to factories producing a blank,
// uninitialized operation of that kind. Clone and the JSON importer use
// it to rebuild operations without compile-time knowledge of the kind
// set; domain packages register their kinds from init functions.
var opKinds = map[string]func(*Context) Op{}

// RegisterOpKind installs a factory for kind. Panics on a duplicate
// registration, which would indicate two kinds claiming one name.
func RegisterOpKind(kind string, factory func(*Context) Op) {
	if _, ok := opKinds[kind]; ok {
		panic(fmt.Sprintf("ir: op kind %q registered twice", kind))
	}
	opKinds[kind] = factory
}

// NewOpOfKind instantiates a blank operation of the registered kind.
// The result has InitOp applied but no slots; callers rebuild state
// structurally.
func NewOpOfKind(kind string, ctx *Context) (Op, error) {
	factory, ok := opKinds[kind]
	if !ok {
		return nil, fmt.Errorf("ir: unknown op kind %q", kind)
	}
	return factory(ctx), nil
}

// RegisteredOpKinds returns the known kind names, sorted.
func RegisteredOpKinds() []string {
	out := make([]string, 0, len(opKinds))
	for k := range opKinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
