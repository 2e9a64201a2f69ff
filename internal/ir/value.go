package ir

import (
	"fmt"

	"github.com/calliope-vn/calliope/internal/ilist"
)

// Value is anything an operand can reference: operation results, block
// arguments, blocks (as branch targets), literals, constant expressions,
// asset data. A Value owns its use-list; the Use edges in it are owned by
// the consuming operand slots.
type Value interface {
	Type() Type
	Context() *Context

	// Uses returns the live use-list, in insertion order.
	Uses() *ilist.List[*Use]
	UseEmpty() bool

	// ReplaceAllUsesWith splices this value's entire use-list onto v in
	// O(1), independent of use count. Afterwards this value's use-list is
	// empty and every transplanted Use reports v. Panics if the types
	// differ (PlaceholderValue exempts itself).
	ReplaceAllUsesWith(v Value)

	// Describe returns a short diagnostic description, used in Undef
	// substitution messages and dumps.
	Describe() string

	// DestroyValue implements the destruction fallback: constant
	// expression users that become dead are cascaded away, then any
	// remaining uses are rewritten to an UndefLiteral describing this
	// value (or, in strict-destroy mode, the process panics).
	DestroyValue()
}

// ValueBase is the embeddable implementation of Value. Concrete value
// kinds embed it and call initValue exactly once.
type ValueBase struct {
	self Value
	ty   Type
	uses ilist.List[*Use]
}

func (b *ValueBase) initValue(self Value, ty Type) {
	b.self = self
	b.ty = ty
	b.uses.Init(self)
}

// InitValue wires a domain-defined value kind into the def-use machinery.
// self must be the outermost value; ty its uniqued type.
func InitValue(self Value, ty Type) {
	base := self.(interface{ valueBase() *ValueBase }).valueBase()
	base.initValue(self, ty)
}

func (b *ValueBase) valueBase() *ValueBase { return b }

func (b *ValueBase) Type() Type              { return b.ty }
func (b *ValueBase) Context() *Context       { return b.ty.Context() }
func (b *ValueBase) Uses() *ilist.List[*Use] { return &b.uses }
func (b *ValueBase) UseEmpty() bool          { return b.uses.Empty() }

func (b *ValueBase) Describe() string {
	return fmt.Sprintf("%s value", b.ty)
}

func (b *ValueBase) ReplaceAllUsesWith(v Value) {
	if b.ty != v.Type() {
		panic(fmt.Sprintf("ir: replace-all-uses type mismatch: %s vs %s", b.ty, v.Type()))
	}
	b.uses.MergeInto(v.Uses())
}

// constUser is satisfied by ConstExpr (and anything embedding it): a
// uniqued value that is also a consumer and must die with its operands.
type constUser interface {
	Value
	removeDeadConstUsers()
	DestroyConstant()
}

func (b *ValueBase) DestroyValue() {
	// First pass: collect constant-expression users and cascade them away.
	if !b.uses.Empty() {
		var constUsers []constUser
		b.uses.ForEach(func(u *Use) {
			if cu, ok := u.User().(constUser); ok {
				constUsers = append(constUsers, cu)
			}
		})
		for _, cu := range constUsers {
			cu.DestroyConstant()
		}
	}
	// Whatever still uses this value is a live non-constant consumer that
	// is not itself being deleted. Hand it an Undef marker instead of a
	// dangling edge; later passes and printers surface it.
	if !b.uses.Empty() {
		ctx := b.Context()
		if ctx.strictDestroy {
			panic(fmt.Sprintf("ir: destroying value with live uses (strict mode): %s", b.self.Describe()))
		}
		undef := GetUndefLiteral(b.ty, b.self.Describe())
		b.self.ReplaceAllUsesWith(undef)
	}
}

// PlaceholderValue is a temporary stand-in used during import and staged
// rewrites. It never appears in a finished tree: once the real value is
// known, ClaimBy transfers every use onto it regardless of type.
type PlaceholderValue struct {
	ValueBase
}

// NewPlaceholderValue returns a fresh void-typed placeholder.
func NewPlaceholderValue(ctx *Context) *PlaceholderValue {
	p := &PlaceholderValue{}
	p.initValue(p, ctx.VoidType())
	return p
}

// ReplaceAllUsesWith on a placeholder skips the type check: the
// placeholder's void type never matches the claimed value's.
func (p *PlaceholderValue) ReplaceAllUsesWith(v Value) {
	p.uses.MergeInto(v.Uses())
}

func (p *PlaceholderValue) Describe() string { return "placeholder" }

// Use is a single def-use edge. It is owned by exactly one User's operand
// array and is simultaneously a node of exactly one Value's use-list; the
// two memberships are maintained together by SetValue and never duplicated.
type Use struct {
	ilist.Elem[*Use]
	user  User
	index int
}

// Value returns the value this edge currently references, or nil while
// the edge is detached.
func (u *Use) Value() Value {
	if p := u.ListParent(); p != nil {
		return p.(Value)
	}
	return nil
}

// User returns the consumer that owns this edge.
func (u *Use) User() User { return u.user }

// Index returns the edge's position in its owner's operand array.
func (u *Use) Index() int { return u.index }

// SetValue rebinds the edge: it leaves the old value's use-list (if any)
// and joins v's. SetValue(nil) detaches the edge.
func (u *Use) SetValue(v Value) {
	if l := u.Owner(); l != nil {
		l.Remove(u)
	}
	if v != nil {
		v.Uses().PushBack(u)
	}
}

// User is anything with an ordered operand array: operand slots on
// operations, constant expressions, asset users.
type User interface {
	NumOperands() int
	// Operand returns the value at index i, or nil for a detached edge.
	Operand(i int) Value
	// SetOperand rebinds the Use at index i to v. Index len(operands)
	// appends, matching the original builder protocol.
	SetOperand(i int, v Value)
	// AddOperand appends a new Use referencing v.
	AddOperand(v Value)
	// OperandUses returns the operand edges in order. The returned slice
	// is the live array; callers must not mutate it.
	OperandUses() []*Use
	// DropAllUses detaches every edge owned by this user.
	DropAllUses()
}

// UserBase is the embeddable implementation of User.
type UserBase struct {
	self     User
	operands []*Use
}

func (b *UserBase) initUser(self User) { b.self = self }

// InitUser wires a domain-defined consumer into the def-use machinery.
func InitUser(self User) {
	base := self.(interface{ userBase() *UserBase }).userBase()
	base.initUser(self)
}

func (b *UserBase) userBase() *UserBase { return b }

func (b *UserBase) NumOperands() int { return len(b.operands) }

func (b *UserBase) Operand(i int) Value { return b.operands[i].Value() }

func (b *UserBase) SetOperand(i int, v Value) {
	if i == len(b.operands) {
		b.AddOperand(v)
		return
	}
	b.operands[i].SetValue(v)
}

func (b *UserBase) AddOperand(v Value) {
	u := &Use{user: b.self, index: len(b.operands)}
	u.Attach(u)
	b.operands = append(b.operands, u)
	u.SetValue(v)
}

func (b *UserBase) OperandUses() []*Use { return b.operands }

func (b *UserBase) DropAllUses() {
	for _, u := range b.operands {
		u.SetValue(nil)
	}
	b.operands = b.operands[:0]
}

// postCopyValueRemap rebinds every operand whose original target was
// cloned, leaving references to values outside the cloned subtree alone.
func (b *UserBase) postCopyValueRemap(m *ValueMapper) {
	for _, u := range b.operands {
		if mapped := m.Mapped(u.Value()); mapped != nil {
			u.SetValue(mapped)
		}
	}
}
