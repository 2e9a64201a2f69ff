package ir

import (
	"fmt"
	"strings"
)

// ConstExpr is a uniqued value computed from other values: like a
// literal it is interned in the Context and identity equals content, but
// unlike a literal it holds operand edges and therefore participates in
// use tracking from both sides. When an operand is destroyed the
// expression cannot outlive it and is destroyed in cascade.
type ConstExpr interface {
	Value
	User
	// ExprKind returns the kind string the expression was interned under.
	ExprKind() string
	constExpr() *ConstExprBase
}

// ConstExprBase is the embeddable implementation of ConstExpr. Domain
// kinds embed it and construct instances exclusively through
// InternConstExpr.
type ConstExprBase struct {
	ValueBase
	UserBase
	kind      string
	key       string
	destroyed bool
}

func (b *ConstExprBase) constExpr() *ConstExprBase { return b }

// ExprKind returns the kind string the expression was interned under.
func (b *ConstExprBase) ExprKind() string { return b.kind }

// InternConstExpr returns the canonical expression for (kind, operands),
// invoking ctor to allocate a blank instance on first request. Operand
// identity is the uniquing key, which is sound because expressions only
// reference uniqued or identity-stable values.
func InternConstExpr(ctx *Context, kind string, ty Type, operands []Value, ctor func() ConstExpr) ConstExpr {
	var kb strings.Builder
	kb.WriteString("cexpr|")
	kb.WriteString(kind)
	for _, v := range operands {
		kb.WriteByte('|')
		kb.WriteString(identityKey(v))
	}
	key := kb.String()
	return ctx.getConstExpr(key, func() Value {
		e := ctor()
		b := e.constExpr()
		b.kind = kind
		b.key = key
		b.initValue(e, ty)
		b.initUser(e)
		for _, v := range operands {
			b.UserBase.AddOperand(v)
		}
		return e
	}).(ConstExpr)
}

// DestroyValue on a constant expression is destruction of the constant.
func (b *ConstExprBase) DestroyValue() { b.DestroyConstant() }

// DestroyConstant removes the expression from the uniquing table and
// detaches its operand edges. Constant-expression users die first; any
// remaining use gets the Undef substitution, or a panic in strict mode.
func (b *ConstExprBase) DestroyConstant() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	var users []constUser
	b.Uses().ForEach(func(u *Use) {
		if cu, ok := u.User().(constUser); ok {
			users = append(users, cu)
		}
	})
	for _, cu := range users {
		cu.DestroyConstant()
	}
	if !b.UseEmpty() {
		ctx := b.Context()
		if ctx.strictDestroy {
			panic(fmt.Sprintf("ir: destroying constant with live uses (strict mode): %s", b.ValueBase.self.Describe()))
		}
		undef := GetUndefLiteral(b.Type(), b.ValueBase.self.Describe())
		b.ValueBase.self.ReplaceAllUsesWith(undef)
	}
	b.DropAllUses()
	b.Context().eraseConstExpr(b.key)
}

func (b *ConstExprBase) removeDeadConstUsers() {
	PruneDeadConstUsers(b.ValueBase.self)
}

// PruneDeadConstUsers destroys every constant-expression user of v that
// has itself become unused, transitively. Non-constant users are left
// alone.
func PruneDeadConstUsers(v Value) {
	for {
		// Snapshot first; destruction splices the use-list under us.
		seen := map[constUser]bool{}
		var users []constUser
		v.Uses().ForEach(func(u *Use) {
			if cu, ok := u.User().(constUser); ok && !seen[cu] {
				seen[cu] = true
				users = append(users, cu)
			}
		})
		changed := false
		for _, cu := range users {
			PruneDeadConstUsers(cu)
			if cu.UseEmpty() {
				cu.DestroyConstant()
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}
