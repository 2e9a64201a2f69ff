package vnmodel

import (
	"github.com/calliope-vn/calliope/internal/ir"
)

// ErrorOp records a problem found while building or transforming the
// model. Domain errors become nodes in the tree instead of aborting the
// pipeline, so a partially broken story still dumps, serializes, and
// reports every problem at once.
type ErrorOp struct {
	ir.Operation
}

func (*ErrorOp) OpKind() string { return KindError }

func NewError(ctx *ir.Context, code, message string, loc ir.Location) *ErrorOp {
	e := &ErrorOp{}
	ir.InitOp(e, ctx, "", loc)
	e.SetAttr("code", ir.StringAttr(code))
	e.SetAttr("message", ir.StringAttr(message))
	ir.FinishOp(e)
	return e
}

func (e *ErrorOp) Code() string {
	a, _ := e.Attr("code")
	return a.(ir.StringAttr).Value()
}

func (e *ErrorOp) Message() string {
	a, _ := e.Attr("message")
	return a.(ir.StringAttr).Value()
}

// CommentOp carries authoring commentary through transforms untouched.
type CommentOp struct {
	ir.Operation
}

func (*CommentOp) OpKind() string { return KindComment }

func NewComment(ctx *ir.Context, text string, loc ir.Location) *CommentOp {
	c := &CommentOp{}
	ir.InitOp(c, ctx, "", loc)
	c.SetAttr("text", ir.StringAttr(text))
	ir.FinishOp(c)
	return c
}

func (c *CommentOp) Text() string {
	a, _ := c.Attr("text")
	return a.(ir.StringAttr).Value()
}

// CollectErrors walks the tree rooted at op and returns every ErrorOp in
// document order.
func CollectErrors(op ir.Op) []*ErrorOp {
	var out []*ErrorOp
	var walk func(ir.Op)
	walk = func(o ir.Op) {
		if e, ok := o.(*ErrorOp); ok {
			out = append(out, e)
		}
		b := o.Base()
		b.ForEachRegion(func(r *ir.Region) {
			r.ForEachBlock(func(blk *ir.Block) {
				blk.ForEachOp(walk)
			})
		})
	}
	walk(op)
	return out
}
