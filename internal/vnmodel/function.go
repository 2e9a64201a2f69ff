package vnmodel

import (
	"github.com/calliope-vn/calliope/internal/ir"
)

// FunctionOp is a callable story unit: a symbol whose body region is a
// control flow graph of instruction blocks. Control enters at the entry
// block and leaves through ReturnInstr.
type FunctionOp struct {
	ir.Symbol
}

func (*FunctionOp) OpKind() string { return KindFunction }

func NewFunction(ctx *ir.Context, name string, loc ir.Location) *FunctionOp {
	f := &FunctionOp{}
	ir.InitOp(f, ctx, name, loc)
	f.AddRegion("body").AddBlock("entry")
	f.AddResult("ref", ctx.SymbolRefType(RefFunction))
	ir.FinishOp(f)
	return f
}

// Ref returns the function's reference value, the operand of CallInstr.
func (f *FunctionOp) Ref() *ir.OpResult { return f.Result("ref") }

func (f *FunctionOp) Body() *ir.Region { return f.Region("body") }

// Entry returns the entry block.
func (f *FunctionOp) Entry() *ir.Block { return f.Body().EntryBlock() }

// AddBlock appends a labeled block to the body.
func (f *FunctionOp) AddBlock(label string) *ir.Block {
	return f.Body().AddBlock(label)
}
