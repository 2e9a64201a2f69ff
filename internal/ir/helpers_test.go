package ir

// Test op kinds: a module with a symbol table, a plain instruction with
// one input slot and one result, and a named symbol.

type testModule struct {
	Operation
}

func (*testModule) OpKind() string { return "test.module" }

func newTestModule(ctx *Context, name string) *testModule {
	m := &testModule{}
	InitOp(m, ctx, name, nil)
	m.AddSymbolTableRegion("symbols")
	m.AddRegion("body").AddBlock("entry")
	FinishOp(m)
	return m
}

type testInstr struct {
	Operation
}

func (*testInstr) OpKind() string { return "test.instr" }

func newTestInstr(ctx *Context, name string, in Value) *testInstr {
	op := &testInstr{}
	InitOp(op, ctx, name, nil)
	slot := op.GetOrCreateOperand("in")
	if in != nil {
		slot.Set(in)
	}
	op.AddResult("out", ctx.IntType())
	FinishOp(op)
	return op
}

func (op *testInstr) In() *OpOperand { return op.Operand("in") }
func (op *testInstr) Out() *OpResult { return op.Result("out") }

type testSymbol struct {
	Symbol
}

func (*testSymbol) OpKind() string { return "test.symbol" }

func newTestSymbol(ctx *Context, name string) *testSymbol {
	s := &testSymbol{}
	InitOp(s, ctx, name, nil)
	FinishOp(s)
	return s
}

func init() {
	RegisterOpKind("test.module", func(ctx *Context) Op {
		m := &testModule{}
		InitOp(m, ctx, "", nil)
		return m
	})
	RegisterOpKind("test.instr", func(ctx *Context) Op {
		op := &testInstr{}
		InitOp(op, ctx, "", nil)
		return op
	})
	RegisterOpKind("test.symbol", func(ctx *Context) Op {
		s := &testSymbol{}
		InitOp(s, ctx, "", nil)
		return s
	})
}
