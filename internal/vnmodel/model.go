package vnmodel

import (
	"github.com/calliope-vn/calliope/internal/ir"
)

// Op kind strings. The registry and the serialized form key on these;
// changing one is a format break.
const (
	KindModel     = "vn.model"
	KindCharacter = "vn.character"
	KindScene     = "vn.scene"
	KindAsset     = "vn.asset"
	KindFunction  = "vn.function"
	KindSay       = "vn.say"
	KindShow      = "vn.show"
	KindCall      = "vn.call"
	KindJump      = "vn.jump"
	KindChoice    = "vn.choice"
	KindReturn    = "vn.return"
	KindError     = "vn.error"
	KindComment   = "vn.comment"
)

// Symbol kinds parameterize reference types; see ir.SymbolRefType.
const (
	RefCharacter = "character"
	RefScene     = "scene"
	RefAsset     = "asset"
	RefFunction  = "function"
)

// ModelOp is the root of a story: four symbol tables plus a plain
// problems region for diagnostics. Instruction bodies live inside the
// functions table.
type ModelOp struct {
	ir.Operation
}

func (*ModelOp) OpKind() string { return KindModel }

// NewModel builds an empty model named after the story title.
func NewModel(ctx *ir.Context, title string, loc ir.Location) *ModelOp {
	m := &ModelOp{}
	ir.InitOp(m, ctx, title, loc)
	for _, table := range []string{"characters", "scenes", "assets", "functions"} {
		m.AddSymbolTableRegion(table).AddBlock("")
	}
	m.AddRegion("problems").AddBlock("")
	ir.FinishOp(m)
	return m
}

func (m *ModelOp) Characters() *ir.Region { return m.Region("characters") }
func (m *ModelOp) Scenes() *ir.Region     { return m.Region("scenes") }
func (m *ModelOp) Assets() *ir.Region     { return m.Region("assets") }
func (m *ModelOp) Functions() *ir.Region  { return m.Region("functions") }

// Problems returns the block holding model-level ErrorOp and CommentOp
// nodes, the ones not tied to any instruction position.
func (m *ModelOp) Problems() *ir.Block {
	return m.Region("problems").EntryBlock()
}

// AddProblem appends a diagnostic to the problems block.
func (m *ModelOp) AddProblem(e *ErrorOp) *ErrorOp {
	m.Problems().PushBackOp(e)
	return e
}

// AddCharacter registers the symbol in the characters table.
func (m *ModelOp) AddCharacter(c *CharacterSymbol) *CharacterSymbol {
	m.Characters().EntryBlock().PushBackOp(c)
	return c
}

// AddScene registers the symbol in the scenes table.
func (m *ModelOp) AddScene(s *SceneSymbol) *SceneSymbol {
	m.Scenes().EntryBlock().PushBackOp(s)
	return s
}

// AddAsset registers the symbol in the assets table.
func (m *ModelOp) AddAsset(a *AssetSymbol) *AssetSymbol {
	m.Assets().EntryBlock().PushBackOp(a)
	return a
}

// AddFunction registers the function in the functions table.
func (m *ModelOp) AddFunction(f *FunctionOp) *FunctionOp {
	m.Functions().EntryBlock().PushBackOp(f)
	return f
}

// Character returns the named character, or nil.
func (m *ModelOp) Character(name string) *CharacterSymbol {
	if s := m.Characters().Lookup(name); s != nil {
		return s.(*CharacterSymbol)
	}
	return nil
}

// Scene returns the named scene, or nil.
func (m *ModelOp) Scene(name string) *SceneSymbol {
	if s := m.Scenes().Lookup(name); s != nil {
		return s.(*SceneSymbol)
	}
	return nil
}

// Asset returns the named asset, or nil.
func (m *ModelOp) Asset(name string) *AssetSymbol {
	if s := m.Assets().Lookup(name); s != nil {
		return s.(*AssetSymbol)
	}
	return nil
}

// Function returns the named function, or nil.
func (m *ModelOp) Function(name string) *FunctionOp {
	if s := m.Functions().Lookup(name); s != nil {
		return s.(*FunctionOp)
	}
	return nil
}

func init() {
	ir.RegisterOpKind(KindModel, func(ctx *ir.Context) ir.Op {
		m := &ModelOp{}
		ir.InitOp(m, ctx, "", nil)
		return m
	})
	ir.RegisterOpKind(KindCharacter, func(ctx *ir.Context) ir.Op {
		c := &CharacterSymbol{}
		ir.InitOp(c, ctx, "", nil)
		return c
	})
	ir.RegisterOpKind(KindScene, func(ctx *ir.Context) ir.Op {
		s := &SceneSymbol{}
		ir.InitOp(s, ctx, "", nil)
		return s
	})
	ir.RegisterOpKind(KindAsset, func(ctx *ir.Context) ir.Op {
		a := &AssetSymbol{}
		ir.InitOp(a, ctx, "", nil)
		return a
	})
	ir.RegisterOpKind(KindFunction, func(ctx *ir.Context) ir.Op {
		f := &FunctionOp{}
		ir.InitOp(f, ctx, "", nil)
		return f
	})
	ir.RegisterOpKind(KindSay, func(ctx *ir.Context) ir.Op {
		s := &SayInstr{}
		ir.InitOp(s, ctx, "", nil)
		return s
	})
	ir.RegisterOpKind(KindShow, func(ctx *ir.Context) ir.Op {
		s := &ShowInstr{}
		ir.InitOp(s, ctx, "", nil)
		return s
	})
	ir.RegisterOpKind(KindCall, func(ctx *ir.Context) ir.Op {
		c := &CallInstr{}
		ir.InitOp(c, ctx, "", nil)
		return c
	})
	ir.RegisterOpKind(KindJump, func(ctx *ir.Context) ir.Op {
		j := &JumpInstr{}
		ir.InitOp(j, ctx, "", nil)
		return j
	})
	ir.RegisterOpKind(KindChoice, func(ctx *ir.Context) ir.Op {
		c := &ChoiceInstr{}
		ir.InitOp(c, ctx, "", nil)
		return c
	})
	ir.RegisterOpKind(KindReturn, func(ctx *ir.Context) ir.Op {
		r := &ReturnInstr{}
		ir.InitOp(r, ctx, "", nil)
		return r
	})
	ir.RegisterOpKind(KindError, func(ctx *ir.Context) ir.Op {
		e := &ErrorOp{}
		ir.InitOp(e, ctx, "", nil)
		return e
	})
	ir.RegisterOpKind(KindComment, func(ctx *ir.Context) ir.Op {
		c := &CommentOp{}
		ir.InitOp(c, ctx, "", nil)
		return c
	})
}
