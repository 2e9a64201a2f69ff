package vnmodel

import (
	"github.com/calliope-vn/calliope/internal/ir"
)

// Symbols define a "ref" result: the value instructions use to point at
// them. Destroying a symbol runs the usual value destruction on the
// reference, so stale pointers degrade to Undef instead of dangling.

// CharacterSymbol names a speaking character: a display name in styled
// text and an optional style applied to the character's dialogue.
type CharacterSymbol struct {
	ir.Symbol
}

func (*CharacterSymbol) OpKind() string { return KindCharacter }

func NewCharacter(ctx *ir.Context, name string, display *ir.TextLiteral, loc ir.Location) *CharacterSymbol {
	c := &CharacterSymbol{}
	ir.InitOp(c, ctx, name, loc)
	c.GetOrCreateOperand("display").Set(display)
	c.GetOrCreateOperand("saystyle")
	c.AddResult("ref", ctx.SymbolRefType(RefCharacter))
	ir.FinishOp(c)
	return c
}

// Ref returns the character's reference value.
func (c *CharacterSymbol) Ref() *ir.OpResult { return c.Result("ref") }

// DisplayName returns the styled display text.
func (c *CharacterSymbol) DisplayName() *ir.TextLiteral {
	return c.Operand("display").Get().(*ir.TextLiteral)
}

// SayStyle returns the dialogue style, or nil when the character speaks
// unstyled.
func (c *CharacterSymbol) SayStyle() *ir.TextStyleLiteral {
	if v := c.Operand("saystyle").Get(); v != nil {
		return v.(*ir.TextStyleLiteral)
	}
	return nil
}

func (c *CharacterSymbol) SetSayStyle(style *ir.TextStyleLiteral) {
	c.Operand("saystyle").Set(style)
}

// SceneSymbol names a location with a background image.
type SceneSymbol struct {
	ir.Symbol
}

func (*SceneSymbol) OpKind() string { return KindScene }

func NewScene(ctx *ir.Context, name string, background ir.Value, loc ir.Location) *SceneSymbol {
	s := &SceneSymbol{}
	ir.InitOp(s, ctx, name, loc)
	bg := s.GetOrCreateOperand("background")
	if background != nil {
		bg.Set(background)
	}
	s.AddResult("ref", ctx.SymbolRefType(RefScene))
	ir.FinishOp(s)
	return s
}

// Ref returns the scene's reference value.
func (s *SceneSymbol) Ref() *ir.OpResult { return s.Result("ref") }

// Background returns the background value, usually an AssetSymbol
// reference or raw AssetData; nil for a bare stage.
func (s *SceneSymbol) Background() ir.Value { return s.Operand("background").Get() }

// AssetSymbol names a piece of AssetData so scripts reference it by name
// rather than by handle. The handle is mirrored into an attribute for
// dumps.
type AssetSymbol struct {
	ir.Symbol
}

func (*AssetSymbol) OpKind() string { return KindAsset }

func NewAsset(ctx *ir.Context, name string, data *ir.AssetData, loc ir.Location) *AssetSymbol {
	a := &AssetSymbol{}
	ir.InitOp(a, ctx, name, loc)
	a.GetOrCreateOperand("data").Set(data)
	a.SetAttr("handle", ir.StringAttr(data.Handle().String()))
	a.AddResult("ref", ctx.SymbolRefType(RefAsset))
	ir.FinishOp(a)
	return a
}

// Ref returns the asset's reference value.
func (a *AssetSymbol) Ref() *ir.OpResult { return a.Result("ref") }

// Data returns the underlying asset payload value.
func (a *AssetSymbol) Data() *ir.AssetData {
	return a.Operand("data").Get().(*ir.AssetData)
}
