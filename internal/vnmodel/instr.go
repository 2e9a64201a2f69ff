package vnmodel

import (
	"fmt"

	"github.com/calliope-vn/calliope/internal/ir"
)

// SayInstr is one line of dialogue: an optional speaker reference and
// the styled text. A nil speaker is narration.
type SayInstr struct {
	ir.Operation
}

func (*SayInstr) OpKind() string { return KindSay }

func NewSay(ctx *ir.Context, speaker *CharacterSymbol, text *ir.TextLiteral, loc ir.Location) *SayInstr {
	s := &SayInstr{}
	ir.InitOp(s, ctx, "", loc)
	spk := s.GetOrCreateOperand("speaker")
	if speaker != nil {
		spk.Set(speaker.Ref())
	}
	s.GetOrCreateOperand("text").Set(text)
	ir.FinishOp(s)
	return s
}

// Speaker returns the speaker reference value, or nil for narration.
func (s *SayInstr) Speaker() ir.Value { return s.Operand("speaker").Get() }

// Text returns the dialogue text.
func (s *SayInstr) Text() *ir.TextLiteral {
	return s.Operand("text").Get().(*ir.TextLiteral)
}

// ShowInstr presents something on stage: a scene change, a sprite, or
// both. The transition operand is an enum literal from the "transition"
// case set; absent means a hard cut.
type ShowInstr struct {
	ir.Operation
}

func (*ShowInstr) OpKind() string { return KindShow }

func NewShow(ctx *ir.Context, scene *SceneSymbol, sprite ir.Value, loc ir.Location) *ShowInstr {
	s := &ShowInstr{}
	ir.InitOp(s, ctx, "", loc)
	sc := s.GetOrCreateOperand("scene")
	if scene != nil {
		sc.Set(scene.Ref())
	}
	sp := s.GetOrCreateOperand("sprite")
	if sprite != nil {
		sp.Set(sprite)
	}
	s.GetOrCreateOperand("transition")
	ir.FinishOp(s)
	return s
}

// Scene returns the scene reference, or nil when only a sprite changes.
func (s *ShowInstr) Scene() ir.Value { return s.Operand("scene").Get() }

// Sprite returns the presented asset value, or nil for a bare scene
// change.
func (s *ShowInstr) Sprite() ir.Value { return s.Operand("sprite").Get() }

// Transition returns the transition literal, or nil for a hard cut.
func (s *ShowInstr) Transition() *ir.EnumLiteral {
	if v := s.Operand("transition").Get(); v != nil {
		return v.(*ir.EnumLiteral)
	}
	return nil
}

func (s *ShowInstr) SetTransition(t *ir.EnumLiteral) {
	s.Operand("transition").Set(t)
}

// GetTransition interns a case of the shared "transition" enum.
func GetTransition(ctx *ir.Context, name string) *ir.EnumLiteral {
	return ir.GetEnumLiteral(ctx, "transition", name)
}

// CallInstr transfers control to another function and returns here.
type CallInstr struct {
	ir.Operation
}

func (*CallInstr) OpKind() string { return KindCall }

func NewCall(ctx *ir.Context, callee *FunctionOp, loc ir.Location) *CallInstr {
	c := &CallInstr{}
	ir.InitOp(c, ctx, "", loc)
	c.GetOrCreateOperand("callee").Set(callee.Ref())
	ir.FinishOp(c)
	return c
}

// Callee returns the called function's reference value.
func (c *CallInstr) Callee() ir.Value { return c.Operand("callee").Get() }

// JumpInstr is an unconditional branch to a block in the same body.
type JumpInstr struct {
	ir.Operation
}

func (*JumpInstr) OpKind() string { return KindJump }

func NewJump(ctx *ir.Context, target *ir.Block, loc ir.Location) *JumpInstr {
	j := &JumpInstr{}
	ir.InitOp(j, ctx, "", loc)
	j.GetOrCreateOperand("target").Set(target)
	ir.FinishOp(j)
	return j
}

// Target returns the branch target block, or nil after the block was
// destroyed and the edge degraded to Undef.
func (j *JumpInstr) Target() *ir.Block {
	if b, ok := j.Operand("target").Get().(*ir.Block); ok {
		return b
	}
	return nil
}

// ChoiceInstr presents options to the player. Option texts and target
// blocks pair up by index; the two slots always hold the same count.
type ChoiceInstr struct {
	ir.Operation
}

func (*ChoiceInstr) OpKind() string { return KindChoice }

func NewChoice(ctx *ir.Context, loc ir.Location) *ChoiceInstr {
	c := &ChoiceInstr{}
	ir.InitOp(c, ctx, "", loc)
	c.GetOrCreateOperand("options")
	c.GetOrCreateOperand("targets")
	ir.FinishOp(c)
	return c
}

// AddOption appends an option with its branch target.
func (c *ChoiceInstr) AddOption(text *ir.TextLiteral, target *ir.Block) {
	c.Operand("options").Add(text)
	c.Operand("targets").Add(target)
}

// NumOptions returns the option count.
func (c *ChoiceInstr) NumOptions() int {
	n := c.Operand("options").Size()
	if t := c.Operand("targets").Size(); t != n {
		panic(fmt.Sprintf("vnmodel: choice with %d options but %d targets", n, t))
	}
	return n
}

// Option returns the i-th option text and target block. The target is
// nil when the block was destroyed out from under the choice.
func (c *ChoiceInstr) Option(i int) (*ir.TextLiteral, *ir.Block) {
	text := c.Operand("options").GetAt(i).(*ir.TextLiteral)
	target, _ := c.Operand("targets").GetAt(i).(*ir.Block)
	return text, target
}

// ReturnInstr ends the function, resuming the caller.
type ReturnInstr struct {
	ir.Operation
}

func (*ReturnInstr) OpKind() string { return KindReturn }

func NewReturn(ctx *ir.Context, loc ir.Location) *ReturnInstr {
	r := &ReturnInstr{}
	ir.InitOp(r, ctx, "", loc)
	ir.FinishOp(r)
	return r
}

// IsTerminator reports whether op ends a block: jumps, choices, and
// returns do, everything else falls through to the next block in order.
func IsTerminator(op ir.Op) bool {
	switch op.(type) {
	case *JumpInstr, *ChoiceInstr, *ReturnInstr:
		return true
	}
	return false
}
