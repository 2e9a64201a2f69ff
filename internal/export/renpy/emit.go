// Package renpy turns a story model into a Ren'Py script.
//
// The emitter is a read-only walk over the model: character symbols
// become define statements, scenes become image statements, and each
// function body becomes a chain of labels. Block labels inside a
// function are qualified with the function name so labels stay unique
// across the script.
//
// Output is deterministic for a given model: symbols emit in table
// order and instructions in block order, so a byte-identical model
// yields a byte-identical script. That property is what makes the
// content-keyed cache in internal/exportcache sound.
package renpy

import (
	"fmt"
	"strings"

	"github.com/calliope-vn/calliope/internal/ir"
	"github.com/calliope-vn/calliope/internal/vnmodel"
)

// Target names this exporter in cache keys and manifests.
const Target = "renpy"

// Export renders the model as a single Ren'Py script.
func Export(m *vnmodel.ModelOp) ([]byte, error) {
	e := &emitter{}
	e.model(m)
	if e.err != nil {
		return nil, e.err
	}
	return []byte(e.b.String()), nil
}

type emitter struct {
	b   strings.Builder
	err error
}

func (e *emitter) linef(format string, args ...any) {
	fmt.Fprintf(&e.b, format+"\n", args...)
}

func (e *emitter) blank() {
	e.b.WriteString("\n")
}

func (e *emitter) model(m *vnmodel.ModelOp) {
	e.linef("# %s", m.OpName())

	if m.Characters().NumSymbols() > 0 {
		e.blank()
		m.Characters().ForEachSymbol(func(s ir.SymbolOp) {
			e.character(s.(*vnmodel.CharacterSymbol))
		})
	}

	if m.Scenes().NumSymbols() > 0 {
		e.blank()
		m.Scenes().ForEachSymbol(func(s ir.SymbolOp) {
			e.scene(s.(*vnmodel.SceneSymbol))
		})
	}

	m.Functions().ForEachSymbol(func(s ir.SymbolOp) {
		e.function(s.(*vnmodel.FunctionOp))
	})
}

func (e *emitter) character(c *vnmodel.CharacterSymbol) {
	display := c.SymbolName()
	if d := c.DisplayName(); d != nil {
		display = d.PlainText()
	}
	if style := c.SayStyle(); style != nil {
		if color, ok := style.Lookup(ir.AttrTextColor); ok {
			e.linef("define %s = Character(%s, color=%s)",
				c.SymbolName(), quote(display), quote(color))
			return
		}
	}
	e.linef("define %s = Character(%s)", c.SymbolName(), quote(display))
}

func (e *emitter) scene(s *vnmodel.SceneSymbol) {
	asset := assetOf(s.Background())
	if asset == nil {
		e.linef("image %s = Placeholder()", s.SymbolName())
		return
	}
	e.linef("image %s = %s", s.SymbolName(), quote(AssetFileName(asset)))
}

func (e *emitter) function(fn *vnmodel.FunctionOp) {
	fn.Body().ForEachBlock(func(b *ir.Block) {
		e.blank()
		e.linef("label %s:", labelFor(fn, b))
		empty := true
		b.ForEachOp(func(op ir.Op) {
			e.instr(fn, op)
			empty = false
		})
		if empty {
			e.linef("    pass")
		}
	})
}

func (e *emitter) instr(fn *vnmodel.FunctionOp, op ir.Op) {
	switch instr := op.(type) {
	case *vnmodel.SayInstr:
		e.say(instr)
	case *vnmodel.ShowInstr:
		e.show(instr)
	case *vnmodel.JumpInstr:
		if t := instr.Target(); t != nil {
			e.linef("    jump %s", labelFor(fn, t))
		} else {
			e.linef("    pass # jump target no longer exists")
		}
	case *vnmodel.CallInstr:
		if callee := calleeOf(instr); callee != nil {
			e.linef("    call %s", callee.SymbolName())
		} else {
			e.linef("    pass # callee no longer exists")
		}
	case *vnmodel.ChoiceInstr:
		e.choice(fn, instr)
	case *vnmodel.ReturnInstr:
		e.linef("    return")
	case *vnmodel.CommentOp:
		e.linef("    # %s", instr.Text())
	case *vnmodel.ErrorOp:
		e.linef("    # error %s: %s", instr.Code(), instr.Message())
	default:
		e.err = fmt.Errorf("renpy: no emission for %q", op.OpKind())
	}
}

func (e *emitter) say(s *vnmodel.SayInstr) {
	text := quote(s.Text().PlainText())
	if c := speakerOf(s); c != nil {
		e.linef("    %s %s", c.SymbolName(), text)
		return
	}
	e.linef("    %s", text)
}

func (e *emitter) show(s *vnmodel.ShowInstr) {
	scene := sceneOf(s.Scene())
	if scene == nil {
		e.linef("    pass # scene no longer exists")
		return
	}
	e.linef("    scene %s", scene.SymbolName())
	if t := s.Transition(); t != nil {
		e.linef("    with %s", t.CaseName())
	}
}

func (e *emitter) choice(fn *vnmodel.FunctionOp, c *vnmodel.ChoiceInstr) {
	e.linef("    menu:")
	for i := 0; i < c.NumOptions(); i++ {
		text, target := c.Option(i)
		e.linef("        %s:", quote(text.PlainText()))
		if target != nil {
			e.linef("            jump %s", labelFor(fn, target))
		} else {
			e.linef("            pass # option target no longer exists")
		}
	}
}

// labelFor qualifies a block label with its function name. The entry
// block is the function label itself.
func labelFor(fn *vnmodel.FunctionOp, b *ir.Block) string {
	if b == fn.Entry() {
		return fn.SymbolName()
	}
	return fn.SymbolName() + "_" + b.Name()
}

// AssetFileName is the file a scene image statement refers to: the
// asset's symbol name with an extension from its payload type.
func AssetFileName(a *vnmodel.AssetSymbol) string {
	ext := ".png"
	if _, audio := a.Data().Type().(*ir.AudioType); audio {
		ext = ".ogg"
	}
	return a.SymbolName() + ext
}

// speakerOf resolves a say's speaker operand back to its character, nil
// for narration or a destroyed speaker.
func speakerOf(s *vnmodel.SayInstr) *vnmodel.CharacterSymbol {
	if res, ok := s.Speaker().(*ir.OpResult); ok {
		if c, ok := res.Op().Self().(*vnmodel.CharacterSymbol); ok {
			return c
		}
	}
	return nil
}

func sceneOf(v ir.Value) *vnmodel.SceneSymbol {
	if res, ok := v.(*ir.OpResult); ok {
		if s, ok := res.Op().Self().(*vnmodel.SceneSymbol); ok {
			return s
		}
	}
	return nil
}

func assetOf(v ir.Value) *vnmodel.AssetSymbol {
	if res, ok := v.(*ir.OpResult); ok {
		if a, ok := res.Op().Self().(*vnmodel.AssetSymbol); ok {
			return a
		}
	}
	return nil
}

func calleeOf(c *vnmodel.CallInstr) *vnmodel.FunctionOp {
	if res, ok := c.Callee().(*ir.OpResult); ok {
		if fn, ok := res.Op().Self().(*vnmodel.FunctionOp); ok {
			return fn
		}
	}
	return nil
}

// quote renders a Ren'Py string literal.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
