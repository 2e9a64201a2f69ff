package frontend

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/calliope-vn/calliope/internal/ir"
	"github.com/calliope-vn/calliope/internal/vnmodel"
)

// Error codes attached to ErrorOp nodes produced by lowering.
const (
	ErrUnknownCharacter = "unknown-character"
	ErrUnknownScene     = "unknown-scene"
	ErrUnknownAsset     = "unknown-asset"
	ErrUnknownFunction  = "unknown-function"
	ErrUnknownBlock     = "unknown-block"
)

// Lower builds a model from a parsed storyboard. Bad references become
// ErrorOp nodes at the position of the offending line; the returned
// model is always structurally complete. path names the source file for
// locations.
func Lower(ctx *ir.Context, sb *Storyboard, path string) *vnmodel.ModelOp {
	l := &lowerer{ctx: ctx, file: ctx.GetSourceFile(path)}
	return l.lower(sb)
}

// LoadModel is Load followed by Lower.
func LoadModel(ctx *ir.Context, path string) (*vnmodel.ModelOp, error) {
	sb, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Lower(ctx, sb, path), nil
}

type lowerer struct {
	ctx   *ir.Context
	file  *ir.SourceFile
	model *vnmodel.ModelOp
}

func (l *lowerer) loc(n *yaml.Node) ir.Location {
	if n == nil {
		return l.file
	}
	return l.ctx.GetSourceLoc(l.file, 0, n.Line, n.Column)
}

func (l *lowerer) lower(sb *Storyboard) *vnmodel.ModelOp {
	l.model = vnmodel.NewModel(l.ctx, sb.Title, l.file)

	for _, c := range sb.Characters {
		l.lowerCharacter(c)
	}
	for _, a := range sb.Assets {
		l.lowerAsset(a)
	}
	for _, s := range sb.Scenes {
		l.lowerScene(s)
	}

	// Declare every function first so calls resolve regardless of
	// script order.
	for _, f := range sb.Script {
		l.model.AddFunction(vnmodel.NewFunction(l.ctx, f.Label, l.loc(f.node)))
	}
	for _, f := range sb.Script {
		l.lowerBody(l.model.Function(f.Label), f)
	}
	return l.model
}

func (l *lowerer) lowerCharacter(c Character) {
	display := c.Display
	if display == "" {
		display = c.ID
	}
	sym := vnmodel.NewCharacter(l.ctx, c.ID, vnmodel.PlainText(l.ctx, display), l.loc(c.node))

	var entries []ir.StyleEntry
	if c.Color != "" {
		entries = append(entries, ir.StyleEntry{Attr: ir.AttrTextColor, Value: c.Color})
	}
	if c.Bold {
		entries = append(entries, ir.StyleEntry{Attr: ir.AttrBold})
	}
	if len(entries) > 0 {
		sym.SetSayStyle(ir.GetTextStyleLiteral(l.ctx, entries))
	}
	l.model.AddCharacter(sym)
}

func (l *lowerer) lowerAsset(a Asset) {
	ty := ir.Type(l.ctx.ImageType())
	if a.Kind == "audio" {
		ty = l.ctx.AudioType()
	}
	var data *ir.AssetData
	if a.Path != "" {
		data = ir.NewFileAssetData(l.ctx, ty, a.Path)
	} else {
		data = ir.NewAssetData(l.ctx, ty, []byte(a.Data))
	}
	l.model.AddAsset(vnmodel.NewAsset(l.ctx, a.ID, data, l.loc(a.node)))
}

func (l *lowerer) lowerScene(s Scene) {
	var background ir.Value
	if s.Background != "" {
		if asset := l.model.Asset(s.Background); asset != nil {
			background = asset.Ref()
		} else {
			l.model.AddProblem(vnmodel.NewError(l.ctx, ErrUnknownAsset,
				fmt.Sprintf("scene %q: unknown asset %q", s.ID, s.Background), l.loc(s.node)))
		}
	}
	l.model.AddScene(vnmodel.NewScene(l.ctx, s.ID, background, l.loc(s.node)))
}

// lowerBody emits a function's instructions. Block labels are declared
// in a first pass so jumps and choices can target blocks defined later
// in the step list.
func (l *lowerer) lowerBody(fn *vnmodel.FunctionOp, f Function) {
	blocks := map[string]*ir.Block{"entry": fn.Entry()}
	for _, step := range f.Steps {
		if step.Block != "" {
			if _, dup := blocks[step.Block]; !dup {
				blocks[step.Block] = fn.AddBlock(step.Block)
			}
		}
	}

	cur := fn.Entry()
	for _, step := range f.Steps {
		loc := l.loc(step.node)
		switch {
		case step.Block != "":
			cur = blocks[step.Block]

		case step.Say != "":
			var speaker *vnmodel.CharacterSymbol
			if step.Who != "" {
				speaker = l.model.Character(step.Who)
				if speaker == nil {
					cur.PushBackOp(vnmodel.NewError(l.ctx, ErrUnknownCharacter,
						fmt.Sprintf("say: unknown character %q", step.Who), loc))
					continue
				}
			}
			cur.PushBackOp(vnmodel.NewSay(l.ctx, speaker, vnmodel.PlainText(l.ctx, step.Say), loc))

		case step.Show != "":
			scene := l.model.Scene(step.Show)
			if scene == nil {
				cur.PushBackOp(vnmodel.NewError(l.ctx, ErrUnknownScene,
					fmt.Sprintf("show: unknown scene %q", step.Show), loc))
				continue
			}
			show := vnmodel.NewShow(l.ctx, scene, nil, loc)
			if step.With != "" {
				show.SetTransition(vnmodel.GetTransition(l.ctx, step.With))
			}
			cur.PushBackOp(show)

		case step.Jump != "":
			target := blocks[step.Jump]
			if target == nil {
				cur.PushBackOp(vnmodel.NewError(l.ctx, ErrUnknownBlock,
					fmt.Sprintf("jump: unknown block %q", step.Jump), loc))
				continue
			}
			cur.PushBackOp(vnmodel.NewJump(l.ctx, target, loc))

		case step.Call != "":
			callee := l.model.Function(step.Call)
			if callee == nil {
				cur.PushBackOp(vnmodel.NewError(l.ctx, ErrUnknownFunction,
					fmt.Sprintf("call: unknown function %q", step.Call), loc))
				continue
			}
			cur.PushBackOp(vnmodel.NewCall(l.ctx, callee, loc))

		case len(step.Choice) > 0:
			choice := vnmodel.NewChoice(l.ctx, loc)
			for _, opt := range step.Choice {
				target := blocks[opt.Goto]
				if target == nil {
					cur.PushBackOp(vnmodel.NewError(l.ctx, ErrUnknownBlock,
						fmt.Sprintf("choice %q: unknown block %q", opt.Text, opt.Goto), l.loc(opt.node)))
					continue
				}
				choice.AddOption(vnmodel.PlainText(l.ctx, opt.Text), target)
			}
			if choice.NumOptions() > 0 {
				cur.PushBackOp(choice)
			}

		case step.Return:
			cur.PushBackOp(vnmodel.NewReturn(l.ctx, loc))

		case step.Note != "":
			cur.PushBackOp(vnmodel.NewComment(l.ctx, step.Note, loc))
		}
	}
}
