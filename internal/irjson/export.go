package irjson

import (
	"encoding/base64"
	"fmt"

	"github.com/calliope-vn/calliope/internal/ir"
)

// FormatVersion is bumped when the document layout changes shape.
const FormatVersion = 1

// ExportOp renders the tree rooted at op as a document value.
func ExportOp(op ir.Op) (JObject, error) {
	e := &exporter{ids: make(map[ir.Value]int)}
	e.numberTree(op)
	root, err := e.encodeOp(op)
	if err != nil {
		return nil, err
	}
	return JObject{
		"calliope": JInt(FormatVersion),
		"values":   e.table,
		"root":     root,
	}, nil
}

// ExportBytes renders op as canonical JSON bytes.
func ExportBytes(op ir.Op) ([]byte, error) {
	doc, err := ExportOp(op)
	if err != nil {
		return nil, err
	}
	return MarshalCanonical(doc)
}

// ExportContentKey returns the hex SHA-256 identity of op's canonical
// serialization. Structurally equal trees share a key.
func ExportContentKey(op ir.Op) (string, error) {
	doc, err := ExportOp(op)
	if err != nil {
		return "", err
	}
	return ContentKey(doc)
}

type exporter struct {
	ids   map[ir.Value]int
	next  int
	table JArray
}

// numberTree pre-assigns ids to every tree-defined value so operands can
// reference definitions that appear later in the document.
func (e *exporter) numberTree(op ir.Op) {
	b := op.Base()
	b.ForEachResult(func(r *ir.OpResult) { e.assign(r) })
	b.ForEachRegion(func(r *ir.Region) {
		r.ForEachBlock(func(blk *ir.Block) {
			e.assign(blk)
			for _, name := range blk.ArgumentNames() {
				e.assign(blk.Argument(name))
			}
			blk.ForEachOp(e.numberTree)
		})
	})
}

func (e *exporter) assign(v ir.Value) int {
	id, ok := e.ids[v]
	if !ok {
		id = e.next
		e.next++
		e.ids[v] = id
	}
	return id
}

// valueID returns v's id, defining context-owned values in the table on
// first encounter. Table entries precede everything that references
// them, so the importer processes the table in one pass.
func (e *exporter) valueID(v ir.Value) (int, error) {
	if id, ok := e.ids[v]; ok {
		return id, nil
	}
	entry, err := e.encodeContextValue(v)
	if err != nil {
		return 0, err
	}
	id := e.assign(v)
	entry["id"] = JInt(id)
	e.table = append(e.table, entry)
	return id, nil
}

func (e *exporter) encodeContextValue(v ir.Value) (JObject, error) {
	switch val := v.(type) {
	case *ir.IntLiteral:
		return JObject{"k": JString("int"), "v": JInt(val.Value())}, nil
	case *ir.BoolLiteral:
		return JObject{"k": JString("bool"), "v": JBool(val.Value())}, nil
	case *ir.StringLiteral:
		return JObject{"k": JString("str"), "v": JString(val.Value())}, nil
	case *ir.EnumLiteral:
		return JObject{
			"k":    JString("enumcase"),
			"enum": JString(val.Type().(*ir.EnumType).EnumName()),
			"case": JString(val.CaseName()),
		}, nil
	case *ir.UndefLiteral:
		return JObject{
			"k":    JString("undef"),
			"type": JString(val.Type().TypeKey()),
			"msg":  JString(val.Message()),
		}, nil
	case *ir.TextStyleLiteral:
		entries := JArray{}
		for _, se := range val.Entries() {
			entries = append(entries, JObject{
				"attr":  JInt(int64(se.Attr)),
				"value": JString(se.Value),
			})
		}
		return JObject{"k": JString("style"), "entries": entries}, nil
	case *ir.TextFragmentLiteral:
		content, err := e.valueID(val.Content())
		if err != nil {
			return nil, err
		}
		style, err := e.valueID(val.Style())
		if err != nil {
			return nil, err
		}
		return JObject{
			"k":       JString("textfrag"),
			"content": JInt(content),
			"style":   JInt(style),
		}, nil
	case *ir.TextLiteral:
		frags := JArray{}
		for _, f := range val.Fragments() {
			id, err := e.valueID(f)
			if err != nil {
				return nil, err
			}
			frags = append(frags, JInt(id))
		}
		return JObject{"k": JString("text"), "fragments": frags}, nil
	case *ir.AssetData:
		data, err := val.Load()
		if err != nil {
			return nil, fmt.Errorf("irjson: exporting asset: %w", err)
		}
		return JObject{
			"k":      JString("asset"),
			"type":   JString(val.Type().TypeKey()),
			"handle": JString(val.Handle().String()),
			"data":   JString(base64.StdEncoding.EncodeToString(data)),
		}, nil
	case *ir.PlaceholderValue:
		return nil, fmt.Errorf("irjson: placeholder values are not serializable")
	}
	if ce, ok := v.(ir.ConstExpr); ok {
		operands := JArray{}
		for _, u := range ce.OperandUses() {
			id, err := e.valueID(u.Value())
			if err != nil {
				return nil, err
			}
			operands = append(operands, JInt(id))
		}
		return JObject{
			"k":        JString("cexpr"),
			"kind":     JString(ce.ExprKind()),
			"type":     JString(ce.Type().TypeKey()),
			"operands": operands,
		}, nil
	}
	return nil, fmt.Errorf("irjson: value %q is defined outside the exported tree", v.Describe())
}

func (e *exporter) encodeOp(op ir.Op) (JObject, error) {
	b := op.Base()
	out := JObject{"kind": JString(op.OpKind())}
	if b.OpName() != "" {
		out["name"] = JString(b.OpName())
	}
	if loc := encodeLoc(b.Loc()); loc != nil {
		out["loc"] = loc
	}

	if names := b.AttrNames(); len(names) > 0 {
		attrs := JArray{}
		for _, name := range names {
			a, _ := b.Attr(name)
			entry := JObject{"name": JString(name)}
			switch av := a.(type) {
			case ir.IntAttr:
				entry["i"] = JInt(av.Value())
			case ir.BoolAttr:
				entry["b"] = JBool(av.Value())
			case ir.StringAttr:
				entry["s"] = JString(av.Value())
			default:
				return nil, fmt.Errorf("irjson: unsupported attribute %T", a)
			}
			attrs = append(attrs, entry)
		}
		out["attrs"] = attrs
	}

	var operandErr error
	operands := JArray{}
	b.ForEachOperand(func(s *ir.OpOperand) {
		if operandErr != nil {
			return
		}
		vals := JArray{}
		for _, u := range s.OperandUses() {
			id, err := e.valueID(u.Value())
			if err != nil {
				operandErr = fmt.Errorf("operand %q of %q: %w", s.Name(), b.OpName(), err)
				return
			}
			vals = append(vals, JInt(id))
		}
		operands = append(operands, JObject{"name": JString(s.Name()), "values": vals})
	})
	if operandErr != nil {
		return nil, operandErr
	}
	if len(operands) > 0 {
		out["operands"] = operands
	}

	results := JArray{}
	b.ForEachResult(func(r *ir.OpResult) {
		results = append(results, JObject{
			"name": JString(r.Name()),
			"type": JString(r.Type().TypeKey()),
			"id":   JInt(e.ids[r]),
		})
	})
	if len(results) > 0 {
		out["results"] = results
	}

	var regionErr error
	regions := JArray{}
	b.ForEachRegion(func(r *ir.Region) {
		if regionErr != nil {
			return
		}
		enc, err := e.encodeRegion(r)
		if err != nil {
			regionErr = err
			return
		}
		regions = append(regions, enc)
	})
	if regionErr != nil {
		return nil, regionErr
	}
	if len(regions) > 0 {
		out["regions"] = regions
	}
	return out, nil
}

func (e *exporter) encodeRegion(r *ir.Region) (JObject, error) {
	blocks := JArray{}
	var blockErr error
	r.ForEachBlock(func(blk *ir.Block) {
		if blockErr != nil {
			return
		}
		args := JArray{}
		for _, name := range blk.ArgumentNames() {
			a := blk.Argument(name)
			args = append(args, JObject{
				"name": JString(name),
				"type": JString(a.Type().TypeKey()),
				"id":   JInt(e.ids[a]),
			})
		}
		ops := JArray{}
		blk.ForEachOp(func(op ir.Op) {
			if blockErr != nil {
				return
			}
			enc, err := e.encodeOp(op)
			if err != nil {
				blockErr = err
				return
			}
			ops = append(ops, enc)
		})
		entry := JObject{
			"name": JString(blk.Name()),
			"id":   JInt(e.ids[blk]),
			"ops":  ops,
		}
		if len(args) > 0 {
			entry["args"] = args
		}
		blocks = append(blocks, entry)
	})
	if blockErr != nil {
		return nil, blockErr
	}
	return JObject{
		"name":   JString(r.Name()),
		"symtab": JBool(r.IsSymbolTable()),
		"blocks": blocks,
	}, nil
}

func encodeLoc(loc ir.Location) JObject {
	switch l := loc.(type) {
	case *ir.SourceFile:
		return JObject{"file": JString(l.Path())}
	case *ir.SourceLoc:
		return JObject{
			"file": JString(l.File().Path()),
			"page": JInt(int64(l.Page())),
			"row":  JInt(int64(l.Row())),
			"col":  JInt(int64(l.Col())),
		}
	default:
		return nil
	}
}
