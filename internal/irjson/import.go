package irjson

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/calliope-vn/calliope/internal/ir"
)

// Const-expression kinds are rebuilt through registered constructors,
// mirroring the operation kind registry in the core.
var constExprKinds = map[string]func() ir.ConstExpr{}

// RegisterConstExprKind installs a blank-instance constructor for kind.
func RegisterConstExprKind(kind string, ctor func() ir.ConstExpr) {
	if _, ok := constExprKinds[kind]; ok {
		panic(fmt.Sprintf("irjson: const expr kind %q registered twice", kind))
	}
	constExprKinds[kind] = ctor
}

// ImportBytes parses a serialized document and rebuilds the operation
// tree in ctx. Literals and expressions intern into ctx as usual, so
// importing into a context that already holds equal values shares them.
func ImportBytes(ctx *ir.Context, data []byte) (ir.Op, error) {
	v, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(JObject)
	if !ok {
		return nil, fmt.Errorf("irjson: document root must be an object")
	}
	return ImportDoc(ctx, doc)
}

// ImportDoc rebuilds the operation tree from a parsed document.
func ImportDoc(ctx *ir.Context, doc JObject) (ir.Op, error) {
	version, err := doc.integer("calliope")
	if err != nil {
		return nil, fmt.Errorf("irjson: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("irjson: unsupported format version %d", version)
	}

	imp := &importer{
		ctx:     ctx,
		values:  make(map[int64]ir.Value),
		pending: make(map[int64]*ir.PlaceholderValue),
	}

	table, err := doc.optArr("values")
	if err != nil {
		return nil, fmt.Errorf("irjson: %w", err)
	}
	for i, entry := range table {
		obj, ok := entry.(JObject)
		if !ok {
			return nil, fmt.Errorf("irjson: values[%d]: expected object", i)
		}
		if err := imp.defineContextValue(obj); err != nil {
			return nil, fmt.Errorf("irjson: values[%d]: %w", i, err)
		}
	}

	rootObj, err := doc.obj("root")
	if err != nil {
		return nil, fmt.Errorf("irjson: %w", err)
	}
	root, err := imp.buildOp(rootObj)
	if err != nil {
		return nil, err
	}
	if len(imp.pending) > 0 {
		ids := make([]int64, 0, len(imp.pending))
		for id := range imp.pending {
			ids = append(ids, id)
		}
		return nil, fmt.Errorf("irjson: unresolved value references %v", ids)
	}
	return root, nil
}

type importer struct {
	ctx     *ir.Context
	values  map[int64]ir.Value
	pending map[int64]*ir.PlaceholderValue
	free    []*ir.PlaceholderValue
}

// resolve returns the value for id, handing out a placeholder for
// references that precede their definition.
func (imp *importer) resolve(id int64) ir.Value {
	if v, ok := imp.values[id]; ok {
		return v
	}
	if p, ok := imp.pending[id]; ok {
		return p
	}
	var p *ir.PlaceholderValue
	if n := len(imp.free); n > 0 {
		p = imp.free[n-1]
		imp.free = imp.free[:n-1]
	} else {
		p = ir.NewPlaceholderValue(imp.ctx)
	}
	imp.pending[id] = p
	return p
}

// define records the real value for id and, if a placeholder was handed
// out, transfers its uses and recycles it.
func (imp *importer) define(id int64, v ir.Value) error {
	if _, dup := imp.values[id]; dup {
		return fmt.Errorf("value id %d defined twice", id)
	}
	imp.values[id] = v
	if p, ok := imp.pending[id]; ok {
		p.ReplaceAllUsesWith(v)
		delete(imp.pending, id)
		imp.free = append(imp.free, p)
	}
	return nil
}

func (imp *importer) resolveAll(arr JArray) ([]ir.Value, error) {
	out := make([]ir.Value, len(arr))
	for i, v := range arr {
		id, ok := v.(JInt)
		if !ok {
			return nil, fmt.Errorf("[%d]: expected value id", i)
		}
		out[i] = imp.resolve(int64(id))
	}
	return out, nil
}

func (imp *importer) defineContextValue(obj JObject) error {
	kind, err := obj.str("k")
	if err != nil {
		return err
	}
	id, err := obj.integer("id")
	if err != nil {
		return err
	}
	var v ir.Value
	switch kind {
	case "int":
		n, err := obj.integer("v")
		if err != nil {
			return err
		}
		v = ir.GetIntLiteral(imp.ctx, n)
	case "bool":
		b, err := obj.boolean("v")
		if err != nil {
			return err
		}
		v = ir.GetBoolLiteral(imp.ctx, b)
	case "str":
		s, err := obj.str("v")
		if err != nil {
			return err
		}
		v = ir.GetStringLiteral(imp.ctx, s)
	case "enumcase":
		enum, err := obj.str("enum")
		if err != nil {
			return err
		}
		caseName, err := obj.str("case")
		if err != nil {
			return err
		}
		v = ir.GetEnumLiteral(imp.ctx, enum, caseName)
	case "undef":
		tyKey, err := obj.str("type")
		if err != nil {
			return err
		}
		msg, err := obj.str("msg")
		if err != nil {
			return err
		}
		ty, err := ir.ParseTypeKey(imp.ctx, tyKey)
		if err != nil {
			return err
		}
		v = ir.GetUndefLiteral(ty, msg)
	case "style":
		arr, err := obj.arr("entries")
		if err != nil {
			return err
		}
		entries := make([]ir.StyleEntry, 0, len(arr))
		for i, raw := range arr {
			eo, ok := raw.(JObject)
			if !ok {
				return fmt.Errorf("entries[%d]: expected object", i)
			}
			attr, err := eo.integer("attr")
			if err != nil {
				return err
			}
			val, err := eo.str("value")
			if err != nil {
				return err
			}
			entries = append(entries, ir.StyleEntry{Attr: ir.TextAttribute(attr), Value: val})
		}
		v = ir.GetTextStyleLiteral(imp.ctx, entries)
	case "textfrag":
		contentID, err := obj.integer("content")
		if err != nil {
			return err
		}
		styleID, err := obj.integer("style")
		if err != nil {
			return err
		}
		content, ok := imp.values[contentID].(*ir.StringLiteral)
		if !ok {
			return fmt.Errorf("fragment content %d is not a string literal", contentID)
		}
		style, ok := imp.values[styleID].(*ir.TextStyleLiteral)
		if !ok {
			return fmt.Errorf("fragment style %d is not a style literal", styleID)
		}
		v = ir.GetTextFragmentLiteral(imp.ctx, content, style)
	case "text":
		arr, err := obj.arr("fragments")
		if err != nil {
			return err
		}
		frags := make([]*ir.TextFragmentLiteral, 0, len(arr))
		for i, raw := range arr {
			fid, ok := raw.(JInt)
			if !ok {
				return fmt.Errorf("fragments[%d]: expected value id", i)
			}
			f, ok := imp.values[int64(fid)].(*ir.TextFragmentLiteral)
			if !ok {
				return fmt.Errorf("fragments[%d]: id %d is not a fragment", i, fid)
			}
			frags = append(frags, f)
		}
		v = ir.GetTextLiteral(imp.ctx, frags)
	case "asset":
		tyKey, err := obj.str("type")
		if err != nil {
			return err
		}
		handleStr, err := obj.str("handle")
		if err != nil {
			return err
		}
		dataStr, err := obj.str("data")
		if err != nil {
			return err
		}
		ty, err := ir.ParseTypeKey(imp.ctx, tyKey)
		if err != nil {
			return err
		}
		handle, err := uuid.Parse(handleStr)
		if err != nil {
			return fmt.Errorf("asset handle: %w", err)
		}
		data, err := base64.StdEncoding.DecodeString(dataStr)
		if err != nil {
			return fmt.Errorf("asset data: %w", err)
		}
		v = ir.ImportAssetData(imp.ctx, ty, handle, data)
	case "cexpr":
		exprKind, err := obj.str("kind")
		if err != nil {
			return err
		}
		tyKey, err := obj.str("type")
		if err != nil {
			return err
		}
		arr, err := obj.arr("operands")
		if err != nil {
			return err
		}
		ty, err := ir.ParseTypeKey(imp.ctx, tyKey)
		if err != nil {
			return err
		}
		operands := make([]ir.Value, len(arr))
		for i, raw := range arr {
			oid, ok := raw.(JInt)
			if !ok {
				return fmt.Errorf("operands[%d]: expected value id", i)
			}
			ov, ok := imp.values[int64(oid)]
			if !ok {
				return fmt.Errorf("operands[%d]: id %d not yet defined", i, oid)
			}
			operands[i] = ov
		}
		ctor, ok := constExprKinds[exprKind]
		if !ok {
			return fmt.Errorf("unknown const expr kind %q", exprKind)
		}
		v = ir.InternConstExpr(imp.ctx, exprKind, ty, operands, ctor)
	default:
		return fmt.Errorf("unknown value kind %q", kind)
	}
	return imp.define(id, v)
}

func (imp *importer) buildOp(obj JObject) (ir.Op, error) {
	kind, err := obj.str("kind")
	if err != nil {
		return nil, err
	}
	op, err := ir.NewOpOfKind(kind, imp.ctx)
	if err != nil {
		return nil, err
	}
	b := op.Base()
	if _, ok := obj["name"]; ok {
		name, err := obj.str("name")
		if err != nil {
			return nil, err
		}
		b.SetOpName(name)
	}
	if rawLoc, ok := obj["loc"]; ok {
		locObj, ok := rawLoc.(JObject)
		if !ok {
			return nil, fmt.Errorf("op %q: loc must be an object", kind)
		}
		loc, err := imp.decodeLoc(locObj)
		if err != nil {
			return nil, err
		}
		b.SetLoc(loc)
	}

	attrs, err := obj.optArr("attrs")
	if err != nil {
		return nil, err
	}
	for i, raw := range attrs {
		ao, ok := raw.(JObject)
		if !ok {
			return nil, fmt.Errorf("attrs[%d]: expected object", i)
		}
		name, err := ao.str("name")
		if err != nil {
			return nil, err
		}
		switch {
		case ao["i"] != nil:
			n, _ := ao.integer("i")
			b.SetAttr(name, ir.IntAttr(n))
		case ao["b"] != nil:
			v, _ := ao.boolean("b")
			b.SetAttr(name, ir.BoolAttr(v))
		case ao["s"] != nil:
			s, _ := ao.str("s")
			b.SetAttr(name, ir.StringAttr(s))
		default:
			return nil, fmt.Errorf("attr %q: no payload", name)
		}
	}

	operands, err := obj.optArr("operands")
	if err != nil {
		return nil, err
	}
	for i, raw := range operands {
		so, ok := raw.(JObject)
		if !ok {
			return nil, fmt.Errorf("operands[%d]: expected object", i)
		}
		name, err := so.str("name")
		if err != nil {
			return nil, err
		}
		vals, err := so.arr("values")
		if err != nil {
			return nil, err
		}
		resolved, err := imp.resolveAll(vals)
		if err != nil {
			return nil, fmt.Errorf("operand %q: %w", name, err)
		}
		slot := b.GetOrCreateOperand(name)
		for _, v := range resolved {
			slot.Add(v)
		}
	}

	results, err := obj.optArr("results")
	if err != nil {
		return nil, err
	}
	for i, raw := range results {
		ro, ok := raw.(JObject)
		if !ok {
			return nil, fmt.Errorf("results[%d]: expected object", i)
		}
		name, err := ro.str("name")
		if err != nil {
			return nil, err
		}
		tyKey, err := ro.str("type")
		if err != nil {
			return nil, err
		}
		id, err := ro.integer("id")
		if err != nil {
			return nil, err
		}
		ty, err := ir.ParseTypeKey(imp.ctx, tyKey)
		if err != nil {
			return nil, err
		}
		if err := imp.define(id, b.AddResult(name, ty)); err != nil {
			return nil, err
		}
	}

	regions, err := obj.optArr("regions")
	if err != nil {
		return nil, err
	}
	for i, raw := range regions {
		ro, ok := raw.(JObject)
		if !ok {
			return nil, fmt.Errorf("regions[%d]: expected object", i)
		}
		if err := imp.buildRegion(b, ro); err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (imp *importer) buildRegion(b *ir.Operation, obj JObject) error {
	name, err := obj.str("name")
	if err != nil {
		return err
	}
	symtab, err := obj.boolean("symtab")
	if err != nil {
		return err
	}
	var region *ir.Region
	if symtab {
		region = b.AddSymbolTableRegion(name)
	} else {
		region = b.AddRegion(name)
	}

	blocks, err := obj.arr("blocks")
	if err != nil {
		return err
	}
	for i, raw := range blocks {
		bo, ok := raw.(JObject)
		if !ok {
			return fmt.Errorf("blocks[%d]: expected object", i)
		}
		blkName, err := bo.str("name")
		if err != nil {
			return err
		}
		id, err := bo.integer("id")
		if err != nil {
			return err
		}
		blk := region.AddBlock(blkName)
		if err := imp.define(id, blk); err != nil {
			return err
		}

		args, err := bo.optArr("args")
		if err != nil {
			return err
		}
		for j, rawArg := range args {
			ao, ok := rawArg.(JObject)
			if !ok {
				return fmt.Errorf("args[%d]: expected object", j)
			}
			argName, err := ao.str("name")
			if err != nil {
				return err
			}
			tyKey, err := ao.str("type")
			if err != nil {
				return err
			}
			argID, err := ao.integer("id")
			if err != nil {
				return err
			}
			ty, err := ir.ParseTypeKey(imp.ctx, tyKey)
			if err != nil {
				return err
			}
			if err := imp.define(argID, blk.AddArgument(argName, ty)); err != nil {
				return err
			}
		}

		ops, err := bo.arr("ops")
		if err != nil {
			return err
		}
		for j, rawOp := range ops {
			oo, ok := rawOp.(JObject)
			if !ok {
				return fmt.Errorf("ops[%d]: expected object", j)
			}
			inner, err := imp.buildOp(oo)
			if err != nil {
				return err
			}
			blk.PushBackOp(inner)
		}
	}
	return nil
}

func (imp *importer) decodeLoc(obj JObject) (ir.Location, error) {
	path, err := obj.str("file")
	if err != nil {
		return nil, err
	}
	file := imp.ctx.GetSourceFile(path)
	if _, ok := obj["page"]; !ok {
		return file, nil
	}
	page, err := obj.integer("page")
	if err != nil {
		return nil, err
	}
	row, err := obj.integer("row")
	if err != nil {
		return nil, err
	}
	col, err := obj.integer("col")
	if err != nil {
		return nil, err
	}
	return imp.ctx.GetSourceLoc(file, int(page), int(row), int(col)), nil
}
