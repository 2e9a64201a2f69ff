package ir

import "fmt"

// ValueMapper records the old-to-new value correspondence built while a
// subtree is copied. The cloner fills it with result, block, and block
// argument mappings; the remap pass then rewrites every cloned operand
// whose original target was itself cloned, leaving references that point
// outside the copied subtree intact.
type ValueMapper struct {
	mapping    map[Value]Value
	keepUnused bool
}

func NewValueMapper() *ValueMapper {
	return &ValueMapper{mapping: make(map[Value]Value)}
}

// SetKeepUnused makes Record keep entries for values with empty
// use-lists. By default those are skipped: nothing can need the mapping,
// and skipping keeps the table proportional to the live reference count.
func (m *ValueMapper) SetKeepUnused(keep bool) { m.keepUnused = keep }

// Record stores the correspondence old -> repl.
func (m *ValueMapper) Record(old, repl Value) {
	if old == nil {
		panic("ir: mapping a nil value")
	}
	if !m.keepUnused && old.UseEmpty() {
		return
	}
	m.mapping[old] = repl
}

// Mapped returns the recorded replacement for old, or nil when old was
// not part of the copied subtree.
func (m *ValueMapper) Mapped(old Value) Value {
	if old == nil {
		return nil
	}
	return m.mapping[old]
}

func (m *ValueMapper) Len() int { return len(m.mapping) }

// CloneOp deep-copies src into a detached operation of the same kind.
// The copy is structural: attributes, operand slots, results, regions,
// blocks, and nested operations are rebuilt one-to-one, then a second
// pass rewrites operand edges so references into the copied subtree land
// on the copies. References to values outside the subtree are shared
// with the original. Pass a mapper to observe or extend the value
// correspondence; nil allocates a private one.
func CloneOp(src Op, m *ValueMapper) Op {
	if m == nil {
		m = NewValueMapper()
	}
	dst := cloneStructure(src, m)
	remapOperands(dst.Base(), m)
	return dst
}

func cloneStructure(src Op, m *ValueMapper) Op {
	base := src.Base()
	dst, err := NewOpOfKind(src.OpKind(), base.ctx)
	if err != nil {
		panic(fmt.Sprintf("ir: cloning unregistered kind: %v", err))
	}
	db := dst.Base()
	db.name = base.name
	db.loc = base.loc

	base.attrs.ForEach(func(name string, a Attr) {
		db.SetAttr(name, a)
	})
	base.operands.ForEach(func(name string, s *OpOperand) {
		ds := db.GetOrCreateOperand(name)
		for _, u := range s.OperandUses() {
			ds.Add(u.Value())
		}
	})
	base.results.ForEach(func(name string, r *OpResult) {
		m.Record(r, db.AddResult(name, r.Type()))
	})
	base.regions.ForEach(func(name string, r *Region) {
		var dr *Region
		if r.IsSymbolTable() {
			dr = db.AddSymbolTableRegion(name)
		} else {
			dr = db.AddRegion(name)
		}
		r.ForEachBlock(func(b *Block) {
			dblk := dr.AddBlock(b.name)
			m.Record(b, dblk)
			b.args.ForEach(func(argName string, a *BlockArgument) {
				m.Record(a, dblk.AddArgument(argName, a.Type()))
			})
			b.ForEachOp(func(inner Op) {
				dblk.PushBackOp(cloneStructure(inner, m))
			})
		})
	})
	return dst
}

func remapOperands(o *Operation, m *ValueMapper) {
	o.ForEachOperand(func(s *OpOperand) { s.postCopyValueRemap(m) })
	o.ForEachRegion(func(r *Region) {
		r.ForEachBlock(func(b *Block) {
			b.ForEachOp(func(inner Op) { remapOperands(inner.Base(), m) })
		})
	})
}
