package ir

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// Writer renders an operation tree as indented text for debugging and
// golden tests. Values defined inside the tree are numbered in first
// definition order, so two structurally equal trees render identically.
// The HTML variant wraps the same layout in a minimal styled page.
type Writer struct {
	w        io.Writer
	html     bool
	err      error
	valueIDs map[Value]int
	nextID   int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, valueIDs: make(map[Value]int)}
}

func NewHTMLWriter(w io.Writer) *Writer {
	return &Writer{w: w, html: true, valueIDs: make(map[Value]int)}
}

// DumpOp renders op as plain text.
func DumpOp(op Op) string {
	var sb strings.Builder
	_ = NewWriter(&sb).WriteOp(op)
	return sb.String()
}

// WriteOp renders the whole tree rooted at op. The first write error is
// retained and returned; rendering stops early on error.
func (wr *Writer) WriteOp(op Op) error {
	if wr.html {
		wr.raw("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><style>\n" +
			"body{font-family:monospace;white-space:pre}\n" +
			".kind{font-weight:bold}.loc{color:#888}.undef{color:#c00}\n" +
			"</style></head><body>")
	}
	wr.numberTree(op)
	wr.writeOpLine(op, 0)
	if wr.html {
		wr.raw("</body></html>\n")
	}
	return wr.err
}

// numberTree assigns ids to every defined value in pre-order so operand
// references can be printed before the textual definition point.
func (wr *Writer) numberTree(op Op) {
	b := op.Base()
	b.ForEachResult(func(r *OpResult) { wr.assign(r) })
	b.ForEachRegion(func(r *Region) {
		r.ForEachBlock(func(blk *Block) {
			wr.assign(blk)
			blk.args.ForEach(func(_ string, a *BlockArgument) { wr.assign(a) })
			blk.ForEachOp(wr.numberTree)
		})
	})
}

func (wr *Writer) assign(v Value) {
	if _, ok := wr.valueIDs[v]; !ok {
		wr.valueIDs[v] = wr.nextID
		wr.nextID++
	}
}

func (wr *Writer) writeOpLine(op Op, depth int) {
	b := op.Base()
	wr.indent(depth)
	wr.span("kind", op.OpKind())
	if b.name != "" {
		wr.text(fmt.Sprintf(" %q", b.name))
	}
	if _, isNull := b.loc.(*nullLocation); !isNull {
		wr.text(" ")
		wr.span("loc", "@"+b.loc.String())
	}
	if b.attrs.Len() > 0 {
		parts := make([]string, 0, b.attrs.Len())
		b.attrs.ForEach(func(name string, a Attr) {
			parts = append(parts, name+"="+a.String())
		})
		wr.text(" {" + strings.Join(parts, ", ") + "}")
	}
	if b.operands.Len() > 0 {
		parts := make([]string, 0, b.operands.Len())
		b.operands.ForEach(func(name string, s *OpOperand) {
			vals := make([]string, s.Size())
			for i := range vals {
				vals[i] = wr.valueRef(s.GetAt(i))
			}
			parts = append(parts, name+"="+strings.Join(vals, ","))
		})
		wr.text(" (" + strings.Join(parts, ", ") + ")")
	}
	if b.results.Len() > 0 {
		parts := make([]string, 0, b.results.Len())
		b.results.ForEach(func(name string, r *OpResult) {
			parts = append(parts, fmt.Sprintf("%%%d:%s=%s", wr.valueIDs[r], name, r.Type()))
		})
		wr.text(" -> (" + strings.Join(parts, ", ") + ")")
	}
	wr.text("\n")
	b.ForEachRegion(func(r *Region) { wr.writeRegion(r, depth+1) })
}

func (wr *Writer) writeRegion(r *Region, depth int) {
	wr.indent(depth)
	if r.IsSymbolTable() {
		wr.text(r.name + " [symtab]:\n")
	} else {
		wr.text(r.name + ":\n")
	}
	r.ForEachBlock(func(b *Block) {
		wr.indent(depth + 1)
		wr.text(fmt.Sprintf("^%s%%%d", b.name, wr.valueIDs[b]))
		if b.args.Len() > 0 {
			parts := make([]string, 0, b.args.Len())
			b.args.ForEach(func(name string, a *BlockArgument) {
				parts = append(parts, fmt.Sprintf("%%%d:%s=%s", wr.valueIDs[a], name, a.Type()))
			})
			wr.text("(" + strings.Join(parts, ", ") + ")")
		}
		wr.text(":\n")
		b.ForEachOp(func(op Op) { wr.writeOpLine(op, depth+2) })
	})
}

// valueRef renders an operand reference: numbered for tree-defined
// values, self-describing for literals, expressions, and assets. The
// result goes through text, which handles HTML escaping.
func (wr *Writer) valueRef(v Value) string {
	if v == nil {
		return "<nil>"
	}
	if id, ok := wr.valueIDs[v]; ok {
		return fmt.Sprintf("%%%d", id)
	}
	return v.Describe()
}

func (wr *Writer) indent(depth int) {
	wr.text(strings.Repeat("  ", depth))
}

func (wr *Writer) text(s string) {
	if wr.html {
		s = html.EscapeString(s)
	}
	wr.raw(s)
}

func (wr *Writer) span(class, s string) {
	if wr.html {
		wr.raw("<span class=\"" + class + "\">" + html.EscapeString(s) + "</span>")
		return
	}
	wr.raw(s)
}

func (wr *Writer) raw(s string) {
	if wr.err != nil {
		return
	}
	_, wr.err = io.WriteString(wr.w, s)
}
