package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Literal is an immutable, Context-uniqued value. Literal lifetime is the
// Context's: literals survive any amount of tree surgery and can cross
// from one top-level operation to the next.
type Literal interface {
	Value
	literal() // sealed within the core; domain literals embed a kind below
}

type literalBase struct {
	ValueBase
}

func (literalBase) literal() {}

// UndefLiteral is the diagnostic placeholder substituted for the uses of a
// destroyed value that still had live consumers. Its message carries the
// destroyed value's description so dumps and backends can surface it.
type UndefLiteral struct {
	literalBase
	msg string
}

// Message returns the diagnostic text recorded at substitution time.
func (l *UndefLiteral) Message() string { return l.msg }

func (l *UndefLiteral) Describe() string {
	return fmt.Sprintf("undef<%s>(%s)", l.Type(), l.msg)
}

// GetUndefLiteral returns the canonical Undef for (type, message).
func GetUndefLiteral(ty Type, msg string) *UndefLiteral {
	ctx := ty.Context()
	key := "undef|" + ty.TypeKey() + "|" + msg
	return ctx.getLiteral(key, func() Value {
		l := &UndefLiteral{msg: msg}
		l.initValue(l, ty)
		return l
	}).(*UndefLiteral)
}

// IntLiteral is a uniqued int64 constant.
type IntLiteral struct {
	literalBase
	value int64
}

func (l *IntLiteral) Value() int64 { return l.value }

func (l *IntLiteral) Describe() string { return strconv.FormatInt(l.value, 10) }

// GetIntLiteral returns the canonical literal for value in ctx. Two calls
// with equal values return the same object.
func GetIntLiteral(ctx *Context, value int64) *IntLiteral {
	key := "int|" + strconv.FormatInt(value, 10)
	return ctx.getLiteral(key, func() Value {
		l := &IntLiteral{value: value}
		l.initValue(l, ctx.IntType())
		return l
	}).(*IntLiteral)
}

// BoolLiteral is a uniqued boolean constant.
type BoolLiteral struct {
	literalBase
	value bool
}

func (l *BoolLiteral) Value() bool { return l.value }

func (l *BoolLiteral) Describe() string { return strconv.FormatBool(l.value) }

// GetBoolLiteral returns the canonical literal for value in ctx.
func GetBoolLiteral(ctx *Context, value bool) *BoolLiteral {
	key := "bool|" + strconv.FormatBool(value)
	return ctx.getLiteral(key, func() Value {
		l := &BoolLiteral{value: value}
		l.initValue(l, ctx.BoolType())
		return l
	}).(*BoolLiteral)
}

// StringLiteral is a uniqued plain string constant; no style information.
type StringLiteral struct {
	literalBase
	value string
}

func (l *StringLiteral) Value() string { return l.value }

func (l *StringLiteral) Describe() string { return strconv.Quote(l.value) }

// GetStringLiteral returns the canonical literal for value in ctx.
func GetStringLiteral(ctx *Context, value string) *StringLiteral {
	return ctx.getLiteral("str|"+value, func() Value {
		l := &StringLiteral{value: value}
		l.initValue(l, ctx.StringType())
		return l
	}).(*StringLiteral)
}

// EnumLiteral is a uniqued case of a named enum type.
type EnumLiteral struct {
	literalBase
	caseName string
}

func (l *EnumLiteral) CaseName() string { return l.caseName }

func (l *EnumLiteral) Describe() string {
	return l.Type().(*EnumType).EnumName() + "." + l.caseName
}

// GetEnumLiteral returns the canonical literal for a case of the named
// enum.
func GetEnumLiteral(ctx *Context, enumName, caseName string) *EnumLiteral {
	key := "enumcase|" + enumName + "|" + caseName
	return ctx.getLiteral(key, func() Value {
		l := &EnumLiteral{caseName: caseName}
		l.initValue(l, ctx.EnumType(enumName))
		return l
	}).(*EnumLiteral)
}

// TextAttribute enumerates the style attributes a text fragment can carry.
type TextAttribute int

const (
	AttrBold TextAttribute = iota + 1
	AttrItalic
	AttrSize
	AttrTextColor
	AttrBackgroundColor
)

func (a TextAttribute) String() string {
	switch a {
	case AttrBold:
		return "bold"
	case AttrItalic:
		return "italic"
	case AttrSize:
		return "size"
	case AttrTextColor:
		return "textcolor"
	case AttrBackgroundColor:
		return "backgroundcolor"
	default:
		return fmt.Sprintf("attr(%d)", int(a))
	}
}

// StyleEntry is one (attribute, rendered value) pair. Flag attributes
// (bold, italic) carry an empty value; size carries decimal digits;
// colors carry #rrggbb.
type StyleEntry struct {
	Attr  TextAttribute
	Value string
}

// TextStyleLiteral is a uniqued, canonically ordered set of style entries.
type TextStyleLiteral struct {
	literalBase
	entries []StyleEntry
}

// Entries returns the entries sorted by attribute. Callers must not
// mutate.
func (l *TextStyleLiteral) Entries() []StyleEntry { return l.entries }

// Lookup returns the value for attr and whether it is present.
func (l *TextStyleLiteral) Lookup(attr TextAttribute) (string, bool) {
	for _, e := range l.entries {
		if e.Attr == attr {
			return e.Value, true
		}
	}
	return "", false
}

func (l *TextStyleLiteral) Describe() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range l.entries {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(e.Attr.String())
		if e.Value != "" {
			sb.WriteByte('=')
			sb.WriteString(e.Value)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func styleKey(entries []StyleEntry) string {
	var sb strings.Builder
	sb.WriteString("style")
	for _, e := range entries {
		fmt.Fprintf(&sb, "|%d=%s", int(e.Attr), e.Value)
	}
	return sb.String()
}

// GetTextStyleLiteral returns the canonical style literal for the given
// entries; input order does not matter.
func GetTextStyleLiteral(ctx *Context, entries []StyleEntry) *TextStyleLiteral {
	sorted := make([]StyleEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Attr < sorted[j].Attr })
	key := styleKey(sorted)
	return ctx.getLiteral(key, func() Value {
		l := &TextStyleLiteral{entries: sorted}
		l.initValue(l, ctx.TextStyleType())
		return l
	}).(*TextStyleLiteral)
}

// literalExprBase is the shared shape of literal expressions: uniqued
// values that are themselves Users, referencing only other literals. They
// stay valid across tree surgery exactly like plain literals.
type literalExprBase struct {
	literalBase
	UserBase
}

// identityKey forms a uniquing key component from a canonical value's
// identity. Sound because operands of literal expressions are themselves
// uniqued, so identity equals content.
func identityKey(v Value) string {
	return fmt.Sprintf("%p", v)
}

// TextFragmentLiteral is a run of text with one uniform style: a
// (StringLiteral, TextStyleLiteral) pair.
type TextFragmentLiteral struct {
	literalExprBase
}

// Content returns the fragment's string literal.
func (l *TextFragmentLiteral) Content() *StringLiteral {
	return l.Operand(0).(*StringLiteral)
}

// Style returns the fragment's style literal.
func (l *TextFragmentLiteral) Style() *TextStyleLiteral {
	return l.Operand(1).(*TextStyleLiteral)
}

func (l *TextFragmentLiteral) Describe() string {
	return fmt.Sprintf("textfrag[%s,%s]", l.Content().Describe(), l.Style().Describe())
}

// GetTextFragmentLiteral returns the canonical fragment for the pair.
func GetTextFragmentLiteral(ctx *Context, content *StringLiteral, style *TextStyleLiteral) *TextFragmentLiteral {
	key := "textfrag|" + identityKey(content) + "|" + identityKey(style)
	return ctx.getLiteral(key, func() Value {
		l := &TextFragmentLiteral{}
		l.initValue(l, ctx.TextType())
		l.initUser(l)
		l.UserBase.AddOperand(content)
		l.UserBase.AddOperand(style)
		return l
	}).(*TextFragmentLiteral)
}

// TextLiteral is a sequence of text fragments forming one styled string.
type TextLiteral struct {
	literalExprBase
}

// Fragments returns the fragment operands in order.
func (l *TextLiteral) Fragments() []*TextFragmentLiteral {
	out := make([]*TextFragmentLiteral, l.NumOperands())
	for i := range out {
		out[i] = l.Operand(i).(*TextFragmentLiteral)
	}
	return out
}

// PlainText concatenates the fragments' contents without styling.
func (l *TextLiteral) PlainText() string {
	var sb strings.Builder
	for _, f := range l.Fragments() {
		sb.WriteString(f.Content().Value())
	}
	return sb.String()
}

func (l *TextLiteral) Describe() string {
	var sb strings.Builder
	sb.WriteString("text{")
	for i, f := range l.Fragments() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(f.Describe())
	}
	sb.WriteByte('}')
	return sb.String()
}

// GetTextLiteral returns the canonical text literal for the fragment
// sequence.
func GetTextLiteral(ctx *Context, fragments []*TextFragmentLiteral) *TextLiteral {
	var kb strings.Builder
	kb.WriteString("text")
	for _, f := range fragments {
		kb.WriteByte('|')
		kb.WriteString(identityKey(f))
	}
	return ctx.getLiteral(kb.String(), func() Value {
		l := &TextLiteral{}
		l.initValue(l, ctx.TextType())
		l.initUser(l)
		for _, f := range fragments {
			l.UserBase.AddOperand(f)
		}
		return l
	}).(*TextLiteral)
}
