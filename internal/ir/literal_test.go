package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntLiteralUniquing(t *testing.T) {
	ctx := NewContext()
	a := GetIntLiteral(ctx, 5)
	b := GetIntLiteral(ctx, 5)
	c := GetIntLiteral(ctx, 6)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, int64(5), a.Value())
	assert.Equal(t, ctx.IntType(), a.Type())
}

func TestLiteralUniquingIsPerContext(t *testing.T) {
	a := GetIntLiteral(NewContext(), 5)
	b := GetIntLiteral(NewContext(), 5)
	assert.NotSame(t, a, b)
}

func TestStringAndBoolLiterals(t *testing.T) {
	ctx := NewContext()
	assert.Same(t, GetStringLiteral(ctx, "hi"), GetStringLiteral(ctx, "hi"))
	assert.NotSame(t, GetStringLiteral(ctx, "hi"), GetStringLiteral(ctx, "ho"))
	assert.Same(t, GetBoolLiteral(ctx, true), GetBoolLiteral(ctx, true))
	assert.NotSame(t, GetBoolLiteral(ctx, true), GetBoolLiteral(ctx, false))
}

func TestEnumLiteral(t *testing.T) {
	ctx := NewContext()
	a := GetEnumLiteral(ctx, "transition", "fade")
	b := GetEnumLiteral(ctx, "transition", "fade")
	c := GetEnumLiteral(ctx, "transition", "dissolve")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "transition.fade", a.Describe())
	assert.Same(t, ctx.EnumType("transition"), a.Type())
}

func TestUndefLiteralUniquing(t *testing.T) {
	ctx := NewContext()
	a := GetUndefLiteral(ctx.IntType(), "gone")
	b := GetUndefLiteral(ctx.IntType(), "gone")
	c := GetUndefLiteral(ctx.IntType(), "other")
	d := GetUndefLiteral(ctx.BoolType(), "gone")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.NotSame(t, a, d)
	assert.Equal(t, "gone", a.Message())
}

func TestTextStyleLiteralOrderInsensitive(t *testing.T) {
	ctx := NewContext()
	a := GetTextStyleLiteral(ctx, []StyleEntry{
		{Attr: AttrSize, Value: "24"},
		{Attr: AttrBold},
	})
	b := GetTextStyleLiteral(ctx, []StyleEntry{
		{Attr: AttrBold},
		{Attr: AttrSize, Value: "24"},
	})
	require.Same(t, a, b)

	size, ok := a.Lookup(AttrSize)
	require.True(t, ok)
	assert.Equal(t, "24", size)
	_, ok = a.Lookup(AttrTextColor)
	assert.False(t, ok)

	// Entries come back in canonical attribute order.
	assert.Equal(t, []StyleEntry{{Attr: AttrBold}, {Attr: AttrSize, Value: "24"}}, a.Entries())
}

func TestTextLiteralComposition(t *testing.T) {
	ctx := NewContext()
	bold := GetTextStyleLiteral(ctx, []StyleEntry{{Attr: AttrBold}})
	plain := GetTextStyleLiteral(ctx, nil)

	f1 := GetTextFragmentLiteral(ctx, GetStringLiteral(ctx, "Hello, "), plain)
	f2 := GetTextFragmentLiteral(ctx, GetStringLiteral(ctx, "world"), bold)
	text := GetTextLiteral(ctx, []*TextFragmentLiteral{f1, f2})

	assert.Equal(t, "Hello, world", text.PlainText())
	assert.Same(t, f1, GetTextFragmentLiteral(ctx, GetStringLiteral(ctx, "Hello, "), plain))
	assert.Same(t, text, GetTextLiteral(ctx, []*TextFragmentLiteral{f1, f2}))
	assert.NotSame(t, text, GetTextLiteral(ctx, []*TextFragmentLiteral{f2, f1}))

	// Fragments hold real use edges on their parts.
	assert.Equal(t, 1, len(f2.OperandUses()[1].Value().(*TextStyleLiteral).Entries()))
	assert.False(t, bold.UseEmpty())
}
