package vnmodel

import (
	"github.com/calliope-vn/calliope/internal/ir"
)

// PlainText interns an unstyled single-fragment text literal.
func PlainText(ctx *ir.Context, s string) *ir.TextLiteral {
	return ir.GetTextLiteral(ctx, []*ir.TextFragmentLiteral{
		ir.GetTextFragmentLiteral(ctx,
			ir.GetStringLiteral(ctx, s),
			ir.GetTextStyleLiteral(ctx, nil)),
	})
}

// StyledText interns a single-fragment text literal with the given
// style entries.
func StyledText(ctx *ir.Context, s string, entries []ir.StyleEntry) *ir.TextLiteral {
	return ir.GetTextLiteral(ctx, []*ir.TextFragmentLiteral{
		ir.GetTextFragmentLiteral(ctx,
			ir.GetStringLiteral(ctx, s),
			ir.GetTextStyleLiteral(ctx, entries)),
	})
}
