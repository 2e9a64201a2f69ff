package ir

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpOpLayout(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	blk := entryBlock(m)

	producer := newTestInstr(ctx, "producer", GetIntLiteral(ctx, 5))
	producer.SetAttr("label", StringAttr("start"))
	consumer := newTestInstr(ctx, "consumer", producer.Out())
	blk.PushBackOp(producer)
	blk.PushBackOp(consumer)

	out := DumpOp(m)

	assert.Contains(t, out, `test.module "mod"`)
	assert.Contains(t, out, "symbols [symtab]:")
	assert.Contains(t, out, "body:")
	assert.Contains(t, out, "^entry")
	assert.Contains(t, out, `{label="start"}`)
	assert.Contains(t, out, "(in=5)")

	// The consumer refers to the producer's result by number.
	prodLine, consLine := "", ""
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, `"producer"`) {
			prodLine = line
		}
		if strings.Contains(line, `"consumer"`) {
			consLine = line
		}
	}
	require.NotEmpty(t, prodLine)
	require.NotEmpty(t, consLine)
	// %0 is the entry block; the producer's result numbers next.
	assert.Contains(t, prodLine, "%1:out=int")
	assert.Contains(t, consLine, "(in=%1)")
}

func TestDumpGolden(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	m.Region("symbols").AddBlock("")
	m.Region("symbols").EntryBlock().PushBackOp(newTestSymbol(ctx, "greeting"))

	blk := entryBlock(m)
	producer := newTestInstr(ctx, "producer", GetIntLiteral(ctx, 5))
	producer.SetAttr("label", StringAttr("start"))
	blk.PushBackOp(producer)
	blk.PushBackOp(newTestInstr(ctx, "consumer", producer.Out()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "module_dump", []byte(DumpOp(m)))
}

func TestDumpDeterministic(t *testing.T) {
	ctx := NewContext()
	m := newTestModule(ctx, "mod")
	blk := entryBlock(m)
	for _, name := range []string{"a", "b", "c"} {
		blk.PushBackOp(newTestInstr(ctx, name, nil))
	}

	assert.Equal(t, DumpOp(m), DumpOp(m))
}

func TestDumpShowsLocation(t *testing.T) {
	ctx := NewContext()
	f := ctx.GetSourceFile("story.yaml")
	loc := ctx.GetSourceLoc(f, 1, 12, 3)

	op := newTestInstr(ctx, "op", nil)
	op.SetLoc(loc)

	out := DumpOp(op)
	assert.Contains(t, out, "@story.yaml#P1:12:3")
}

func TestHTMLWriterEscapes(t *testing.T) {
	ctx := NewContext()
	op := newTestInstr(ctx, "op", GetStringLiteral(ctx, "<b>"))

	var sb strings.Builder
	require.NoError(t, NewHTMLWriter(&sb).WriteOp(op))
	out := sb.String()

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `<span class="kind">test.instr</span>`)
	assert.NotContains(t, out, "\"<b>\"")
	assert.Contains(t, out, "&lt;b&gt;")
}
