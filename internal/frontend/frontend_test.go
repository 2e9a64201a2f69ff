package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calliope-vn/calliope/internal/ir"
	"github.com/calliope-vn/calliope/internal/vnmodel"
)

const afterSchool = `title: After School
characters:
  - id: alice
    display: Alice
    color: "#7a1f1f"
  - id: bob
assets:
  - id: classroom_bg
    data: pixels
scenes:
  - id: classroom
    background: classroom_bg
script:
  - label: main
    steps:
      - show: classroom
        with: fade
      - say: Hey. Walk home together?
        who: alice
      - say: The sun is already low.
      - choice:
          - text: Stay
            goto: stay
          - text: Leave
            goto: leave
      - block: stay
      - say: Fine, five more minutes.
        who: bob
      - jump: wrap
      - block: leave
      - call: ending
      - block: wrap
      - return: true
  - label: ending
    steps:
      - note: roll credits here
      - return: true
`

func TestParseStoryboard(t *testing.T) {
	sb, err := Parse([]byte(afterSchool))
	require.NoError(t, err)

	assert.Equal(t, "After School", sb.Title)
	require.Len(t, sb.Characters, 2)
	assert.Equal(t, "#7a1f1f", sb.Characters[0].Color)
	require.Len(t, sb.Script, 2)
	assert.Equal(t, "main", sb.Script[0].Label)

	// Node positions survive decoding; the first step is the show on
	// line 16 of the document.
	require.NotNil(t, sb.Script[0].Steps[0].node)
	assert.Equal(t, "classroom", sb.Script[0].Steps[0].Show)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("title: X\ncharcters: []\nscript:\n  - label: main\n    steps:\n      - return: true\n"))
	require.Error(t, err)

	_, err = Parse([]byte("title: X\nscript:\n  - label: main\n    steps:\n      - say: hi\n        whom: alice\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whom")
}

func TestParseValidation(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"missing title", "script:\n  - label: main\n    steps: []\n", "title is required"},
		{"empty script", "title: X\n", "script is required"},
		{"two step kinds", "title: X\nscript:\n  - label: m\n    steps:\n      - say: hi\n        jump: there\n", "exactly one of"},
		{"who without say", "title: X\nscript:\n  - label: m\n    steps:\n      - who: alice\n", "exactly one of"},
		{"asset path and data", "title: X\nassets:\n  - id: a\n    path: p.png\n    data: xx\nscript:\n  - label: m\n    steps:\n      - return: true\n", "exactly one of path and data"},
		{"duplicate label", "title: X\nscript:\n  - label: m\n    steps:\n      - return: true\n  - label: m\n    steps:\n      - return: true\n", "duplicate label"},
		{"choice without goto", "title: X\nscript:\n  - label: m\n    steps:\n      - choice:\n          - text: Stay\n", "goto is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLowerBuildsModel(t *testing.T) {
	ctx := ir.NewContext()
	sb, err := Parse([]byte(afterSchool))
	require.NoError(t, err)
	m := Lower(ctx, sb, "after_school.yaml")

	assert.Equal(t, "After School", m.OpName())
	assert.Empty(t, vnmodel.CollectErrors(m))

	alice := m.Character("alice")
	require.NotNil(t, alice)
	assert.Equal(t, "Alice", alice.DisplayName().PlainText())
	require.NotNil(t, alice.SayStyle())
	color, ok := alice.SayStyle().Lookup(ir.AttrTextColor)
	require.True(t, ok)
	assert.Equal(t, "#7a1f1f", color)

	// Display falls back to the id.
	bob := m.Character("bob")
	require.NotNil(t, bob)
	assert.Equal(t, "bob", bob.DisplayName().PlainText())
	assert.Nil(t, bob.SayStyle())

	room := m.Scene("classroom")
	require.NotNil(t, room)
	assert.Same(t, ir.Value(m.Asset("classroom_bg").Ref()), room.Background())
	payload, err := m.Asset("classroom_bg").Data().Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), payload)

	main := m.Function("main")
	require.NotNil(t, main)
	assert.Equal(t, 4, main.Body().NumBlocks())

	show := main.Entry().FrontOp().(*vnmodel.ShowInstr)
	assert.Same(t, ir.Value(room.Ref()), show.Scene())
	require.NotNil(t, show.Transition())
	assert.Equal(t, "fade", show.Transition().CaseName())

	say := show.Base().Next().Self().(*vnmodel.SayInstr)
	assert.Same(t, ir.Value(alice.Ref()), say.Speaker())
	assert.Equal(t, "Hey. Walk home together?", say.Text().PlainText())

	narration := say.Base().Next().Self().(*vnmodel.SayInstr)
	assert.Nil(t, narration.Speaker())

	choice := narration.Base().Next().Self().(*vnmodel.ChoiceInstr)
	require.Equal(t, 2, choice.NumOptions())
	text, target := choice.Option(1)
	assert.Equal(t, "Leave", text.PlainText())
	assert.Equal(t, "leave", target.Name())
}

func TestLowerAttachesLocations(t *testing.T) {
	ctx := ir.NewContext()
	sb, err := Parse([]byte(afterSchool))
	require.NoError(t, err)
	m := Lower(ctx, sb, "after_school.yaml")

	show := m.Function("main").Entry().FrontOp().(*vnmodel.ShowInstr)
	loc, ok := show.Base().Loc().(*ir.SourceLoc)
	require.True(t, ok)
	assert.Equal(t, "after_school.yaml", loc.File().Path())
	assert.Equal(t, 16, loc.Row(), "show step starts on line 16 of the document")

	// Interning means the same position is the same object.
	assert.Same(t, ir.Location(loc), ctx.GetSourceLoc(loc.File(), 0, loc.Row(), loc.Col()))
}

func TestLowerRecordsBadReferences(t *testing.T) {
	ctx := ir.NewContext()
	sb, err := Parse([]byte(`title: Broken
scenes:
  - id: void
    background: missing_asset
script:
  - label: main
    steps:
      - say: hi
        who: ghost
      - show: nowhere
      - jump: gone
      - call: absent
      - return: true
`))
	require.NoError(t, err)
	m := Lower(ctx, sb, "broken.yaml")

	errs := vnmodel.CollectErrors(m)
	require.Len(t, errs, 5)
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code()
	}
	assert.ElementsMatch(t, []string{
		ErrUnknownAsset, ErrUnknownCharacter, ErrUnknownScene,
		ErrUnknownBlock, ErrUnknownFunction,
	}, codes)

	// The scene still lowered, just with a bare stage.
	require.NotNil(t, m.Scene("void"))
	assert.Nil(t, m.Scene("void").Background())

	// The function still terminates.
	ret := m.Function("main").Entry().BackOp()
	assert.IsType(t, &vnmodel.ReturnInstr{}, ret)
}

func TestLoadModelFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.yaml")
	require.NoError(t, os.WriteFile(path, []byte(afterSchool), 0o644))

	ctx := ir.NewContext()
	m, err := LoadModel(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "After School", m.OpName())
	assert.NotNil(t, m.Function("ending"))

	_, err = LoadModel(ctx, filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}
