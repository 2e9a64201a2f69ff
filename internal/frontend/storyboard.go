package frontend

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storyboard is the parsed form of one story file.
type Storyboard struct {
	// Title names the story; it becomes the model's name.
	Title string `yaml:"title"`

	// Characters declares the cast.
	Characters []Character `yaml:"characters,omitempty"`

	// Assets declares binary payloads, either file-backed or inline.
	Assets []Asset `yaml:"assets,omitempty"`

	// Scenes declares backdrops; each references an asset by id.
	Scenes []Scene `yaml:"scenes,omitempty"`

	// Script lists the story functions. The first one is the entry
	// point by convention.
	Script []Function `yaml:"script"`
}

// Character declares one speaker.
type Character struct {
	ID string `yaml:"id"`

	// Display is the on-screen name; defaults to ID when empty.
	Display string `yaml:"display,omitempty"`

	// Color is an optional #rrggbb say-style color.
	Color string `yaml:"color,omitempty"`

	// Bold marks the say style bold.
	Bold bool `yaml:"bold,omitempty"`

	node *yaml.Node
}

// Asset declares one payload. Exactly one of Path and Data is set:
// Path points at a file on disk, Data carries the bytes inline.
type Asset struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path,omitempty"`
	Data string `yaml:"data,omitempty"`

	// Kind is "image" or "audio"; defaults to "image".
	Kind string `yaml:"kind,omitempty"`

	node *yaml.Node
}

// Scene declares one backdrop.
type Scene struct {
	ID         string `yaml:"id"`
	Background string `yaml:"background,omitempty"`

	node *yaml.Node
}

// Function is one script unit: steps grouped into labeled blocks.
type Function struct {
	Label string `yaml:"label"`
	Steps []Step `yaml:"steps"`

	node *yaml.Node
}

// Step is one script line. Exactly one of the kind fields is set; the
// remaining fields qualify it (Who qualifies Say, With qualifies Show).
type Step struct {
	// Say speaks a line; Who names the speaker, empty for narration.
	Say string `yaml:"say,omitempty"`
	Who string `yaml:"who,omitempty"`

	// Show switches to a scene; With names an optional transition.
	Show string `yaml:"show,omitempty"`
	With string `yaml:"with,omitempty"`

	// Block starts a new labeled block; later steps go there.
	Block string `yaml:"block,omitempty"`

	// Jump transfers to a block label in the same function.
	Jump string `yaml:"jump,omitempty"`

	// Call invokes another script function.
	Call string `yaml:"call,omitempty"`

	// Choice presents options to the player.
	Choice []Option `yaml:"choice,omitempty"`

	// Return ends the function.
	Return bool `yaml:"return,omitempty"`

	// Note is authoring commentary, kept in the IR.
	Note string `yaml:"note,omitempty"`

	node *yaml.Node
}

// Option is one choice entry: the option text and the target block
// label.
type Option struct {
	Text string `yaml:"text"`
	Goto string `yaml:"goto"`

	node *yaml.Node
}

func (c *Character) UnmarshalYAML(n *yaml.Node) error {
	type plain Character
	if err := n.Decode((*plain)(c)); err != nil {
		return err
	}
	c.node = n
	return nil
}

func (a *Asset) UnmarshalYAML(n *yaml.Node) error {
	type plain Asset
	if err := n.Decode((*plain)(a)); err != nil {
		return err
	}
	a.node = n
	return nil
}

func (s *Scene) UnmarshalYAML(n *yaml.Node) error {
	type plain Scene
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.node = n
	return nil
}

func (f *Function) UnmarshalYAML(n *yaml.Node) error {
	type plain Function
	if err := n.Decode((*plain)(f)); err != nil {
		return err
	}
	f.node = n
	return nil
}

func (s *Step) UnmarshalYAML(n *yaml.Node) error {
	if err := checkStepKeys(n); err != nil {
		return err
	}
	type plain Step
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.node = n
	return nil
}

func (o *Option) UnmarshalYAML(n *yaml.Node) error {
	type plain Option
	if err := n.Decode((*plain)(o)); err != nil {
		return err
	}
	o.node = n
	return nil
}

// stepKeys are the fields a step mapping may carry. The decoder's
// KnownFields check does not reach inside custom unmarshalers, so steps
// validate their own keys to keep catching typos.
var stepKeys = map[string]bool{
	"say": true, "who": true, "show": true, "with": true,
	"block": true, "jump": true, "call": true, "choice": true,
	"return": true, "note": true,
}

func checkStepKeys(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step must be a mapping", n.Line)
	}
	for i := 0; i < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if !stepKeys[key] {
			return fmt.Errorf("line %d: unknown step field %q", n.Content[i].Line, key)
		}
	}
	return nil
}

// Load reads and parses a storyboard file.
func Load(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storyboard: %w", err)
	}
	return Parse(data)
}

// Parse decodes storyboard YAML with strict field validation and checks
// the structural rules Lower depends on: required fields, unique ids,
// one kind per step.
func Parse(data []byte) (*Storyboard, error) {
	var sb Storyboard
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sb); err != nil {
		return nil, fmt.Errorf("parse storyboard: %w", err)
	}
	if err := validate(&sb); err != nil {
		return nil, fmt.Errorf("invalid storyboard: %w", err)
	}
	return &sb, nil
}

func validate(sb *Storyboard) error {
	if sb.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(sb.Script) == 0 {
		return fmt.Errorf("script is required and must be non-empty")
	}

	ids := make(map[string]bool)
	for i, c := range sb.Characters {
		if c.ID == "" {
			return fmt.Errorf("characters[%d]: id is required", i)
		}
		if ids["c:"+c.ID] {
			return fmt.Errorf("characters[%d]: duplicate id %q", i, c.ID)
		}
		ids["c:"+c.ID] = true
	}
	for i, a := range sb.Assets {
		if a.ID == "" {
			return fmt.Errorf("assets[%d]: id is required", i)
		}
		if ids["a:"+a.ID] {
			return fmt.Errorf("assets[%d]: duplicate id %q", i, a.ID)
		}
		ids["a:"+a.ID] = true
		if (a.Path == "") == (a.Data == "") {
			return fmt.Errorf("assets[%d]: exactly one of path and data is required", i)
		}
		switch a.Kind {
		case "", "image", "audio":
		default:
			return fmt.Errorf("assets[%d]: kind must be image or audio, got %q", i, a.Kind)
		}
	}
	for i, s := range sb.Scenes {
		if s.ID == "" {
			return fmt.Errorf("scenes[%d]: id is required", i)
		}
		if ids["s:"+s.ID] {
			return fmt.Errorf("scenes[%d]: duplicate id %q", i, s.ID)
		}
		ids["s:"+s.ID] = true
	}
	for i, f := range sb.Script {
		if f.Label == "" {
			return fmt.Errorf("script[%d]: label is required", i)
		}
		if ids["f:"+f.Label] {
			return fmt.Errorf("script[%d]: duplicate label %q", i, f.Label)
		}
		ids["f:"+f.Label] = true
		for j, step := range f.Steps {
			if err := validateStep(&step); err != nil {
				return fmt.Errorf("script[%d] %q steps[%d]: %w", i, f.Label, j, err)
			}
		}
	}
	return nil
}

func validateStep(s *Step) error {
	kinds := 0
	if s.Say != "" {
		kinds++
	}
	if s.Show != "" {
		kinds++
	}
	if s.Block != "" {
		kinds++
	}
	if s.Jump != "" {
		kinds++
	}
	if s.Call != "" {
		kinds++
	}
	if len(s.Choice) > 0 {
		kinds++
	}
	if s.Return {
		kinds++
	}
	if s.Note != "" {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("exactly one of say, show, block, jump, call, choice, return, note is required")
	}
	if s.Who != "" && s.Say == "" {
		return fmt.Errorf("who requires say")
	}
	if s.With != "" && s.Show == "" {
		return fmt.Errorf("with requires show")
	}
	for i, o := range s.Choice {
		if o.Text == "" {
			return fmt.Errorf("choice[%d]: text is required", i)
		}
		if o.Goto == "" {
			return fmt.Errorf("choice[%d]: goto is required", i)
		}
	}
	return nil
}
