// Package project loads calliope.cue manifests. The manifest names the
// storyboard, the output directory, and the export targets; everything
// a command needs to run without repeating paths on every invocation.
//
// Manifests are CUE so defaults and validation live in one embedded
// schema: a loaded Project is always complete and well-typed, and a
// typo in a field name is an error rather than a silently ignored key.
package project

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// ManifestName is the file Find looks for.
const ManifestName = "calliope.cue"

// Project is a validated manifest with its location, so the relative
// paths inside it can resolve.
type Project struct {
	Name       string   `json:"name"`
	Storyboard string   `json:"storyboard"`
	Output     string   `json:"output"`
	Targets    []string `json:"targets"`
	Cache      string   `json:"cache"`

	// Dir is the directory the manifest was loaded from.
	Dir string `json:"-"`
}

// StoryboardPath resolves the storyboard file against the manifest
// directory.
func (p *Project) StoryboardPath() string {
	return filepath.Join(p.Dir, p.Storyboard)
}

// OutputDir resolves the output directory against the manifest
// directory.
func (p *Project) OutputDir() string {
	return filepath.Join(p.Dir, p.Output)
}

// CachePath resolves the export cache location; the default lives
// inside the output directory.
func (p *Project) CachePath() string {
	if p.Cache == "" {
		return filepath.Join(p.OutputDir(), "export-cache.db")
	}
	return filepath.Join(p.Dir, p.Cache)
}

// Load reads and validates the manifest at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	manifest := ctx.CompileBytes(data, cue.Filename(path))
	if err := manifest.Err(); err != nil {
		return nil, fmt.Errorf("compile manifest: %w", err)
	}

	unified := schema.Unify(manifest)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	var p Project
	if err := unified.LookupPath(cue.ParsePath("project")).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	p.Dir = filepath.Dir(path)
	return &p, nil
}

// Find walks from dir upward looking for a manifest, the way version
// control tools find their repository root.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent", ManifestName, dir)
		}
		dir = parent
	}
}
