package ir

import (
	"os"

	"github.com/calliope-vn/calliope/internal/ilist"
)

// Context is the per-compilation store of everything uniqued: types,
// literals, constant expressions, interned source files and locations,
// plus the identity list of asset data. One pipeline owns one Context and
// mutates it single-threaded; tables only grow (constant expressions are
// the one erasable entry, removed by the dead-constant cascade).
//
// The consult-then-insert step on each table is the check-then-act that a
// concurrent reimplementation would need to make atomic; here it is
// naturally atomic because exactly one goroutine touches the Context.
type Context struct {
	statelessTypes map[string]Type
	paramTypes     map[string]Type
	literals       map[string]Value
	constExprs     map[string]Value

	files   map[string]*SourceFile
	locs    map[sourceLocKey]*SourceLoc
	nullLoc Location

	assets ilist.List[*AssetData]

	// assetDir backs on-disk asset payloads; created on demand.
	assetDir string

	strictDestroy bool
}

type sourceLocKey struct {
	file *SourceFile
	page int
	row  int
	col  int
}

// NewContext creates an empty compilation context.
func NewContext() *Context {
	c := &Context{
		statelessTypes: make(map[string]Type),
		paramTypes:     make(map[string]Type),
		literals:       make(map[string]Value),
		constExprs:     make(map[string]Value),
		files:          make(map[string]*SourceFile),
		locs:           make(map[sourceLocKey]*SourceLoc),
	}
	c.nullLoc = &nullLocation{ctx: c}
	c.assets.Init(c)
	return c
}

// SetStrictDestroy toggles strict destruction: when on, destroying a value
// that still has live non-constant consumers panics instead of
// substituting Undef. Intended for tests that want staged-rewrite bugs to
// fail loudly.
func (c *Context) SetStrictDestroy(strict bool) { c.strictDestroy = strict }

// StrictDestroy reports the current destruction policy.
func (c *Context) StrictDestroy() bool { return c.strictDestroy }

// NullLocation returns the singleton "no location" marker.
func (c *Context) NullLocation() Location { return c.nullLoc }

// GetSourceFile interns a source file by path.
func (c *Context) GetSourceFile(path string) *SourceFile {
	if f, ok := c.files[path]; ok {
		return f
	}
	f := &SourceFile{ctx: c, path: path}
	c.files[path] = f
	return f
}

// GetSourceLoc interns a position within a file.
func (c *Context) GetSourceLoc(file *SourceFile, page, row, col int) *SourceLoc {
	key := sourceLocKey{file: file, page: page, row: row, col: col}
	if l, ok := c.locs[key]; ok {
		return l
	}
	l := &SourceLoc{file: file, page: page, row: row, col: col}
	c.locs[key] = l
	return l
}

// statelessType memoizes one instance per stateless type kind.
func (c *Context) statelessType(key string, ctor func(typeBase) Type) Type {
	if t, ok := c.statelessTypes[key]; ok {
		return t
	}
	t := ctor(typeBase{ctx: c, key: key})
	c.statelessTypes[key] = t
	return t
}

// parameterizedType memoizes one instance per canonical parameter key.
func (c *Context) parameterizedType(key string, ctor func(typeBase) Type) Type {
	if t, ok := c.paramTypes[key]; ok {
		return t
	}
	t := ctor(typeBase{ctx: c, key: key})
	c.paramTypes[key] = t
	return t
}

// getLiteral is the one place literal content equality becomes identity:
// the constructor runs at most once per key, and every later request for
// the same key returns the canonical instance.
func (c *Context) getLiteral(key string, ctor func() Value) Value {
	if v, ok := c.literals[key]; ok {
		return v
	}
	v := ctor()
	c.literals[key] = v
	return v
}

// getConstExpr is getLiteral for constant expressions, whose table entries
// can later be erased by the dead-constant cascade.
func (c *Context) getConstExpr(key string, ctor func() Value) Value {
	if v, ok := c.constExprs[key]; ok {
		return v
	}
	v := ctor()
	c.constExprs[key] = v
	return v
}

func (c *Context) eraseConstExpr(key string) {
	delete(c.constExprs, key)
}

// Assets returns the identity list of all asset data registered with this
// context, in registration order.
func (c *Context) Assets() *ilist.List[*AssetData] { return &c.assets }

// BackingDir returns (creating on first use) the directory for on-disk
// asset payloads owned by this compilation.
func (c *Context) BackingDir() (string, error) {
	if c.assetDir != "" {
		return c.assetDir, nil
	}
	dir, err := os.MkdirTemp("", "calliope-asset-")
	if err != nil {
		return "", err
	}
	c.assetDir = dir
	return dir, nil
}

// Close releases the context's on-disk resources: the backing directory
// and every payload saved into it. Assets that were switched to backing
// storage cannot be loaded afterwards. Safe to call more than once; a
// context that never backed anything closes as a no-op.
func (c *Context) Close() error {
	if c.assetDir == "" {
		return nil
	}
	dir := c.assetDir
	c.assetDir = ""
	return os.RemoveAll(dir)
}

// CreateBackingPath reserves a fresh file path in the backing directory.
func (c *Context) CreateBackingPath(suffix string) (string, error) {
	dir, err := c.BackingDir()
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "asset-*"+suffix)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
